package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/domain"
	"gastmanager/errors"
)

const guestsCollection = "guests"

type GuestMongoDBStore struct {
	guests *mongo.Collection
	tracer trace.Tracer
}

func NewGuestMongoDBStore(client *mongo.Client, tracer trace.Tracer) *GuestMongoDBStore {
	guests := client.Database(DATABASE).Collection(guestsCollection)
	return &GuestMongoDBStore{
		guests: guests,
		tracer: tracer,
	}
}

func (store *GuestMongoDBStore) Insert(ctx context.Context, guest *domain.Guest) (*domain.Guest, error) {
	ctx, span := store.tracer.Start(ctx, "GuestStore.Insert")
	defer span.End()

	prepareGuest(guest)
	result, err := store.guests.InsertOne(ctx, guest)
	if err != nil {
		return nil, err
	}
	guest.ID = result.InsertedID.(primitive.ObjectID)
	return guest, nil
}

// InsertMany bulk-inserts mapped import rows as a single ordered write;
// one bad document fails the whole batch.
func (store *GuestMongoDBStore) InsertMany(ctx context.Context, guests []*domain.Guest) (int, error) {
	ctx, span := store.tracer.Start(ctx, "GuestStore.InsertMany")
	defer span.End()

	if len(guests) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(guests))
	for _, guest := range guests {
		prepareGuest(guest)
		docs = append(docs, guest)
	}

	result, err := store.guests.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(result.InsertedIDs), nil
}

func (store *GuestMongoDBStore) GetAll(ctx context.Context, filter domain.GuestFilter) ([]*domain.Guest, error) {
	ctx, span := store.tracer.Start(ctx, "GuestStore.GetAll")
	defer span.End()

	query := bson.M{}
	if filter.Accommodation != nil {
		query["accommodation"] = *filter.Accommodation
	}
	if filter.AccommodationIn != nil {
		query["accommodation"] = bson.M{"$in": filter.AccommodationIn}
	}
	if filter.Accommodation != nil && filter.AccommodationIn != nil {
		query["accommodation"] = bson.M{"$eq": *filter.Accommodation, "$in": filter.AccommodationIn}
	}

	return store.filter(ctx, query)
}

func (store *GuestMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Guest, error) {
	ctx, span := store.tracer.Start(ctx, "GuestStore.Get")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *GuestMongoDBStore) Update(ctx context.Context, guest *domain.Guest) (*domain.Guest, error) {
	ctx, span := store.tracer.Start(ctx, "GuestStore.Update")
	defer span.End()

	guest.UpdatedAt = time.Now()
	_, err := store.guests.UpdateOne(ctx, bson.M{"_id": guest.ID}, bson.M{"$set": guest})
	if err != nil {
		return nil, err
	}
	return guest, nil
}

// UpdateStatus applies only the flags present in the payload; nil pointers
// leave the stored value untouched.
func (store *GuestMongoDBStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.StatusUpdate) (*domain.Guest, error) {
	ctx, span := store.tracer.Start(ctx, "GuestStore.UpdateStatus")
	defer span.End()

	fields := bson.M{"updatedAt": time.Now()}
	if status.PaymentCompleted != nil {
		fields["paymentCompleted"] = *status.PaymentCompleted
	}
	if status.KeyReturned != nil {
		fields["keyReturned"] = *status.KeyReturned
	}
	if status.CheckedOut != nil {
		fields["checkedOut"] = *status.CheckedOut
	}

	after := options.After
	result := store.guests.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after})

	var guest domain.Guest
	if err := result.Decode(&guest); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf(errors.GuestNotFound)
		}
		return nil, err
	}
	return &guest, nil
}

func (store *GuestMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "GuestStore.Delete")
	defer span.End()

	result, err := store.guests.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf(errors.GuestNotFound)
	}
	return nil
}

func (store *GuestMongoDBStore) DeleteByAccommodation(ctx context.Context, accommodationID primitive.ObjectID) (int64, error) {
	ctx, span := store.tracer.Start(ctx, "GuestStore.DeleteByAccommodation")
	defer span.End()

	result, err := store.guests.DeleteMany(ctx, bson.M{"accommodation": accommodationID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func prepareGuest(guest *domain.Guest) {
	if guest.ID.IsZero() {
		guest.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if guest.CheckInDate.IsZero() {
		guest.CheckInDate = now
	}
	if guest.CustomFields == nil {
		guest.CustomFields = map[string]string{}
	}
	if guest.CreatedAt.IsZero() {
		guest.CreatedAt = now
	}
	guest.UpdatedAt = now
}

func (store *GuestMongoDBStore) filter(ctx context.Context, filter interface{}) ([]*domain.Guest, error) {
	cursor, err := store.guests.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var guests []*domain.Guest
	for cursor.Next(ctx) {
		var guest domain.Guest
		if err := cursor.Decode(&guest); err != nil {
			return nil, err
		}
		guests = append(guests, &guest)
	}
	return guests, cursor.Err()
}

func (store *GuestMongoDBStore) filterOne(ctx context.Context, filter interface{}) (guest *domain.Guest, err error) {
	result := store.guests.FindOne(ctx, filter)
	err = result.Decode(&guest)
	return
}
