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

const accommodationsCollection = "accommodations"

type AccommodationMongoDBStore struct {
	accommodations *mongo.Collection
	tracer         trace.Tracer
}

func NewAccommodationMongoDBStore(client *mongo.Client, tracer trace.Tracer) *AccommodationMongoDBStore {
	accommodations := client.Database(DATABASE).Collection(accommodationsCollection)
	return &AccommodationMongoDBStore{
		accommodations: accommodations,
		tracer:         tracer,
	}
}

// EnsureIndexes creates the unique name index backing the uniqueness
// invariant; the service layer pre-checks, this is the backstop.
func (store *AccommodationMongoDBStore) EnsureIndexes(ctx context.Context) error {
	_, err := store.accommodations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"name": 1},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (store *AccommodationMongoDBStore) Insert(ctx context.Context, accommodation *domain.Accommodation) (*domain.Accommodation, error) {
	ctx, span := store.tracer.Start(ctx, "AccommodationStore.Insert")
	defer span.End()

	accommodation.ID = primitive.NewObjectID()
	accommodation.CreatedAt = time.Now()
	accommodation.UpdatedAt = accommodation.CreatedAt
	if accommodation.CustomFields == nil {
		accommodation.CustomFields = []domain.CustomField{}
	}
	if accommodation.Administrators == nil {
		accommodation.Administrators = []primitive.ObjectID{}
	}

	result, err := store.accommodations.InsertOne(ctx, accommodation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf(errors.AccommodationNameExists)
		}
		return nil, err
	}
	accommodation.ID = result.InsertedID.(primitive.ObjectID)
	return accommodation, nil
}

func (store *AccommodationMongoDBStore) GetAll(ctx context.Context) ([]*domain.Accommodation, error) {
	ctx, span := store.tracer.Start(ctx, "AccommodationStore.GetAll")
	defer span.End()

	return store.filter(ctx, bson.M{})
}

func (store *AccommodationMongoDBStore) GetByAdministrator(ctx context.Context, userID primitive.ObjectID) ([]*domain.Accommodation, error) {
	ctx, span := store.tracer.Start(ctx, "AccommodationStore.GetByAdministrator")
	defer span.End()

	return store.filter(ctx, bson.M{"administrators": userID})
}

func (store *AccommodationMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Accommodation, error) {
	ctx, span := store.tracer.Start(ctx, "AccommodationStore.Get")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *AccommodationMongoDBStore) GetByName(ctx context.Context, name string) (*domain.Accommodation, error) {
	ctx, span := store.tracer.Start(ctx, "AccommodationStore.GetByName")
	defer span.End()

	return store.filterOne(ctx, bson.M{"name": name})
}

func (store *AccommodationMongoDBStore) Update(ctx context.Context, accommodation *domain.Accommodation) (*domain.Accommodation, error) {
	ctx, span := store.tracer.Start(ctx, "AccommodationStore.Update")
	defer span.End()

	accommodation.UpdatedAt = time.Now()
	_, err := store.accommodations.UpdateOne(ctx, bson.M{"_id": accommodation.ID}, bson.M{"$set": accommodation})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf(errors.AccommodationNameExists)
		}
		return nil, err
	}
	return accommodation, nil
}

func (store *AccommodationMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "AccommodationStore.Delete")
	defer span.End()

	result, err := store.accommodations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf(errors.AccommodationNotFound)
	}
	return nil
}

func (store *AccommodationMongoDBStore) AddAdministrators(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Accommodation, error) {
	ctx, span := store.tracer.Start(ctx, "AccommodationStore.AddAdministrators")
	defer span.End()

	update := bson.M{
		"$addToSet": bson.M{"administrators": bson.M{"$each": userIDs}},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	return store.findAndApply(ctx, id, update)
}

func (store *AccommodationMongoDBStore) RemoveAdministrators(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Accommodation, error) {
	ctx, span := store.tracer.Start(ctx, "AccommodationStore.RemoveAdministrators")
	defer span.End()

	update := bson.M{
		"$pullAll": bson.M{"administrators": userIDs},
		"$set":     bson.M{"updatedAt": time.Now()},
	}
	return store.findAndApply(ctx, id, update)
}

func (store *AccommodationMongoDBStore) ReplaceCustomFields(ctx context.Context, id primitive.ObjectID, fields []domain.CustomField) (*domain.Accommodation, error) {
	ctx, span := store.tracer.Start(ctx, "AccommodationStore.ReplaceCustomFields")
	defer span.End()

	update := bson.M{
		"$set": bson.M{"customFields": fields, "updatedAt": time.Now()},
	}
	return store.findAndApply(ctx, id, update)
}

func (store *AccommodationMongoDBStore) findAndApply(ctx context.Context, id primitive.ObjectID, update bson.M) (*domain.Accommodation, error) {
	after := options.After
	result := store.accommodations.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		&options.FindOneAndUpdateOptions{ReturnDocument: &after})

	var accommodation domain.Accommodation
	if err := result.Decode(&accommodation); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf(errors.AccommodationNotFound)
		}
		return nil, err
	}
	return &accommodation, nil
}

func (store *AccommodationMongoDBStore) filter(ctx context.Context, filter interface{}) ([]*domain.Accommodation, error) {
	cursor, err := store.accommodations.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accommodations []*domain.Accommodation
	for cursor.Next(ctx) {
		var accommodation domain.Accommodation
		if err := cursor.Decode(&accommodation); err != nil {
			return nil, err
		}
		accommodations = append(accommodations, &accommodation)
	}
	return accommodations, cursor.Err()
}

func (store *AccommodationMongoDBStore) filterOne(ctx context.Context, filter interface{}) (accommodation *domain.Accommodation, err error) {
	result := store.accommodations.FindOne(ctx, filter)
	err = result.Decode(&accommodation)
	return
}
