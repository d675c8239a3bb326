package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccommodationStore interface {
	Insert(ctx context.Context, accommodation *Accommodation) (*Accommodation, error)
	GetAll(ctx context.Context) ([]*Accommodation, error)
	GetByAdministrator(ctx context.Context, userID primitive.ObjectID) ([]*Accommodation, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Accommodation, error)
	GetByName(ctx context.Context, name string) (*Accommodation, error)
	Update(ctx context.Context, accommodation *Accommodation) (*Accommodation, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddAdministrators(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*Accommodation, error)
	RemoveAdministrators(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*Accommodation, error)
	ReplaceCustomFields(ctx context.Context, id primitive.ObjectID, fields []CustomField) (*Accommodation, error)
}
