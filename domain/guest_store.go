package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GuestFilter narrows guest listings. Accommodation filters to a single
// accommodation; AccommodationIn restricts to a caller's administered set
// (nil means unrestricted, an empty non-nil slice matches nothing).
type GuestFilter struct {
	Accommodation   *primitive.ObjectID
	AccommodationIn []primitive.ObjectID
}

type GuestStore interface {
	Insert(ctx context.Context, guest *Guest) (*Guest, error)
	InsertMany(ctx context.Context, guests []*Guest) (int, error)
	GetAll(ctx context.Context, filter GuestFilter) ([]*Guest, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Guest, error)
	Update(ctx context.Context, guest *Guest) (*Guest, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status StatusUpdate) (*Guest, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByAccommodation(ctx context.Context, accommodationID primitive.ObjectID) (int64, error)
}
