package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/authorization"
	"gastmanager/domain"
	"gastmanager/errors"
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type memUserStore struct {
	users map[primitive.ObjectID]*domain.User
}

func newMemUserStore(users ...*domain.User) *memUserStore {
	s := &memUserStore{users: map[primitive.ObjectID]*domain.User{}}
	for _, user := range users {
		s.users[user.ID] = user
	}
	return s
}

func (s *memUserStore) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *memUserStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	all := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		all = append(all, user)
	}
	return all, nil
}

func (s *memUserStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf(errors.UserNotFound)
	}
	return user, nil
}

func (s *memUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, fmt.Errorf(errors.UserNotFound)
}

func (s *memUserStore) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.users[user.ID] = user
	return user, nil
}

func (s *memUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(s.users, id)
	return nil
}

type memAccommodationStore struct {
	accommodations map[primitive.ObjectID]*domain.Accommodation
}

func newMemAccommodationStore(accommodations ...*domain.Accommodation) *memAccommodationStore {
	s := &memAccommodationStore{accommodations: map[primitive.ObjectID]*domain.Accommodation{}}
	for _, accommodation := range accommodations {
		s.accommodations[accommodation.ID] = accommodation
	}
	return s
}

func (s *memAccommodationStore) Insert(ctx context.Context, accommodation *domain.Accommodation) (*domain.Accommodation, error) {
	if accommodation.ID.IsZero() {
		accommodation.ID = primitive.NewObjectID()
	}
	s.accommodations[accommodation.ID] = accommodation
	return accommodation, nil
}

func (s *memAccommodationStore) GetAll(ctx context.Context) ([]*domain.Accommodation, error) {
	all := make([]*domain.Accommodation, 0, len(s.accommodations))
	for _, accommodation := range s.accommodations {
		all = append(all, accommodation)
	}
	return all, nil
}

func (s *memAccommodationStore) GetByAdministrator(ctx context.Context, userID primitive.ObjectID) ([]*domain.Accommodation, error) {
	var administered []*domain.Accommodation
	for _, accommodation := range s.accommodations {
		if accommodation.HasAdministrator(userID) {
			administered = append(administered, accommodation)
		}
	}
	return administered, nil
}

func (s *memAccommodationStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Accommodation, error) {
	accommodation, ok := s.accommodations[id]
	if !ok {
		return nil, fmt.Errorf(errors.AccommodationNotFound)
	}
	return accommodation, nil
}

func (s *memAccommodationStore) GetByName(ctx context.Context, name string) (*domain.Accommodation, error) {
	for _, accommodation := range s.accommodations {
		if accommodation.Name == name {
			return accommodation, nil
		}
	}
	return nil, fmt.Errorf(errors.AccommodationNotFound)
}

func (s *memAccommodationStore) Update(ctx context.Context, accommodation *domain.Accommodation) (*domain.Accommodation, error) {
	s.accommodations[accommodation.ID] = accommodation
	return accommodation, nil
}

func (s *memAccommodationStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(s.accommodations, id)
	return nil
}

func (s *memAccommodationStore) AddAdministrators(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Accommodation, error) {
	accommodation, ok := s.accommodations[id]
	if !ok {
		return nil, fmt.Errorf(errors.AccommodationNotFound)
	}
	for _, userID := range userIDs {
		if !accommodation.HasAdministrator(userID) {
			accommodation.Administrators = append(accommodation.Administrators, userID)
		}
	}
	return accommodation, nil
}

func (s *memAccommodationStore) RemoveAdministrators(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Accommodation, error) {
	accommodation, ok := s.accommodations[id]
	if !ok {
		return nil, fmt.Errorf(errors.AccommodationNotFound)
	}
	remaining := accommodation.Administrators[:0]
	for _, existing := range accommodation.Administrators {
		keep := true
		for _, userID := range userIDs {
			if existing == userID {
				keep = false
				break
			}
		}
		if keep {
			remaining = append(remaining, existing)
		}
	}
	accommodation.Administrators = remaining
	return accommodation, nil
}

func (s *memAccommodationStore) ReplaceCustomFields(ctx context.Context, id primitive.ObjectID, fields []domain.CustomField) (*domain.Accommodation, error) {
	accommodation, ok := s.accommodations[id]
	if !ok {
		return nil, fmt.Errorf(errors.AccommodationNotFound)
	}
	accommodation.CustomFields = fields
	return accommodation, nil
}

type memGuestStore struct {
	guests map[primitive.ObjectID]*domain.Guest
}

func newMemGuestStore(guests ...*domain.Guest) *memGuestStore {
	s := &memGuestStore{guests: map[primitive.ObjectID]*domain.Guest{}}
	for _, guest := range guests {
		s.guests[guest.ID] = guest
	}
	return s
}

func (s *memGuestStore) Insert(ctx context.Context, guest *domain.Guest) (*domain.Guest, error) {
	if guest.ID.IsZero() {
		guest.ID = primitive.NewObjectID()
	}
	s.guests[guest.ID] = guest
	return guest, nil
}

func (s *memGuestStore) InsertMany(ctx context.Context, guests []*domain.Guest) (int, error) {
	for _, guest := range guests {
		if guest.ID.IsZero() {
			guest.ID = primitive.NewObjectID()
		}
		s.guests[guest.ID] = guest
	}
	return len(guests), nil
}

func (s *memGuestStore) GetAll(ctx context.Context, filter domain.GuestFilter) ([]*domain.Guest, error) {
	var matched []*domain.Guest
	for _, guest := range s.guests {
		if filter.Accommodation != nil && guest.Accommodation != *filter.Accommodation {
			continue
		}
		if filter.AccommodationIn != nil {
			member := false
			for _, id := range filter.AccommodationIn {
				if guest.Accommodation == id {
					member = true
					break
				}
			}
			if !member {
				continue
			}
		}
		matched = append(matched, guest)
	}
	return matched, nil
}

func (s *memGuestStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Guest, error) {
	guest, ok := s.guests[id]
	if !ok {
		return nil, fmt.Errorf(errors.GuestNotFound)
	}
	return guest, nil
}

func (s *memGuestStore) Update(ctx context.Context, guest *domain.Guest) (*domain.Guest, error) {
	s.guests[guest.ID] = guest
	return guest, nil
}

func (s *memGuestStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.StatusUpdate) (*domain.Guest, error) {
	guest, ok := s.guests[id]
	if !ok {
		return nil, fmt.Errorf(errors.GuestNotFound)
	}
	if status.PaymentCompleted != nil {
		guest.PaymentCompleted = *status.PaymentCompleted
	}
	if status.KeyReturned != nil {
		guest.KeyReturned = *status.KeyReturned
	}
	if status.CheckedOut != nil {
		guest.CheckedOut = *status.CheckedOut
	}
	return guest, nil
}

func (s *memGuestStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := s.guests[id]; !ok {
		return fmt.Errorf(errors.GuestNotFound)
	}
	delete(s.guests, id)
	return nil
}

func (s *memGuestStore) DeleteByAccommodation(ctx context.Context, accommodationID primitive.ObjectID) (int64, error) {
	var removed int64
	for id, guest := range s.guests {
		if guest.Accommodation == accommodationID {
			delete(s.guests, id)
			removed++
		}
	}
	return removed, nil
}

func claimsFor(user *domain.User) *domain.Claims {
	return &domain.Claims{UserID: user.ID.Hex(), Username: user.Username, Role: user.Role}
}

func accessFor(users *memUserStore, accommodations *memAccommodationStore) *authorization.AccessControl {
	return authorization.NewAccessControl(users, accommodations, testTracer())
}
