package application

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

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

type fakeUserStore struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	store := &fakeUserStore{users: map[primitive.ObjectID]*domain.User{}}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (s *fakeUserStore) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return nil, fmt.Errorf(errors.UsernameExists)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	all := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		all = append(all, user)
	}
	return all, nil
}

func (s *fakeUserStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf(errors.UserNotFound)
	}
	return user, nil
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, fmt.Errorf(errors.UserNotFound)
}

func (s *fakeUserStore) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := s.users[user.ID]; !ok {
		return nil, fmt.Errorf(errors.UserNotFound)
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf(errors.UserNotFound)
	}
	delete(s.users, id)
	return nil
}

type fakeAccommodationStore struct {
	accommodations map[primitive.ObjectID]*domain.Accommodation
}

func newFakeAccommodationStore(accommodations ...*domain.Accommodation) *fakeAccommodationStore {
	store := &fakeAccommodationStore{
		accommodations: map[primitive.ObjectID]*domain.Accommodation{},
	}
	for _, accommodation := range accommodations {
		store.accommodations[accommodation.ID] = accommodation
	}
	return store
}

func (s *fakeAccommodationStore) Insert(ctx context.Context, accommodation *domain.Accommodation) (*domain.Accommodation, error) {
	if accommodation.ID.IsZero() {
		accommodation.ID = primitive.NewObjectID()
	}
	s.accommodations[accommodation.ID] = accommodation
	return accommodation, nil
}

func (s *fakeAccommodationStore) GetAll(ctx context.Context) ([]*domain.Accommodation, error) {
	all := make([]*domain.Accommodation, 0, len(s.accommodations))
	for _, accommodation := range s.accommodations {
		all = append(all, accommodation)
	}
	return all, nil
}

func (s *fakeAccommodationStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Accommodation, error) {
	accommodation, ok := s.accommodations[id]
	if !ok {
		return nil, fmt.Errorf(errors.AccommodationNotFound)
	}
	return accommodation, nil
}

func (s *fakeAccommodationStore) GetByName(ctx context.Context, name string) (*domain.Accommodation, error) {
	for _, accommodation := range s.accommodations {
		if accommodation.Name == name {
			return accommodation, nil
		}
	}
	return nil, fmt.Errorf(errors.AccommodationNotFound)
}

func (s *fakeAccommodationStore) GetByAdministrator(ctx context.Context, userID primitive.ObjectID) ([]*domain.Accommodation, error) {
	var administered []*domain.Accommodation
	for _, accommodation := range s.accommodations {
		if accommodation.HasAdministrator(userID) {
			administered = append(administered, accommodation)
		}
	}
	return administered, nil
}

func (s *fakeAccommodationStore) Update(ctx context.Context, accommodation *domain.Accommodation) (*domain.Accommodation, error) {
	if _, ok := s.accommodations[accommodation.ID]; !ok {
		return nil, fmt.Errorf(errors.AccommodationNotFound)
	}
	s.accommodations[accommodation.ID] = accommodation
	return accommodation, nil
}

func (s *fakeAccommodationStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := s.accommodations[id]; !ok {
		return fmt.Errorf(errors.AccommodationNotFound)
	}
	delete(s.accommodations, id)
	return nil
}

func (s *fakeAccommodationStore) AddAdministrators(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Accommodation, error) {
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

func (s *fakeAccommodationStore) RemoveAdministrators(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Accommodation, error) {
	accommodation, ok := s.accommodations[id]
	if !ok {
		return nil, fmt.Errorf(errors.AccommodationNotFound)
	}
	remaining := accommodation.Administrators[:0]
	for _, existing := range accommodation.Administrators {
		removed := false
		for _, userID := range userIDs {
			if existing == userID {
				removed = true
				break
			}
		}
		if !removed {
			remaining = append(remaining, existing)
		}
	}
	accommodation.Administrators = remaining
	return accommodation, nil
}

func (s *fakeAccommodationStore) ReplaceCustomFields(ctx context.Context, id primitive.ObjectID, fields []domain.CustomField) (*domain.Accommodation, error) {
	accommodation, ok := s.accommodations[id]
	if !ok {
		return nil, fmt.Errorf(errors.AccommodationNotFound)
	}
	accommodation.CustomFields = fields
	return accommodation, nil
}

type fakeGuestStore struct {
	guests     map[primitive.ObjectID]*domain.Guest
	insertErr  error
	lastFilter *domain.GuestFilter
	lastStatus *domain.StatusUpdate
}

func newFakeGuestStore(guests ...*domain.Guest) *fakeGuestStore {
	store := &fakeGuestStore{
		guests: map[primitive.ObjectID]*domain.Guest{},
	}
	for _, guest := range guests {
		store.guests[guest.ID] = guest
	}
	return store
}

func (s *fakeGuestStore) Insert(ctx context.Context, guest *domain.Guest) (*domain.Guest, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	if guest.ID.IsZero() {
		guest.ID = primitive.NewObjectID()
	}
	s.guests[guest.ID] = guest
	return guest, nil
}

func (s *fakeGuestStore) InsertMany(ctx context.Context, guests []*domain.Guest) (int, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	for _, guest := range guests {
		if guest.ID.IsZero() {
			guest.ID = primitive.NewObjectID()
		}
		s.guests[guest.ID] = guest
	}
	return len(guests), nil
}

func (s *fakeGuestStore) GetAll(ctx context.Context, filter domain.GuestFilter) ([]*domain.Guest, error) {
	s.lastFilter = &filter
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

func (s *fakeGuestStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Guest, error) {
	guest, ok := s.guests[id]
	if !ok {
		return nil, fmt.Errorf(errors.GuestNotFound)
	}
	return guest, nil
}

func (s *fakeGuestStore) Update(ctx context.Context, guest *domain.Guest) (*domain.Guest, error) {
	if _, ok := s.guests[guest.ID]; !ok {
		return nil, fmt.Errorf(errors.GuestNotFound)
	}
	s.guests[guest.ID] = guest
	return guest, nil
}

func (s *fakeGuestStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.StatusUpdate) (*domain.Guest, error) {
	guest, ok := s.guests[id]
	if !ok {
		return nil, fmt.Errorf(errors.GuestNotFound)
	}
	s.lastStatus = &status
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

func (s *fakeGuestStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := s.guests[id]; !ok {
		return fmt.Errorf(errors.GuestNotFound)
	}
	delete(s.guests, id)
	return nil
}

func (s *fakeGuestStore) DeleteByAccommodation(ctx context.Context, accommodationID primitive.ObjectID) (int64, error) {
	var removed int64
	for id, guest := range s.guests {
		if guest.Accommodation == accommodationID {
			delete(s.guests, id)
			removed++
		}
	}
	return removed, nil
}

type fakeReportCache struct {
	entries map[string]*domain.ReportSummary
	getErr  error
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{entries: map[string]*domain.ReportSummary{}}
}

func (c *fakeReportCache) Get(ctx context.Context, key string) (*domain.ReportSummary, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[key], nil
}

func (c *fakeReportCache) Post(ctx context.Context, key string, summary *domain.ReportSummary) error {
	c.entries[key] = summary
	return nil
}
