package application

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/domain"
	"gastmanager/errors"
)

type GuestService struct {
	store          domain.GuestStore
	accommodations domain.AccommodationStore
	tracer         trace.Tracer
	logger         *logrus.Logger
}

func NewGuestService(store domain.GuestStore, accommodations domain.AccommodationStore, tracer trace.Tracer, logger *logrus.Logger) *GuestService {
	return &GuestService{
		store:          store,
		accommodations: accommodations,
		tracer:         tracer,
		logger:         logger,
	}
}

// ListFor returns guests visible to the caller, optionally narrowed to one
// accommodation. Staff visibility is the union of their administered
// accommodations, resolved on every call.
func (service *GuestService) ListFor(ctx context.Context, user *domain.User, accommodationHex string) ([]*domain.Guest, int, error) {
	ctx, span := service.tracer.Start(ctx, "GuestService.ListFor")
	defer span.End()

	var filter domain.GuestFilter

	if accommodationHex != "" {
		accommodationID, err := primitive.ObjectIDFromHex(accommodationHex)
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf(errors.AccommodationIDRequired)
		}
		filter.Accommodation = &accommodationID
	}

	if user.Role != domain.RoleAdmin {
		administered, err := service.accommodations.GetByAdministrator(ctx, user.ID)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		ids := make([]primitive.ObjectID, 0, len(administered))
		for _, accommodation := range administered {
			ids = append(ids, accommodation.ID)
		}
		filter.AccommodationIn = ids
	}

	guests, err := service.store.GetAll(ctx, filter)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return guests, 0, nil
}

func (service *GuestService) GetFor(ctx context.Context, user *domain.User, id primitive.ObjectID) (*domain.Guest, int, error) {
	ctx, span := service.tracer.Start(ctx, "GuestService.GetFor")
	defer span.End()

	guest, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, http.StatusNotFound, fmt.Errorf(errors.GuestNotFound)
	}

	allowed, err := service.canAccess(ctx, user, guest)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if !allowed {
		return nil, http.StatusForbidden, fmt.Errorf(errors.GuestAccessDenied)
	}
	return guest, 0, nil
}

func (service *GuestService) Create(ctx context.Context, guest *domain.Guest) (*domain.Guest, error) {
	ctx, span := service.tracer.Start(ctx, "GuestService.Create")
	defer span.End()

	return service.store.Insert(ctx, guest)
}

var guestUpdatableFields = map[string]bool{
	"firstName":          true,
	"lastName":           true,
	"roomNumber":         true,
	"roomKey":            true,
	"deposit":            true,
	"additionalBookings": true,
	"skiPassCategory":    true,
	"customFields":       true,
	"accommodation":      true,
	"checkInDate":        true,
	"checkOutDate":       true,
	"notes":              true,
}

// UpdateFields applies an allow-listed partial update. Ownership is derived
// from the guest's stored accommodation on every call.
func (service *GuestService) UpdateFields(ctx context.Context, user *domain.User, id primitive.ObjectID, payload map[string]interface{}) (*domain.Guest, int, error) {
	ctx, span := service.tracer.Start(ctx, "GuestService.UpdateFields")
	defer span.End()

	existing, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, http.StatusNotFound, fmt.Errorf(errors.GuestNotFound)
	}

	allowed, err := service.canAccess(ctx, user, existing)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if !allowed {
		return nil, http.StatusForbidden, fmt.Errorf(errors.GuestAccessDenied)
	}

	if err := applyUpdate(payload, guestUpdatableFields, existing); err != nil {
		return nil, http.StatusBadRequest, err
	}

	updated, err := service.store.Update(ctx, existing)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return updated, 0, nil
}

// UpdateStatus applies the subset of status flags present in the payload.
func (service *GuestService) UpdateStatus(ctx context.Context, user *domain.User, id primitive.ObjectID, status domain.StatusUpdate) (*domain.Guest, int, error) {
	ctx, span := service.tracer.Start(ctx, "GuestService.UpdateStatus")
	defer span.End()

	existing, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, http.StatusNotFound, fmt.Errorf(errors.GuestNotFound)
	}

	allowed, err := service.canAccess(ctx, user, existing)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if !allowed {
		return nil, http.StatusForbidden, fmt.Errorf(errors.GuestAccessDenied)
	}

	updated, err := service.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return updated, 0, nil
}

func (service *GuestService) Delete(ctx context.Context, user *domain.User, id primitive.ObjectID) (int, error) {
	ctx, span := service.tracer.Start(ctx, "GuestService.Delete")
	defer span.End()

	if _, err := service.store.Get(ctx, id); err != nil {
		return http.StatusNotFound, fmt.Errorf(errors.GuestNotFound)
	}

	if user.Role != domain.RoleAdmin {
		return http.StatusForbidden, fmt.Errorf(errors.GuestDeleteDenied)
	}

	if err := service.store.Delete(ctx, id); err != nil {
		return http.StatusInternalServerError, err
	}
	return 0, nil
}

func (service *GuestService) canAccess(ctx context.Context, user *domain.User, guest *domain.Guest) (bool, error) {
	if user.Role == domain.RoleAdmin {
		return true, nil
	}

	accommodation, err := service.accommodations.Get(ctx, guest.Accommodation)
	if err != nil {
		// the guest's accommodation is gone; nobody but an admin sees it
		return false, nil
	}
	return accommodation.HasAdministrator(user.ID), nil
}
