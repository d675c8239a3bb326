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

const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

type AccommodationService struct {
	store  domain.AccommodationStore
	guests domain.GuestStore
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewAccommodationService(store domain.AccommodationStore, guests domain.GuestStore, tracer trace.Tracer, logger *logrus.Logger) *AccommodationService {
	return &AccommodationService{
		store:  store,
		guests: guests,
		tracer: tracer,
		logger: logger,
	}
}

// ListFor returns every accommodation for admins and only administered
// accommodations for staff.
func (service *AccommodationService) ListFor(ctx context.Context, user *domain.User) ([]*domain.Accommodation, error) {
	ctx, span := service.tracer.Start(ctx, "AccommodationService.ListFor")
	defer span.End()

	if user.Role == domain.RoleAdmin {
		return service.store.GetAll(ctx)
	}
	return service.store.GetByAdministrator(ctx, user.ID)
}

func (service *AccommodationService) GetFor(ctx context.Context, user *domain.User, id primitive.ObjectID) (*domain.Accommodation, int, error) {
	ctx, span := service.tracer.Start(ctx, "AccommodationService.GetFor")
	defer span.End()

	accommodation, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, http.StatusNotFound, fmt.Errorf(errors.AccommodationNotFound)
	}

	if user.Role != domain.RoleAdmin && !accommodation.HasAdministrator(user.ID) {
		return nil, http.StatusForbidden, fmt.Errorf(errors.AccommodationAccessDenied)
	}
	return accommodation, 0, nil
}

// Create pre-checks the unique name; the unique index is the backstop.
func (service *AccommodationService) Create(ctx context.Context, creator *domain.User, accommodation *domain.Accommodation) (*domain.Accommodation, int, error) {
	ctx, span := service.tracer.Start(ctx, "AccommodationService.Create")
	defer span.End()

	if existing, err := service.store.GetByName(ctx, accommodation.Name); err == nil && existing != nil {
		return nil, http.StatusBadRequest, fmt.Errorf(errors.AccommodationNameExists)
	}

	accommodation.CreatedBy = creator.ID
	saved, err := service.store.Insert(ctx, accommodation)
	if err != nil {
		if err.Error() == errors.AccommodationNameExists {
			return nil, http.StatusBadRequest, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return saved, 0, nil
}

var accommodationUpdatableFields = map[string]bool{
	"name":           true,
	"address":        true,
	"capacity":       true,
	"customFields":   true,
	"administrators": true,
}

func (service *AccommodationService) UpdateFields(ctx context.Context, id primitive.ObjectID, payload map[string]interface{}) (*domain.Accommodation, int, error) {
	ctx, span := service.tracer.Start(ctx, "AccommodationService.UpdateFields")
	defer span.End()

	existing, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, http.StatusNotFound, fmt.Errorf(errors.AccommodationNotFound)
	}

	if err := applyUpdate(payload, accommodationUpdatableFields, existing); err != nil {
		return nil, http.StatusBadRequest, err
	}

	updated, err := service.store.Update(ctx, existing)
	if err != nil {
		if err.Error() == errors.AccommodationNameExists {
			return nil, http.StatusBadRequest, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return updated, 0, nil
}

// Delete removes the accommodation and cascades to its guests, which are
// unreachable through every scoped read once the accommodation is gone.
func (service *AccommodationService) Delete(ctx context.Context, id primitive.ObjectID) (int, error) {
	ctx, span := service.tracer.Start(ctx, "AccommodationService.Delete")
	defer span.End()

	if _, err := service.store.Get(ctx, id); err != nil {
		return http.StatusNotFound, fmt.Errorf(errors.AccommodationNotFound)
	}

	if err := service.store.Delete(ctx, id); err != nil {
		return http.StatusInternalServerError, err
	}

	removed, err := service.guests.DeleteByAccommodation(ctx, id)
	if err != nil {
		service.logger.Errorf("cascade guest delete failed for accommodation %s: %s", id.Hex(), err)
		return http.StatusInternalServerError, err
	}
	if removed > 0 {
		service.logger.Infof("removed %d guests of deleted accommodation %s", removed, id.Hex())
	}
	return 0, nil
}

// UpdateAdministrators applies set-union or set-subtraction semantics on the
// administrators list.
func (service *AccommodationService) UpdateAdministrators(ctx context.Context, id primitive.ObjectID, administrators []string, action string) (*domain.Accommodation, int, error) {
	ctx, span := service.tracer.Start(ctx, "AccommodationService.UpdateAdministrators")
	defer span.End()

	userIDs := make([]primitive.ObjectID, 0, len(administrators))
	for _, hex := range administrators {
		userID, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf(errors.AdministratorsRequired)
		}
		userIDs = append(userIDs, userID)
	}

	var (
		updated *domain.Accommodation
		err     error
	)
	switch action {
	case ActionAdd:
		updated, err = service.store.AddAdministrators(ctx, id, userIDs)
	case ActionRemove:
		updated, err = service.store.RemoveAdministrators(ctx, id, userIDs)
	default:
		return nil, http.StatusBadRequest, fmt.Errorf(errors.InvalidAdministratorsAct)
	}

	if err != nil {
		if err.Error() == errors.AccommodationNotFound {
			return nil, http.StatusNotFound, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return updated, 0, nil
}

// ReplaceCustomFields swaps the whole definition array, it never merges.
func (service *AccommodationService) ReplaceCustomFields(ctx context.Context, id primitive.ObjectID, fields []domain.CustomField) (*domain.Accommodation, int, error) {
	ctx, span := service.tracer.Start(ctx, "AccommodationService.ReplaceCustomFields")
	defer span.End()

	updated, err := service.store.ReplaceCustomFields(ctx, id, fields)
	if err != nil {
		if err.Error() == errors.AccommodationNotFound {
			return nil, http.StatusNotFound, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return updated, 0, nil
}
