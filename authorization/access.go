package authorization

import (
	"context"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/domain"
	"gastmanager/errors"
)

// AccessControl resolves the stored user behind a set of claims and applies
// the two database-backed guards: global admin role and accommodation-level
// administrator membership. Decisions are made per request, never cached.
type AccessControl struct {
	users          domain.UserStore
	accommodations domain.AccommodationStore
	tracer         trace.Tracer
}

func NewAccessControl(users domain.UserStore, accommodations domain.AccommodationStore, tracer trace.Tracer) *AccessControl {
	return &AccessControl{
		users:          users,
		accommodations: accommodations,
		tracer:         tracer,
	}
}

// CurrentUser loads the full user record for the authenticated principal.
func (ac *AccessControl) CurrentUser(ctx context.Context, claims *domain.Claims) (*domain.User, error) {
	ctx, span := ac.tracer.Start(ctx, "AccessControl.CurrentUser")
	defer span.End()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf(errors.UserNotFound)
	}

	user, err := ac.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(errors.UserNotFound)
	}
	return user, nil
}

// RequireAdmin resolves the stored user and rejects unless role is admin.
func (ac *AccessControl) RequireAdmin(ctx context.Context, claims *domain.Claims) (*domain.User, int, error) {
	ctx, span := ac.tracer.Start(ctx, "AccessControl.RequireAdmin")
	defer span.End()

	user, err := ac.CurrentUser(ctx, claims)
	if err != nil {
		return nil, http.StatusUnauthorized, err
	}
	if user.Role != domain.RoleAdmin {
		return nil, http.StatusForbidden, fmt.Errorf(errors.AdminRequired)
	}
	return user, 0, nil
}

// CheckAccommodationAccess allows admins unconditionally; other callers must
// supply an accommodation id that resolves to an accommodation whose
// administrators list contains them. A missing id is a client error (400),
// an unresolvable one is 404, and both are checked before the membership
// test (403). The returned status is 0 when access is granted.
func (ac *AccessControl) CheckAccommodationAccess(ctx context.Context, claims *domain.Claims, accommodationID string) (int, error) {
	ctx, span := ac.tracer.Start(ctx, "AccessControl.CheckAccommodationAccess")
	defer span.End()

	user, err := ac.CurrentUser(ctx, claims)
	if err != nil {
		return http.StatusUnauthorized, err
	}
	if user.Role == domain.RoleAdmin {
		return 0, nil
	}

	if accommodationID == "" {
		return http.StatusBadRequest, fmt.Errorf(errors.AccommodationIDRequired)
	}

	id, err := primitive.ObjectIDFromHex(accommodationID)
	if err != nil {
		return http.StatusNotFound, fmt.Errorf(errors.AccommodationNotFound)
	}

	accommodation, err := ac.accommodations.Get(ctx, id)
	if err != nil {
		return http.StatusNotFound, fmt.Errorf(errors.AccommodationNotFound)
	}

	if accommodation.HasAdministrator(user.ID) {
		return 0, nil
	}
	return http.StatusForbidden, fmt.Errorf(errors.AccommodationAccessDenied)
}
