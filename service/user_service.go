package application

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"gastmanager/authorization"
	"gastmanager/domain"
	"gastmanager/errors"
)

type UserService struct {
	store  domain.UserStore
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewUserService(store domain.UserStore, tracer trace.Tracer, logger *logrus.Logger) *UserService {
	return &UserService{
		store:  store,
		tracer: tracer,
		logger: logger,
	}
}

func (service *UserService) Login(ctx context.Context, credentials *domain.Credentials) (string, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Login")
	defer span.End()

	user, err := service.store.GetByUsername(ctx, credentials.Username)
	if err != nil || user == nil {
		return "", fmt.Errorf(errors.InvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(credentials.Password)); err != nil {
		return "", fmt.Errorf(errors.InvalidCredentials)
	}

	return authorization.GenerateJWT(user)
}

// Register provisions a staff or admin account with an initial password.
func (service *UserService) Register(ctx context.Context, user *domain.User, password string) (*domain.User, int, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Register")
	defer span.End()

	if existing, err := service.store.GetByUsername(ctx, user.Username); err == nil && existing != nil {
		return nil, http.StatusBadRequest, fmt.Errorf(errors.UsernameExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	user.Password = string(hash)

	saved, err := service.store.Insert(ctx, user)
	if err != nil {
		if err.Error() == errors.UsernameExists {
			return nil, http.StatusBadRequest, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return saved, 0, nil
}

func (service *UserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.GetAll")
	defer span.End()

	return service.store.GetAll(ctx)
}

func (service *UserService) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Get")
	defer span.End()

	return service.store.Get(ctx, id)
}

var userUpdatableFields = map[string]bool{
	"firstName": true,
	"lastName":  true,
	"role":      true,
}

// UpdateFields applies an allow-listed partial update; a "password" key is
// re-hashed, every other unlisted key is discarded.
func (service *UserService) UpdateFields(ctx context.Context, id primitive.ObjectID, payload map[string]interface{}) (*domain.User, int, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.UpdateFields")
	defer span.End()

	existing, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, http.StatusNotFound, fmt.Errorf(errors.UserNotFound)
	}

	if err := applyUpdate(payload, userUpdatableFields, existing); err != nil {
		return nil, http.StatusBadRequest, err
	}

	if password, ok := payload["password"].(string); ok && password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		existing.Password = string(hash)
	}

	updated, err := service.store.Update(ctx, existing)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return updated, 0, nil
}

// Delete removes the account. References to the user elsewhere (createdBy,
// administrators lists) are left in place.
func (service *UserService) Delete(ctx context.Context, id primitive.ObjectID) (int, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Delete")
	defer span.End()

	if err := service.store.Delete(ctx, id); err != nil {
		if err.Error() == errors.UserNotFound {
			return http.StatusNotFound, err
		}
		return http.StatusInternalServerError, err
	}
	return 0, nil
}
