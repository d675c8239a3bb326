package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/authorization"
	"gastmanager/domain"
	"gastmanager/errors"
	"gastmanager/service"
)

var validate = validator.New()

type UserHandler struct {
	service *application.UserService
	access  *authorization.AccessControl
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewUserHandler(service *application.UserService, access *authorization.AccessControl, tracer trace.Tracer, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		access:  access,
		tracer:  tracer,
		logger:  logger,
	}
}

// InitPublic registers the routes that must stay reachable without a token.
func (handler *UserHandler) InitPublic(router *mux.Router) {
	router.HandleFunc("/users/login", handler.Login).Methods("POST")
}

func (handler *UserHandler) Init(router *mux.Router) {
	router.HandleFunc("/users/me", handler.Me).Methods("GET")
	router.HandleFunc("/users", handler.Register).Methods("POST")
	router.HandleFunc("/users", handler.GetAll).Methods("GET")
	router.HandleFunc("/users/{id}", handler.Update).Methods("PUT")
	router.HandleFunc("/users/{id}", handler.Delete).Methods("DELETE")
}

func (handler *UserHandler) Login(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Login")
	defer span.End()

	var credentials domain.Credentials
	if err := json.NewDecoder(req.Body).Decode(&credentials); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := handler.service.Login(ctx, &credentials)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.InvalidCredentials, http.StatusUnauthorized)
		return
	}

	jsonResponse(map[string]string{"token": token}, writer)
}

func (handler *UserHandler) Me(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Me")
	defer span.End()

	claims, ok := authorization.ClaimsFromContext(ctx)
	if !ok {
		http.Error(writer, errors.NoTokenError, http.StatusUnauthorized)
		return
	}

	user, err := handler.access.CurrentUser(ctx, claims)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.UserNotFound, http.StatusUnauthorized)
		return
	}

	jsonResponse(user, writer)
}

type registerUserRequest struct {
	Username  string      `json:"username" validate:"required,min=3"`
	Password  string      `json:"password" validate:"required,min=8"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      domain.Role `json:"role" validate:"required,oneof=admin staff"`
}

func (handler *UserHandler) Register(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Register")
	defer span.End()

	if !handler.requireAdmin(ctx, span, writer) {
		return
	}

	var payload registerUserRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	user := &domain.User{
		Username:  payload.Username,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Role:      payload.Role,
	}

	saved, status, err := handler.service.Register(ctx, user, payload.Password)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(saved, writer)
}

func (handler *UserHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.GetAll")
	defer span.End()

	if !handler.requireAdmin(ctx, span, writer) {
		return
	}

	users, err := handler.service.GetAll(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}
	jsonResponse(users, writer)
}

func (handler *UserHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Update")
	defer span.End()

	if !handler.requireAdmin(ctx, span, writer) {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.UserNotFound, http.StatusNotFound)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	updated, status, err := handler.service.UpdateFields(ctx, id, payload)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	jsonResponse(updated, writer)
}

func (handler *UserHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Delete")
	defer span.End()

	if !handler.requireAdmin(ctx, span, writer) {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.UserNotFound, http.StatusNotFound)
		return
	}

	if status, err := handler.service.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	writer.WriteHeader(http.StatusOK)
}

// requireAdmin resolves the caller and writes the rejection itself; it
// reports whether the request may proceed.
func (handler *UserHandler) requireAdmin(ctx context.Context, span trace.Span, writer http.ResponseWriter) bool {
	claims, ok := authorization.ClaimsFromContext(ctx)
	if !ok {
		http.Error(writer, errors.NoTokenError, http.StatusUnauthorized)
		return false
	}

	if _, status, err := handler.access.RequireAdmin(ctx, claims); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return false
	}
	return true
}
