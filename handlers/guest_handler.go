package handlers

import (
	"encoding/json"
	"net/http"

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

type GuestHandler struct {
	service *application.GuestService
	access  *authorization.AccessControl
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewGuestHandler(service *application.GuestService, access *authorization.AccessControl, tracer trace.Tracer, logger *logrus.Logger) *GuestHandler {
	return &GuestHandler{
		service: service,
		access:  access,
		tracer:  tracer,
		logger:  logger,
	}
}

func (handler *GuestHandler) Init(router *mux.Router) {
	router.HandleFunc("/guests", handler.GetAll).Methods("GET")
	router.HandleFunc("/guests", handler.Create).Methods("POST")
	router.HandleFunc("/guests/{id}", handler.Get).Methods("GET")
	router.HandleFunc("/guests/{id}", handler.Update).Methods("PUT")
	router.HandleFunc("/guests/{id}", handler.Delete).Methods("DELETE")
	router.HandleFunc("/guests/{id}/status", handler.UpdateStatus).Methods("PUT")
}

func (handler *GuestHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "GuestHandler.GetAll")
	defer span.End()

	user, ok := currentUser(ctx, handler.access, span, writer)
	if !ok {
		return
	}

	guests, status, err := handler.service.ListFor(ctx, user, req.URL.Query().Get("accommodation"))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	jsonResponse(guests, writer)
}

func (handler *GuestHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "GuestHandler.Get")
	defer span.End()

	user, ok := currentUser(ctx, handler.access, span, writer)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.GuestNotFound, http.StatusNotFound)
		return
	}

	guest, status, err := handler.service.GetFor(ctx, user, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	jsonResponse(guest, writer)
}

func (handler *GuestHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "GuestHandler.Create")
	defer span.End()

	claims, ok := authorization.ClaimsFromContext(ctx)
	if !ok {
		http.Error(writer, errors.NoTokenError, http.StatusUnauthorized)
		return
	}

	var guest domain.Guest
	if err := json.NewDecoder(req.Body).Decode(&guest); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(guest); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	accommodationHex := ""
	if !guest.Accommodation.IsZero() {
		accommodationHex = guest.Accommodation.Hex()
	}
	if status, err := handler.access.CheckAccommodationAccess(ctx, claims, accommodationHex); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}

	saved, err := handler.service.Create(ctx, &guest)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(saved, writer)
}

func (handler *GuestHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "GuestHandler.Update")
	defer span.End()

	user, ok := currentUser(ctx, handler.access, span, writer)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.GuestNotFound, http.StatusNotFound)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	updated, status, err := handler.service.UpdateFields(ctx, user, id, payload)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	jsonResponse(updated, writer)
}

func (handler *GuestHandler) UpdateStatus(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "GuestHandler.UpdateStatus")
	defer span.End()

	user, ok := currentUser(ctx, handler.access, span, writer)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.GuestNotFound, http.StatusNotFound)
		return
	}

	var status domain.StatusUpdate
	if err := json.NewDecoder(req.Body).Decode(&status); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	updated, statusCode, err := handler.service.UpdateStatus(ctx, user, id, status)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), statusCode)
		return
	}
	jsonResponse(updated, writer)
}

func (handler *GuestHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "GuestHandler.Delete")
	defer span.End()

	user, ok := currentUser(ctx, handler.access, span, writer)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.GuestNotFound, http.StatusNotFound)
		return
	}

	if status, err := handler.service.Delete(ctx, user, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	writer.WriteHeader(http.StatusOK)
}
