package handlers

import (
	"context"
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

type AccommodationHandler struct {
	service *application.AccommodationService
	access  *authorization.AccessControl
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewAccommodationHandler(service *application.AccommodationService, access *authorization.AccessControl, tracer trace.Tracer, logger *logrus.Logger) *AccommodationHandler {
	return &AccommodationHandler{
		service: service,
		access:  access,
		tracer:  tracer,
		logger:  logger,
	}
}

func (handler *AccommodationHandler) Init(router *mux.Router) {
	router.HandleFunc("/accommodations", handler.GetAll).Methods("GET")
	router.HandleFunc("/accommodations", handler.Create).Methods("POST")
	router.HandleFunc("/accommodations/{id}", handler.Get).Methods("GET")
	router.HandleFunc("/accommodations/{id}", handler.Update).Methods("PUT")
	router.HandleFunc("/accommodations/{id}", handler.Delete).Methods("DELETE")
	router.HandleFunc("/accommodations/{id}/administrators", handler.UpdateAdministrators).Methods("PUT")
	router.HandleFunc("/accommodations/{id}/custom-fields", handler.ReplaceCustomFields).Methods("PUT")
}

func (handler *AccommodationHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AccommodationHandler.GetAll")
	defer span.End()

	user, ok := currentUser(ctx, handler.access, span, writer)
	if !ok {
		return
	}

	accommodations, err := handler.service.ListFor(ctx, user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.DatabaseError, http.StatusInternalServerError)
		return
	}
	jsonResponse(accommodations, writer)
}

func (handler *AccommodationHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AccommodationHandler.Get")
	defer span.End()

	user, ok := currentUser(ctx, handler.access, span, writer)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.AccommodationNotFound, http.StatusNotFound)
		return
	}

	accommodation, status, err := handler.service.GetFor(ctx, user, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	jsonResponse(accommodation, writer)
}

func (handler *AccommodationHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AccommodationHandler.Create")
	defer span.End()

	claims, ok := authorization.ClaimsFromContext(ctx)
	if !ok {
		http.Error(writer, errors.NoTokenError, http.StatusUnauthorized)
		return
	}
	creator, status, err := handler.access.RequireAdmin(ctx, claims)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}

	var accommodation domain.Accommodation
	if err := json.NewDecoder(req.Body).Decode(&accommodation); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(accommodation); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	saved, status, err := handler.service.Create(ctx, creator, &accommodation)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(saved, writer)
}

func (handler *AccommodationHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AccommodationHandler.Update")
	defer span.End()

	id, ok := handler.adminAndID(ctx, span, writer, req)
	if !ok {
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

func (handler *AccommodationHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AccommodationHandler.Delete")
	defer span.End()

	id, ok := handler.adminAndID(ctx, span, writer, req)
	if !ok {
		return
	}

	if status, err := handler.service.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	writer.WriteHeader(http.StatusOK)
}

type administratorsRequest struct {
	Administrators []string `json:"administrators"`
	Action         string   `json:"action"`
}

func (handler *AccommodationHandler) UpdateAdministrators(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AccommodationHandler.UpdateAdministrators")
	defer span.End()

	id, ok := handler.adminAndID(ctx, span, writer, req)
	if !ok {
		return
	}

	var payload administratorsRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	if len(payload.Administrators) == 0 || payload.Action == "" {
		http.Error(writer, errors.AdministratorsRequired, http.StatusBadRequest)
		return
	}

	updated, status, err := handler.service.UpdateAdministrators(ctx, id, payload.Administrators, payload.Action)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	jsonResponse(updated, writer)
}

type customFieldsRequest struct {
	CustomFields []domain.CustomField `json:"customFields" validate:"required,dive"`
}

func (handler *AccommodationHandler) ReplaceCustomFields(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AccommodationHandler.ReplaceCustomFields")
	defer span.End()

	id, ok := handler.adminAndID(ctx, span, writer, req)
	if !ok {
		return
	}

	var payload customFieldsRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	if payload.CustomFields == nil {
		http.Error(writer, errors.CustomFieldsRequired, http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	updated, status, err := handler.service.ReplaceCustomFields(ctx, id, payload.CustomFields)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	jsonResponse(updated, writer)
}

// adminAndID runs the admin guard and parses the path id; rejections are
// written before returning.
func (handler *AccommodationHandler) adminAndID(ctx context.Context, span trace.Span, writer http.ResponseWriter, req *http.Request) (primitive.ObjectID, bool) {
	claims, ok := authorization.ClaimsFromContext(ctx)
	if !ok {
		http.Error(writer, errors.NoTokenError, http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	if _, status, err := handler.access.RequireAdmin(ctx, claims); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.AccommodationNotFound, http.StatusNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}
