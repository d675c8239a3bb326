package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/authorization"
	"gastmanager/service"
)

type ReportHandler struct {
	service *application.ReportService
	access  *authorization.AccessControl
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewReportHandler(service *application.ReportService, access *authorization.AccessControl, tracer trace.Tracer, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		access:  access,
		tracer:  tracer,
		logger:  logger,
	}
}

func (handler *ReportHandler) Init(router *mux.Router) {
	router.HandleFunc("/reports/summary", handler.Summary).Methods("GET")
}

func (handler *ReportHandler) Summary(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReportHandler.Summary")
	defer span.End()

	user, ok := currentUser(ctx, handler.access, span, writer)
	if !ok {
		return
	}

	summary, status, err := handler.service.Summary(ctx, user, req.URL.Query().Get("accommodation"))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	jsonResponse(summary, writer)
}
