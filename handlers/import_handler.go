package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/authorization"
	"gastmanager/errors"
	"gastmanager/service"
)

const maxUploadSize = 32 << 20

type ImportHandler struct {
	service   *application.ImportService
	access    *authorization.AccessControl
	uploadDir string
	tracer    trace.Tracer
	logger    *logrus.Logger
}

func NewImportHandler(service *application.ImportService, access *authorization.AccessControl, uploadDir string, tracer trace.Tracer, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		service:   service,
		access:    access,
		uploadDir: uploadDir,
		tracer:    tracer,
		logger:    logger,
	}
}

func (handler *ImportHandler) Init(router *mux.Router) {
	router.HandleFunc("/import", handler.Import).Methods("POST")
}

func (handler *ImportHandler) Import(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ImportHandler.Import")
	defer span.End()

	claims, ok := authorization.ClaimsFromContext(ctx)
	if !ok {
		http.Error(writer, errors.NoTokenError, http.StatusUnauthorized)
		return
	}

	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.NoCSVFileError, http.StatusBadRequest)
		return
	}

	upload, _, err := req.FormFile("csvFile")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.NoCSVFileError, http.StatusBadRequest)
		return
	}
	defer upload.Close()

	accommodationHex := req.FormValue("accommodationId")
	if accommodationHex == "" {
		http.Error(writer, errors.AccommodationIDRequired, http.StatusBadRequest)
		return
	}

	accommodationID, err := primitive.ObjectIDFromHex(accommodationHex)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.AccommodationNotFound, http.StatusNotFound)
		return
	}

	if status, err := handler.access.CheckAccommodationAccess(ctx, claims, accommodationHex); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}

	tempPath, err := handler.saveUpload(upload)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.CSVStreamError, http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			handler.logger.Warnf("could not remove upload %s: %s", tempPath, err)
		}
	}()

	file, err := os.Open(tempPath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.CSVStreamError, http.StatusInternalServerError)
		return
	}
	defer file.Close()

	result, status, err := handler.service.ImportCSV(ctx, accommodationID, file)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), status)
		return
	}
	jsonResponse(result, writer)
}

// saveUpload spools the multipart part to a uniquely named file under the
// upload directory.
func (handler *ImportHandler) saveUpload(upload io.Reader) (string, error) {
	if err := os.MkdirAll(handler.uploadDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(handler.uploadDir, uuid.NewString()+".csv")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, upload); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
