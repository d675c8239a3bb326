package application

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/domain"
	"gastmanager/errors"
)

// guestColumnAliases maps each canonical guest field to the header names
// accepted for it, in fallback order. Exports from older tooling use
// PascalCase or German headers.
var guestColumnAliases = map[string][]string{
	"firstName":          {"firstName", "FirstName", "Vorname"},
	"lastName":           {"lastName", "LastName", "Name"},
	"roomNumber":         {"roomNumber", "RoomNumber", "Zimmernummer"},
	"roomKey":            {"roomKey", "RoomKey", "Zimmerschlüssel"},
	"deposit":            {"deposit", "Deposit", "Kaution"},
	"additionalBookings": {"additionalBookings", "AdditionalBookings", "Nachbuchungen"},
	"skiPassCategory":    {"skiPassCategory", "SkiPassCategory", "Skipass"},
}

type ImportResult struct {
	Message   string   `json:"message"`
	Processed int      `json:"processed"`
	Imported  int      `json:"imported"`
	Errors    []string `json:"errors"`
}

type ImportService struct {
	guests         domain.GuestStore
	accommodations domain.AccommodationStore
	tracer         trace.Tracer
	logger         *logrus.Logger
}

func NewImportService(guests domain.GuestStore, accommodations domain.AccommodationStore, tracer trace.Tracer, logger *logrus.Logger) *ImportService {
	return &ImportService{
		guests:         guests,
		accommodations: accommodations,
		tracer:         tracer,
		logger:         logger,
	}
}

// ImportCSV streams the reader's rows into guests of the given accommodation.
// Rows are accumulated and written with a single bulk insert, so a failing
// file imports nothing.
func (service *ImportService) ImportCSV(ctx context.Context, accommodationID primitive.ObjectID, reader io.Reader) (*ImportResult, int, error) {
	ctx, span := service.tracer.Start(ctx, "ImportService.ImportCSV")
	defer span.End()

	accommodation, err := service.accommodations.Get(ctx, accommodationID)
	if err != nil {
		return nil, http.StatusNotFound, fmt.Errorf(errors.AccommodationNotFound)
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	result := &ImportResult{Errors: []string{}}

	header, err := csvReader.Read()
	if err == io.EOF {
		// an empty file is an import of zero rows, not a broken stream
		result.Message = "0 guests imported"
		return result, 0, nil
	}
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf(errors.CSVStreamError)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var guests []*domain.Guest

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf(errors.CSVStreamError)
		}
		result.Processed++
		guests = append(guests, mapGuestRow(record, columns, accommodation))
	}

	if len(guests) > 0 {
		if _, err := service.guests.InsertMany(ctx, guests); err != nil {
			service.logger.Errorf("bulk guest insert failed for accommodation %s: %s", accommodationID.Hex(), err)
			return nil, http.StatusInternalServerError, fmt.Errorf(errors.CSVInsertError)
		}
	}

	result.Imported = len(guests)
	result.Message = fmt.Sprintf("%d guests imported", result.Imported)
	service.logger.Infof("imported %d/%d guests into accommodation %s", result.Imported, result.Processed, accommodationID.Hex())
	return result, 0, nil
}

// mapGuestRow builds a guest from one CSV record. Canonical fields fall back
// through their header aliases; custom fields copy the matching column raw
// when it is non-empty.
func mapGuestRow(record []string, columns map[string]int, accommodation *domain.Accommodation) *domain.Guest {
	value := func(field string) string {
		for _, alias := range guestColumnAliases[field] {
			if idx, ok := columns[alias]; ok && idx < len(record) && record[idx] != "" {
				return record[idx]
			}
		}
		return ""
	}

	deposit, err := strconv.ParseFloat(value("deposit"), 64)
	if err != nil {
		deposit = 0
	}

	guest := &domain.Guest{
		FirstName:          value("firstName"),
		LastName:           value("lastName"),
		RoomNumber:         value("roomNumber"),
		RoomKey:            value("roomKey"),
		Deposit:            deposit,
		AdditionalBookings: value("additionalBookings"),
		SkiPassCategory:    value("skiPassCategory"),
		CustomFields:       map[string]string{},
		Accommodation:      accommodation.ID,
		CheckInDate:        time.Now(),
	}

	for _, field := range accommodation.CustomFields {
		idx, ok := columns[field.Name]
		if !ok || idx >= len(record) {
			continue
		}
		if raw := record[idx]; raw != "" {
			guest.CustomFields[field.Name] = raw
		}
	}

	return guest
}
