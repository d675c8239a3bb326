package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"gastmanager/domain"
)

func TestSummaryCountsForAdmin(t *testing.T) {
	accommodation := &domain.Accommodation{ID: primitive.NewObjectID(), Name: "A", Capacity: 4}
	accommodations := newFakeAccommodationStore(accommodation)
	guests := newFakeGuestStore(
		&domain.Guest{ID: primitive.NewObjectID(), Accommodation: accommodation.ID, PaymentCompleted: true},
		&domain.Guest{ID: primitive.NewObjectID(), Accommodation: accommodation.ID},
		&domain.Guest{ID: primitive.NewObjectID(), Accommodation: accommodation.ID, CheckedOut: true, PaymentCompleted: true, KeyReturned: true},
		&domain.Guest{ID: primitive.NewObjectID(), Accommodation: accommodation.ID, CheckedOut: true},
	)
	cache := newFakeReportCache()
	service := NewReportService(guests, accommodations, cache, testTracer(), testLogger())

	summary, status, err := service.Summary(context.Background(), adminUser(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, 2, summary.CheckIns)
	assert.Equal(t, 2, summary.CheckOuts)
	assert.Equal(t, 2, summary.PendingPayments)
	assert.Equal(t, 1, summary.MissingKeys)
	assert.Equal(t, 0.5, summary.OccupancyRate)
}

func TestSummaryStoresUnderScopeKey(t *testing.T) {
	accommodation := &domain.Accommodation{ID: primitive.NewObjectID(), Name: "A", Capacity: 2}
	cache := newFakeReportCache()
	service := NewReportService(newFakeGuestStore(), newFakeAccommodationStore(accommodation), cache, testTracer(), testLogger())

	_, _, err := service.Summary(context.Background(), adminUser(), "")
	require.NoError(t, err)
	assert.Contains(t, cache.entries, "all")

	_, _, err = service.Summary(context.Background(), adminUser(), accommodation.ID.Hex())
	require.NoError(t, err)
	assert.Contains(t, cache.entries, "accommodation:"+accommodation.ID.Hex())
}

func TestSummaryServedFromCache(t *testing.T) {
	cache := newFakeReportCache()
	cache.entries["all"] = &domain.ReportSummary{CheckIns: 42}
	service := NewReportService(newFakeGuestStore(), newFakeAccommodationStore(), cache, testTracer(), testLogger())

	summary, status, err := service.Summary(context.Background(), adminUser(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, 42, summary.CheckIns)
}

func TestSummaryDegradesWhenCacheFails(t *testing.T) {
	accommodation := &domain.Accommodation{ID: primitive.NewObjectID(), Name: "A", Capacity: 1}
	guests := newFakeGuestStore(&domain.Guest{ID: primitive.NewObjectID(), Accommodation: accommodation.ID, PaymentCompleted: true})
	cache := newFakeReportCache()
	cache.getErr = assert.AnError
	service := NewReportService(guests, newFakeAccommodationStore(accommodation), cache, testTracer(), testLogger())

	summary, status, err := service.Summary(context.Background(), adminUser(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, 1, summary.CheckIns)
}

func TestSummaryStaffScopedToAdministered(t *testing.T) {
	staff := staffUser()
	mine := &domain.Accommodation{ID: primitive.NewObjectID(), Name: "A", Capacity: 2, Administrators: []primitive.ObjectID{staff.ID}}
	other := &domain.Accommodation{ID: primitive.NewObjectID(), Name: "B", Capacity: 2}
	guests := newFakeGuestStore(
		&domain.Guest{ID: primitive.NewObjectID(), Accommodation: mine.ID, PaymentCompleted: true},
		&domain.Guest{ID: primitive.NewObjectID(), Accommodation: other.ID},
	)
	service := NewReportService(guests, newFakeAccommodationStore(mine, other), newFakeReportCache(), testTracer(), testLogger())

	summary, status, err := service.Summary(context.Background(), staff, "")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, 1, summary.CheckIns)
	assert.Equal(t, 0, summary.PendingPayments)
}

func TestSummaryStaffDeniedForeignAccommodation(t *testing.T) {
	accommodation := &domain.Accommodation{ID: primitive.NewObjectID(), Name: "A"}
	service := NewReportService(newFakeGuestStore(), newFakeAccommodationStore(accommodation), newFakeReportCache(), testTracer(), testLogger())

	_, status, err := service.Summary(context.Background(), staffUser(), accommodation.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, 403, status)
}
