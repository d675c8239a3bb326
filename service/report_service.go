package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/domain"
	"gastmanager/errors"
)

type ReportService struct {
	guests         domain.GuestStore
	accommodations domain.AccommodationStore
	cache          domain.ReportCache
	breaker        *gobreaker.CircuitBreaker
	tracer         trace.Tracer
	logger         *logrus.Logger
}

func NewReportService(guests domain.GuestStore, accommodations domain.AccommodationStore, cache domain.ReportCache, tracer trace.Tracer, logger *logrus.Logger) *ReportService {
	return &ReportService{
		guests:         guests,
		accommodations: accommodations,
		cache:          cache,
		breaker: gobreaker.NewCircuitBreaker(
			gobreaker.Settings{
				Name:        "cache",
				MaxRequests: 1,
				Timeout:     10 * time.Second,
				Interval:    0,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures > 2
				},
				OnStateChange: func(name string, from, to gobreaker.State) {
					logger.Infof("circuit breaker '%s' changed from '%s' to '%s'", name, from, to)
				},
			},
		),
		tracer: tracer,
		logger: logger,
	}
}

// Summary computes (or serves from cache) the report for the caller's scope.
// A tripped or failing cache degrades to direct computation; it is never a
// request failure.
func (service *ReportService) Summary(ctx context.Context, user *domain.User, accommodationHex string) (*domain.ReportSummary, int, error) {
	ctx, span := service.tracer.Start(ctx, "ReportService.Summary")
	defer span.End()

	filter, key, status, err := service.resolveScope(ctx, user, accommodationHex)
	if err != nil {
		return nil, status, err
	}

	if cached := service.cachedSummary(ctx, key); cached != nil {
		return cached, 0, nil
	}

	summary, err := service.compute(ctx, filter)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	service.storeSummary(ctx, key, summary)
	return summary, 0, nil
}

// resolveScope mirrors guest-list visibility: admins see everything, staff
// see their administered accommodations, and an explicit accommodation
// narrows either.
func (service *ReportService) resolveScope(ctx context.Context, user *domain.User, accommodationHex string) (domain.GuestFilter, string, int, error) {
	var filter domain.GuestFilter

	if accommodationHex != "" {
		accommodationID, err := primitive.ObjectIDFromHex(accommodationHex)
		if err != nil {
			return filter, "", http.StatusBadRequest, fmt.Errorf(errors.AccommodationIDRequired)
		}
		accommodation, err := service.accommodations.Get(ctx, accommodationID)
		if err != nil {
			return filter, "", http.StatusNotFound, fmt.Errorf(errors.AccommodationNotFound)
		}
		if user.Role != domain.RoleAdmin && !accommodation.HasAdministrator(user.ID) {
			return filter, "", http.StatusForbidden, fmt.Errorf(errors.AccommodationAccessDenied)
		}
		filter.Accommodation = &accommodationID
		return filter, "accommodation:" + accommodationID.Hex(), 0, nil
	}

	if user.Role == domain.RoleAdmin {
		return filter, "all", 0, nil
	}

	administered, err := service.accommodations.GetByAdministrator(ctx, user.ID)
	if err != nil {
		return filter, "", http.StatusInternalServerError, err
	}
	ids := make([]primitive.ObjectID, 0, len(administered))
	for _, accommodation := range administered {
		ids = append(ids, accommodation.ID)
	}
	filter.AccommodationIn = ids
	return filter, "user:" + user.ID.Hex(), 0, nil
}

func (service *ReportService) compute(ctx context.Context, filter domain.GuestFilter) (*domain.ReportSummary, error) {
	guests, err := service.guests.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &domain.ReportSummary{}
	for _, guest := range guests {
		if guest.CheckedOut {
			summary.CheckOuts++
			if !guest.KeyReturned {
				summary.MissingKeys++
			}
		} else {
			summary.CheckIns++
		}
		if !guest.PaymentCompleted {
			summary.PendingPayments++
		}
	}

	capacity, err := service.totalCapacity(ctx, filter)
	if err != nil {
		return nil, err
	}
	if capacity > 0 {
		summary.OccupancyRate = float64(summary.CheckIns) / float64(capacity)
	}
	return summary, nil
}

func (service *ReportService) totalCapacity(ctx context.Context, filter domain.GuestFilter) (int, error) {
	if filter.Accommodation != nil {
		accommodation, err := service.accommodations.Get(ctx, *filter.Accommodation)
		if err != nil {
			return 0, err
		}
		return accommodation.Capacity, nil
	}

	if filter.AccommodationIn != nil {
		total := 0
		for _, id := range filter.AccommodationIn {
			accommodation, err := service.accommodations.Get(ctx, id)
			if err != nil {
				continue
			}
			total += accommodation.Capacity
		}
		return total, nil
	}

	accommodations, err := service.accommodations.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, accommodation := range accommodations {
		total += accommodation.Capacity
	}
	return total, nil
}

func (service *ReportService) cachedSummary(ctx context.Context, key string) *domain.ReportSummary {
	cached, err := service.breaker.Execute(func() (interface{}, error) {
		return service.cache.Get(ctx, key)
	})
	if err != nil {
		service.logger.Warnf("report cache read failed for %s: %s", key, err)
		return nil
	}
	summary, _ := cached.(*domain.ReportSummary)
	return summary
}

func (service *ReportService) storeSummary(ctx context.Context, key string, summary *domain.ReportSummary) {
	_, err := service.breaker.Execute(func() (interface{}, error) {
		return nil, service.cache.Post(ctx, key, summary)
	})
	if err != nil {
		service.logger.Warnf("report cache write failed for %s: %s", key, err)
	}
}
