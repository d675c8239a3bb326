package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/domain"
)

const reportTTL = 5 * time.Minute

type ReportRedisCache struct {
	cli    *redis.Client
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewReportRedisCache(address string, logger *logrus.Logger, tracer trace.Tracer) *ReportRedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: address,
	})

	return &ReportRedisCache{
		cli:    client,
		logger: logger,
		tracer: tracer,
	}
}

// Ping checks the connection.
func (rc *ReportRedisCache) Ping() {
	val, _ := rc.cli.Ping().Result()
	rc.logger.Debugf("report cache ping: %s", val)
}

func (rc *ReportRedisCache) Get(ctx context.Context, key string) (*domain.ReportSummary, error) {
	ctx, span := rc.tracer.Start(ctx, "ReportCache.Get")
	defer span.End()

	data, err := rc.cli.Get(constructKey(key)).Bytes()
	if err == redis.Nil {
		// a miss is not a cache failure
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary domain.ReportSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	rc.logger.Debugf("cache hit - report %s", key)
	return &summary, nil
}

func (rc *ReportRedisCache) Post(ctx context.Context, key string, summary *domain.ReportSummary) error {
	ctx, span := rc.tracer.Start(ctx, "ReportCache.Post")
	defer span.End()

	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return rc.cli.Set(constructKey(key), data, reportTTL).Err()
}

func constructKey(key string) string {
	return "reports:" + key
}
