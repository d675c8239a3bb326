package domain

import "context"

// ReportCache holds computed report summaries for a short TTL.
type ReportCache interface {
	Get(ctx context.Context, key string) (*ReportSummary, error)
	Post(ctx context.Context, key string, summary *ReportSummary) error
}
