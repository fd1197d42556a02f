package ports

import (
	"context"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// PlacesProvider is the external nearby-search collaborator.
type PlacesProvider interface {
	// SearchNearby returns up to limit summaries for term inside region.
	SearchNearby(ctx context.Context, region domain.Region, term string, limit int) ([]domain.PlaceSummary, error)
	// GetDetails returns the full record for one summary. Category is left
	// empty; the caller classifies.
	GetDetails(ctx context.Context, id string) (*domain.PlaceRecord, error)
}

// GenerateOptions are the sampling parameters passed to a NarrativeGenerator.
type GenerateOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
	TopK        float32
	TopP        float32
}

// NarrativeGenerator is the external text-generation collaborator.
type NarrativeGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, a *domain.Analysis) error
	PublishProgress(ctx context.Context, p *domain.SearchProgress) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeProgress(ctx context.Context, handler func(ctx context.Context, p *domain.SearchProgress) error) error
	SubscribeAnalysisCompleted(ctx context.Context, handler func(ctx context.Context, a *domain.Analysis) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// CounterStore holds atomic counters that expire on their own.
type CounterStore interface {
	// Incr increments key and returns the new value. A key created by the
	// call expires after ttlSeconds.
	Incr(ctx context.Context, key string, ttlSeconds int) (int64, error)
	Decr(ctx context.Context, key string) (int64, error)
}

// QuotaChecker gates analyses for free-tier users. The pipeline never calls
// it; the HTTP layer reserves a slot before starting an analysis and
// releases it when the analysis fails.
type QuotaChecker interface {
	Reserve(ctx context.Context, userID string, tier domain.Tier) (bool, error)
	Release(ctx context.Context, userID string, tier domain.Tier) error
}

// ReportWorkflowStarter kicks off the durable premium report workflow.
type ReportWorkflowStarter interface {
	StartPremiumReport(ctx context.Context, req domain.PremiumReportRequest) (string, error)
}
