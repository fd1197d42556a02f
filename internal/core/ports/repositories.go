package ports

import (
	"context"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// AnalysisRepository persists finished analyses. The pipeline treats it as
// best-effort: a failed insert never fails an analysis.
type AnalysisRepository interface {
	Insert(ctx context.Context, a *domain.Analysis) error
	GetByID(ctx context.Context, id string) (*domain.Analysis, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Analysis, int, error)
	// FindNearby returns analyses whose region center lies within
	// radiusMeters of center, nearest first.
	FindNearby(ctx context.Context, center domain.GeoPoint, radiusMeters float64, limit int) ([]domain.Analysis, error)
	Delete(ctx context.Context, id string) error
}

// ReportArchive stores rendered premium reports and archived analyses.
type ReportArchive interface {
	// Put stores body under key and returns a location usable for retrieval.
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
