package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/ports"
	"github.com/samirrijal/areainsight/internal/pkg/logging"
	"github.com/samirrijal/areainsight/internal/pkg/metrics"
)

// AnalyzeRequest is one user-triggered analysis of a drawn region.
type AnalyzeRequest struct {
	SessionID  string
	UserID     string
	Region     domain.Region
	Language   string
	SkipSearch bool
}

// AnalysisService runs the region → snapshot → narrative → sections pipeline.
type AnalysisService struct {
	search      *SearchService
	insight     *InsightService
	sessions    *SessionRegistry
	analyses    ports.AnalysisRepository
	cache       ports.CacheService
	events      ports.EventPublisher
	snapshotTTL int
	now         func() time.Time
}

// NewAnalysisService creates a new AnalysisService. analyses, cache and
// events may be nil.
func NewAnalysisService(
	search *SearchService,
	insight *InsightService,
	sessions *SessionRegistry,
	analyses ports.AnalysisRepository,
	cache ports.CacheService,
	events ports.EventPublisher,
	snapshotTTLSeconds int,
) *AnalysisService {
	if sessions == nil {
		sessions = NewSessionRegistry()
	}
	if snapshotTTLSeconds <= 0 {
		snapshotTTLSeconds = 900
	}
	return &AnalysisService{
		search:      search,
		insight:     insight,
		sessions:    sessions,
		analyses:    analyses,
		cache:       cache,
		events:      events,
		snapshotTTL: snapshotTTLSeconds,
		now:         time.Now,
	}
}

// Sessions exposes the session registry.
func (s *AnalysisService) Sessions() *SessionRegistry { return s.sessions }

// Analyze runs the full pipeline for req. If the session moves on (a new
// region is drawn or the session is cleared) before the result is ready,
// the work is discarded and ErrStaleGeneration is returned.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*domain.Analysis, SearchReport, error) {
	log := logging.FromContext(ctx).With("session_id", req.SessionID)

	if err := req.Region.Validate(); err != nil {
		return nil, SearchReport{}, err
	}
	if req.Region.IsEmpty() {
		log.Info("zero-area region, density will be 0", "error", domain.ErrEmptyRegion)
	}

	runCtx, gen := s.sessions.Begin(ctx, req.SessionID)
	defer s.sessions.End(req.SessionID, gen)

	stale := func() bool { return !s.sessions.IsCurrent(req.SessionID, gen) }

	var snapshot *domain.BusinessSnapshot
	var report SearchReport
	if !req.SkipSearch {
		snap, rep, err := s.snapshot(runCtx, req.Region, req.SessionID)
		if err != nil {
			if stale() {
				return nil, rep, s.dropStale(log)
			}
			return nil, rep, err
		}
		snapshot, report = snap, rep
	}
	if stale() {
		return nil, report, s.dropStale(log)
	}

	narrative, err := s.insight.Generate(runCtx, req.Region, snapshot, req.Language)
	if stale() {
		return nil, report, s.dropStale(log)
	}
	if err != nil {
		return nil, report, err
	}

	analysis := &domain.Analysis{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Region:    req.Region,
		Center:    req.Region.Center(),
		Snapshot:  snapshot,
		Narrative: narrative,
		Sections:  FormatSections(narrative.Text),
		CreatedAt: s.now().UTC(),
	}

	// Persistence and events are best effort: the user already has a result.
	if s.analyses != nil {
		if err := s.analyses.Insert(ctx, analysis); err != nil {
			log.Error("failed to persist analysis", "id", analysis.ID, "error", err)
		}
	}
	if s.events != nil {
		if err := s.events.PublishAnalysisCompleted(ctx, analysis); err != nil {
			log.Warn("failed to publish analysis event", "id", analysis.ID, "error", err)
		}
	}

	log.Info("analysis completed",
		"id", analysis.ID,
		"language", narrative.Language,
		"sections", len(analysis.Sections),
		"searched", snapshot != nil,
	)
	return analysis, report, nil
}

// Snapshot builds (or loads from cache) the BusinessSnapshot for region. Like
// Analyze it supersedes the session's previous run, and a snapshot whose
// session moved on before it was ready is discarded with ErrStaleGeneration.
func (s *AnalysisService) Snapshot(ctx context.Context, sessionID string, region domain.Region) (*domain.BusinessSnapshot, SearchReport, error) {
	log := logging.FromContext(ctx).With("session_id", sessionID)

	if err := region.Validate(); err != nil {
		return nil, SearchReport{}, err
	}

	runCtx, gen := s.sessions.Begin(ctx, sessionID)
	defer s.sessions.End(sessionID, gen)

	snap, report, err := s.snapshot(runCtx, region, sessionID)
	if !s.sessions.IsCurrent(sessionID, gen) {
		return nil, report, s.dropStale(log)
	}
	if err != nil {
		return nil, report, err
	}
	return snap, report, nil
}

// Clear cancels the in-flight analysis of sessionID, if any.
func (s *AnalysisService) Clear(sessionID string) bool {
	return s.sessions.Clear(sessionID)
}

// History lists a user's stored analyses, newest first.
func (s *AnalysisService) History(ctx context.Context, userID string, offset, limit int) ([]domain.Analysis, int, error) {
	if s.analyses == nil {
		return nil, 0, nil
	}
	if userID == "" {
		return nil, 0, fmt.Errorf("user id must not be empty")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.analyses.ListByUser(ctx, userID, offset, limit)
}

// Get returns one stored analysis.
func (s *AnalysisService) Get(ctx context.Context, id string) (*domain.Analysis, error) {
	if s.analyses == nil {
		return nil, domain.ErrNotFound
	}
	return s.analyses.GetByID(ctx, id)
}

// Nearby lists stored analyses centered within radiusMeters of center.
// The radius is clamped to 50 km.
func (s *AnalysisService) Nearby(ctx context.Context, center domain.GeoPoint, radiusMeters float64, limit int) ([]domain.Analysis, error) {
	if s.analyses == nil {
		return nil, nil
	}
	if center.Lat < -90 || center.Lat > 90 || center.Lon < -180 || center.Lon > 180 {
		return nil, fmt.Errorf("%w: center out of range", domain.ErrInvalidRegion)
	}
	if radiusMeters <= 0 {
		radiusMeters = 1000
	}
	if radiusMeters > 50000 {
		radiusMeters = 50000
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.analyses.FindNearby(ctx, center, radiusMeters, limit)
}

func (s *AnalysisService) snapshot(ctx context.Context, region domain.Region, sessionID string) (*domain.BusinessSnapshot, SearchReport, error) {
	cacheKey := "snapshot:" + region.Key()
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var snap domain.BusinessSnapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				metrics.CacheHits.WithLabelValues("snapshot").Inc()
				return &snap, SearchReport{}, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("snapshot").Inc()
	}

	catalog, report, err := s.search.BuildCatalogWithProgress(ctx, region, sessionID, s.progressPublisher(ctx))
	if err != nil {
		return nil, report, err
	}
	snap := Aggregate(catalog, region)

	// A partial catalog is served but not cached.
	if s.cache != nil && len(report.Failures) == 0 {
		if data, err := json.Marshal(snap); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.snapshotTTL)
		}
	}
	return &snap, report, nil
}

func (s *AnalysisService) progressPublisher(ctx context.Context) ProgressFunc {
	if s.events == nil {
		return nil
	}
	return func(p domain.SearchProgress) {
		if p.SessionID == "" {
			return
		}
		if err := s.events.PublishProgress(ctx, &p); err != nil {
			logging.FromContext(ctx).Debug("progress publish failed", "error", err)
		}
	}
}

func (s *AnalysisService) dropStale(log *slog.Logger) error {
	metrics.StaleAnalyses.Inc()
	log.Info("discarding superseded analysis")
	return domain.ErrStaleGeneration
}

// IsStale reports whether err marks superseded work.
func IsStale(err error) bool {
	return errors.Is(err, domain.ErrStaleGeneration)
}
