package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/samirrijal/areainsight/internal/core/category"
	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/ports"
	"github.com/samirrijal/areainsight/internal/pkg/logging"
	"github.com/samirrijal/areainsight/internal/pkg/metrics"
	"github.com/samirrijal/areainsight/internal/pkg/telemetry"
)

// SearchOptions tune a catalog build.
type SearchOptions struct {
	Terms             []string
	PerCategoryCap    int
	Throttle          time.Duration
	CallTimeout       time.Duration
	DetailConcurrency int
	Retries           int
}

// DefaultSearchOptions mirrors the prototype's behaviour.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Terms:             category.DefaultTerms,
		PerCategoryCap:    20,
		Throttle:          100 * time.Millisecond,
		CallTimeout:       10 * time.Second,
		DetailConcurrency: 4,
	}
}

// CategoryFailure records one skipped category query.
type CategoryFailure struct {
	Term  string `json:"term"`
	Error string `json:"error"`
}

// SearchReport summarizes a catalog build.
type SearchReport struct {
	Terms    int               `json:"terms"`
	Found    int               `json:"found"`
	Failures []CategoryFailure `json:"failures,omitempty"`
}

// ProgressFunc is called once per finished category query.
type ProgressFunc func(p domain.SearchProgress)

// SearchService builds a PlaceCatalog for a Region from a PlacesProvider.
type SearchService struct {
	places  ports.PlacesProvider
	opts    SearchOptions
	limiter *rate.Limiter
}

// NewSearchService creates a new SearchService. Zero-valued options fall
// back to DefaultSearchOptions.
func NewSearchService(places ports.PlacesProvider, opts SearchOptions) *SearchService {
	def := DefaultSearchOptions()
	if len(opts.Terms) == 0 {
		opts.Terms = def.Terms
	}
	if opts.PerCategoryCap <= 0 {
		opts.PerCategoryCap = def.PerCategoryCap
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = def.CallTimeout
	}
	if opts.DetailConcurrency <= 0 {
		opts.DetailConcurrency = def.DetailConcurrency
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	limit := rate.Inf
	if opts.Throttle > 0 {
		limit = rate.Every(opts.Throttle)
	}

	return &SearchService{
		places:  places,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Options returns the effective options.
func (s *SearchService) Options() SearchOptions { return s.opts }

// BuildCatalog queries every configured term for region and collects the
// distinct places found. A failing category is recorded in the report and
// skipped; only cancellation of ctx aborts the build.
func (s *SearchService) BuildCatalog(ctx context.Context, region domain.Region) (*domain.PlaceCatalog, SearchReport, error) {
	return s.BuildCatalogWithProgress(ctx, region, "", nil)
}

// BuildCatalogWithProgress is BuildCatalog with a per-category callback.
func (s *SearchService) BuildCatalogWithProgress(ctx context.Context, region domain.Region, sessionID string, progress ProgressFunc) (*domain.PlaceCatalog, SearchReport, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "search.BuildCatalog")
	defer span.End()
	span.SetAttributes(
		attribute.String("region", region.Key()),
		attribute.Int("terms", len(s.opts.Terms)),
	)

	start := time.Now()
	log := logging.FromContext(ctx)
	catalog := domain.NewPlaceCatalog()
	report := SearchReport{Terms: len(s.opts.Terms)}

	for i, term := range s.opts.Terms {
		if err := s.limiter.Wait(ctx); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return nil, report, ctxErr(ctx, err)
		}

		found, err := s.searchCategory(ctx, region, term, catalog)
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "cancelled")
			return nil, report, ctx.Err()
		}
		if err != nil {
			log.Warn("category search failed, skipping", "term", term, "error", err)
			metrics.CategoryFailures.WithLabelValues(term).Inc()
			report.Failures = append(report.Failures, CategoryFailure{Term: term, Error: err.Error()})
		}

		if progress != nil {
			progress(domain.SearchProgress{
				SessionID:  sessionID,
				Term:       term,
				Index:      i + 1,
				Total:      len(s.opts.Terms),
				Found:      found,
				CatalogLen: catalog.Len(),
				Failed:     err != nil,
			})
		}
	}

	report.Found = catalog.Len()
	metrics.CatalogSize.Observe(float64(report.Found))
	metrics.BuildDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("found", report.Found),
		attribute.Int("failures", len(report.Failures)),
	)

	log.Info("catalog built",
		"region", region.Key(),
		"places", report.Found,
		"failed_terms", len(report.Failures),
		"duration", time.Since(start),
	)
	return catalog, report, nil
}

// searchCategory runs one term and inserts its new places. It returns the
// number of places newly added.
func (s *SearchService) searchCategory(ctx context.Context, region domain.Region, term string, catalog *domain.PlaceCatalog) (int, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "search.category")
	defer span.End()
	span.SetAttributes(attribute.String("term", term))

	summaries, err := s.searchWithRetry(ctx, region, term)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return 0, err
	}
	if len(summaries) > s.opts.PerCategoryCap {
		summaries = summaries[:s.opts.PerCategoryCap]
	}

	// Only fetch details for places not seen under an earlier term.
	pending := make([]domain.PlaceSummary, 0, len(summaries))
	queued := make(map[string]bool, len(summaries))
	for _, sum := range summaries {
		if sum.ID == "" || queued[sum.ID] || catalog.Has(sum.ID) {
			continue
		}
		queued[sum.ID] = true
		pending = append(pending, sum)
	}

	records := make([]*domain.PlaceRecord, len(pending))
	var g errgroup.Group
	g.SetLimit(s.opts.DetailConcurrency)
	for i, sum := range pending {
		g.Go(func() error {
			rec, err := s.details(ctx, sum)
			if err != nil {
				logging.FromContext(ctx).Debug("place details failed, skipping", "id", sum.ID, "error", err)
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	added := 0
	for _, rec := range records {
		if rec == nil {
			continue
		}
		rec.Category = category.Classify(rec.Types)
		if catalog.Insert(*rec) {
			added++
		}
	}
	span.SetAttributes(attribute.Int("added", added))
	return added, nil
}

func (s *SearchService) searchWithRetry(ctx context.Context, region domain.Region, term string) ([]domain.PlaceSummary, error) {
	var lastErr error
	for attempt := 0; attempt <= s.opts.Retries; attempt++ {
		if attempt > 0 {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, ctxErr(ctx, err)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
		start := time.Now()
		summaries, err := s.places.SearchNearby(callCtx, region, term, s.opts.PerCategoryCap)
		metrics.ObserveProvider("search", start, err)
		cancel()
		if err == nil {
			return summaries, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("search %q: %w", term, wrapProvider(lastErr))
}

func (s *SearchService) details(ctx context.Context, sum domain.PlaceSummary) (*domain.PlaceRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()

	start := time.Now()
	rec, err := s.places.GetDetails(callCtx, sum.ID)
	metrics.ObserveProvider("details", start, err)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("details %s: empty record: %w", sum.ID, domain.ErrProviderUnavailable)
	}
	if rec.ID == "" {
		rec.ID = sum.ID
	}
	if rec.Name == "" {
		rec.Name = sum.Name
	}
	if len(rec.Types) == 0 {
		rec.Types = sum.Types
	}
	return rec, nil
}

// wrapProvider tags an error as a provider failure unless it already is one.
func wrapProvider(err error) error {
	if errors.Is(err, domain.ErrProviderUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
}

// ctxErr prefers the context's own error over the limiter's wrapping of it.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
