package usecases_test

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/ports"
)

var errNotFound = errors.New("not found")

// --- Mock PlacesProvider ---

type mockPlaces struct {
	searchFn  func(ctx context.Context, region domain.Region, term string, limit int) ([]domain.PlaceSummary, error)
	detailsFn func(ctx context.Context, id string) (*domain.PlaceRecord, error)

	mu           sync.Mutex
	searchCalls  []string
	detailsCalls []string
}

func (m *mockPlaces) SearchNearby(ctx context.Context, region domain.Region, term string, limit int) ([]domain.PlaceSummary, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, term)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, region, term, limit)
	}
	return nil, nil
}

func (m *mockPlaces) GetDetails(ctx context.Context, id string) (*domain.PlaceRecord, error) {
	m.mu.Lock()
	m.detailsCalls = append(m.detailsCalls, id)
	m.mu.Unlock()
	if m.detailsFn != nil {
		return m.detailsFn(ctx, id)
	}
	return &domain.PlaceRecord{ID: id, Name: id}, nil
}

func (m *mockPlaces) detailCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.detailsCalls)
}

// --- Mock NarrativeGenerator ---

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error)

	mu      sync.Mutex
	prompts []string
	opts    []ports.GenerateOptions
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt, opts)
	}
	return "🌍 **LOCATION OVERVIEW**\nDense downtown block.\n📊 **CONCLUSION & NEXT STEPS**\nOpen a bakery.", nil
}

// --- In-memory CacheService ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errNotFound
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttlSeconds
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Incr(ctx context.Context, key string, ttlSeconds int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(string(c.data[key]), 10, 64)
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	if n == 1 {
		c.ttls[key] = ttlSeconds
	}
	return n, nil
}

func (c *memCache) Decr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(string(c.data[key]), 10, 64)
	n--
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// --- Mock AnalysisRepository ---

type mockAnalysisRepo struct {
	insertFn     func(ctx context.Context, a *domain.Analysis) error
	listByUserFn func(ctx context.Context, userID string, offset, limit int) ([]domain.Analysis, int, error)
	nearbyFn     func(ctx context.Context, center domain.GeoPoint, radius float64, limit int) ([]domain.Analysis, error)

	inserted []*domain.Analysis
}

func (m *mockAnalysisRepo) Insert(ctx context.Context, a *domain.Analysis) error {
	m.inserted = append(m.inserted, a)
	if m.insertFn != nil {
		return m.insertFn(ctx, a)
	}
	return nil
}

func (m *mockAnalysisRepo) GetByID(ctx context.Context, id string) (*domain.Analysis, error) {
	return nil, errNotFound
}

func (m *mockAnalysisRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Analysis, int, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockAnalysisRepo) FindNearby(ctx context.Context, center domain.GeoPoint, radius float64, limit int) ([]domain.Analysis, error) {
	if m.nearbyFn != nil {
		return m.nearbyFn(ctx, center, radius, limit)
	}
	return nil, nil
}

func (m *mockAnalysisRepo) Delete(ctx context.Context, id string) error { return nil }

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	completed []*domain.Analysis
	progress  []domain.SearchProgress
}

func (m *mockPublisher) PublishAnalysisCompleted(ctx context.Context, a *domain.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, a)
	return nil
}

func (m *mockPublisher) PublishProgress(ctx context.Context, p *domain.SearchProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, *p)
	return nil
}

// --- Mock ReportWorkflowStarter ---

type mockStarter struct {
	startFn func(ctx context.Context, req domain.PremiumReportRequest) (string, error)
}

func (m *mockStarter) StartPremiumReport(ctx context.Context, req domain.PremiumReportRequest) (string, error) {
	if m.startFn != nil {
		return m.startFn(ctx, req)
	}
	return "premium-report-1", nil
}

// --- helpers ---

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func nycRegion() domain.Region {
	return domain.Region{North: 40.72, South: 40.70, East: -73.99, West: -74.01}
}
