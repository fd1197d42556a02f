//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	handler "github.com/samirrijal/areainsight/internal/adapters/http"
	"github.com/samirrijal/areainsight/internal/adapters/postgres"
	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/pkg/config"
)

// setupTestDB connects to the test database.
func setupTestDB(t *testing.T) *postgres.DB {
	if os.Getenv("AREAINSIGHT_PLACES_API_KEY") == "" {
		t.Setenv("AREAINSIGHT_PLACES_API_KEY", "integration")
	}
	cfg, err := config.Load("areainsight-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := db.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}
	return db
}

// seedAnalysis stores one analysis for userID.
func seedAnalysis(t *testing.T, repo *postgres.AnalysisRepo, userID string) string {
	region := domain.Region{North: 43.27, South: 43.25, East: -2.92, West: -2.95}
	a := &domain.Analysis{
		ID:        uuid.NewString(),
		UserID:    userID,
		Region:    region,
		Center:    region.Center(),
		Narrative: domain.NarrativeResult{Text: "🌍 **LOCATION OVERVIEW**\nOld town.", Language: "en", Kind: domain.ReportBasic},
		Sections:  []domain.Section{{Header: "🌍 **LOCATION OVERVIEW**", Body: []string{"Old town."}}},
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Insert(context.Background(), a); err != nil {
		t.Fatalf("seed analysis: %v", err)
	}
	return a.ID
}

// TestListAnalyses_Integration_WithRealDB lists stored analyses through the API.
func TestListAnalyses_Integration_WithRealDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	repo := postgres.NewAnalysisRepo(db)
	userID := "integ-" + uuid.NewString()
	first := seedAnalysis(t, repo, userID)
	second := seedAnalysis(t, repo, userID)
	defer func() {
		_ = repo.Delete(context.Background(), first)
		_ = repo.Delete(context.Background(), second)
	}()

	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Analyses = newAnalyses(twoTermPlaces(), &mockGenerator{}, repo)
		d.DB = db
	}))

	req := httptest.NewRequest("GET", "/v1/analyses?user_id="+userID, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Analysis  `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Pagination.Total != 2 {
		t.Errorf("expected 2 analyses, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 || result.Data[0].ID != second {
		t.Errorf("expected newest analysis first")
	}
}

// TestAnalyze_Integration_Persists runs an analysis and reads it back.
func TestAnalyze_Integration_Persists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	repo := postgres.NewAnalysisRepo(db)
	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Analyses = newAnalyses(twoTermPlaces(), &mockGenerator{}, repo)
	}))

	userID := "integ-" + uuid.NewString()
	resp := postJSON(t, app, "/v1/analyses", `{"user_id":"`+userID+`","region":`+regionJSON+`}`)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created handler.AnalysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	defer func() { _ = repo.Delete(context.Background(), created.Analysis.ID) }()

	stored, err := repo.GetByID(context.Background(), created.Analysis.ID)
	if err != nil {
		t.Fatalf("get stored analysis: %v", err)
	}
	if stored.Snapshot == nil || stored.Snapshot.Total != 3 {
		t.Errorf("expected stored snapshot with 3 places, got %+v", stored.Snapshot)
	}
	if len(stored.Sections) != 2 {
		t.Errorf("expected 2 stored sections, got %d", len(stored.Sections))
	}
}

// TestNearbyAnalyses_Integration_WithRealDB finds a seeded analysis by its center.
func TestNearbyAnalyses_Integration_WithRealDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	repo := postgres.NewAnalysisRepo(db)
	id := seedAnalysis(t, repo, "integ-"+uuid.NewString())
	defer func() { _ = repo.Delete(context.Background(), id) }()

	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Analyses = newAnalyses(twoTermPlaces(), &mockGenerator{}, repo)
	}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/analyses/nearby?lat=43.26&lon=-2.935&radius=500&limit=100", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data []domain.Analysis `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	found := false
	for _, a := range result.Data {
		if a.ID == id {
			found = true
		}
	}
	if !found {
		t.Errorf("expected seeded analysis %s in nearby results", id)
	}
}
