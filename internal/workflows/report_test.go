package workflows_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/ports"
	"github.com/samirrijal/areainsight/internal/core/usecases"
	"github.com/samirrijal/areainsight/internal/workflows"
)

const premiumText = "📋 **EXECUTIVE SUMMARY**\n• Score 8/10\n🌍 **LOCATION OVERVIEW**\nRiverside.\n💰 **MARKET SIZE ESTIMATION**\n$300k"

type fakeGenerator struct {
	err error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return premiumText, nil
}

type fakeArchive struct {
	mu      sync.Mutex
	puts    map[string][]byte
	deleted []string
}

func (a *fakeArchive) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.puts == nil {
		a.puts = make(map[string][]byte)
	}
	a.puts[key] = body
	return "https://reports.example/" + key, nil
}

func (a *fakeArchive) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted = append(a.deleted, key)
	return nil
}

type fakeRepo struct {
	mu       sync.Mutex
	err      error
	inserted []domain.Analysis
}

func (r *fakeRepo) Insert(ctx context.Context, a *domain.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, *a)
	return nil
}
func (r *fakeRepo) GetByID(ctx context.Context, id string) (*domain.Analysis, error) {
	return nil, domain.ErrNotFound
}
func (r *fakeRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Analysis, int, error) {
	return nil, 0, nil
}
func (r *fakeRepo) FindNearby(ctx context.Context, center domain.GeoPoint, radius float64, limit int) ([]domain.Analysis, error) {
	return nil, nil
}
func (r *fakeRepo) Delete(ctx context.Context, id string) error { return nil }

func premiumInput() workflows.PremiumReportInput {
	return workflows.PremiumReportInput{
		ReportID: "rep-1",
		Request: domain.PremiumReportRequest{
			UserID:       "u1",
			Region:       domain.Region{North: 40.76, South: 40.75, East: -73.98, West: -73.99},
			Language:     "en",
			BasicSummary: "Busy corner.",
		},
	}
}

func newEnv(t *testing.T, acts *workflows.ReportActivities) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(workflows.PremiumReportWorkflow)
	env.RegisterActivity(acts)
	return env
}

func TestPremiumReportWorkflow_Success(t *testing.T) {
	archive := &fakeArchive{}
	repo := &fakeRepo{}
	env := newEnv(t, &workflows.ReportActivities{
		Insight:  usecases.NewInsightService(&fakeGenerator{}, "flash", "pro", 0),
		Archive:  archive,
		Analyses: repo,
	})

	env.ExecuteWorkflow(workflows.PremiumReportWorkflow, premiumInput())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result workflows.PremiumReportResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, "rep-1", result.ReportID)
	assert.Equal(t, "https://reports.example/premium/u1/rep-1.md", result.ArchiveURL)
	assert.Equal(t, 3, result.Sections)

	assert.Equal(t, premiumText, string(archive.puts["premium/u1/rep-1.md"]))
	require.Len(t, repo.inserted, 1)
	stored := repo.inserted[0]
	assert.Equal(t, "rep-1", stored.ID)
	assert.Equal(t, domain.ReportPremium, stored.Narrative.Kind)
	assert.Equal(t, "📋 **EXECUTIVE SUMMARY**", stored.Sections[0].Header)
	assert.Empty(t, archive.deleted)
}

func TestPremiumReportWorkflow_RecordFailureDeletesArchive(t *testing.T) {
	archive := &fakeArchive{}
	env := newEnv(t, &workflows.ReportActivities{
		Insight:  usecases.NewInsightService(&fakeGenerator{}, "flash", "", 0),
		Archive:  archive,
		Analyses: &fakeRepo{err: errors.New("db down")},
	})

	env.ExecuteWorkflow(workflows.PremiumReportWorkflow, premiumInput())

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, []string{"premium/u1/rep-1.md"}, archive.deleted)
}

func TestPremiumReportWorkflow_GenerationFailureStopsEarly(t *testing.T) {
	archive := &fakeArchive{}
	repo := &fakeRepo{}
	env := newEnv(t, &workflows.ReportActivities{
		Insight:  usecases.NewInsightService(&fakeGenerator{err: errors.New("quota")}, "flash", "", 0),
		Archive:  archive,
		Analyses: repo,
	})

	env.ExecuteWorkflow(workflows.PremiumReportWorkflow, premiumInput())

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Empty(t, archive.puts)
	assert.Empty(t, repo.inserted)
}

func TestPremiumReportWorkflow_NoArchive(t *testing.T) {
	repo := &fakeRepo{}
	env := newEnv(t, &workflows.ReportActivities{
		Insight:  usecases.NewInsightService(&fakeGenerator{}, "flash", "", 0),
		Analyses: repo,
	})

	env.ExecuteWorkflow(workflows.PremiumReportWorkflow, premiumInput())

	require.NoError(t, env.GetWorkflowError())
	var result workflows.PremiumReportResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Empty(t, result.ArchiveURL)
	assert.Len(t, repo.inserted, 1)
}

func TestStarter_StartPremiumReport(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return("premium-report-abc")
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, workflows.PremiumReportWorkflowName, mock.Anything).
		Return(run, nil)

	starter := workflows.NewStarter(c, "premium-reports")
	id, err := starter.StartPremiumReport(context.Background(), premiumInput().Request)
	require.NoError(t, err)
	assert.Equal(t, "premium-report-abc", id)

	call := c.Calls[0]
	input := call.Arguments.Get(3).(workflows.PremiumReportInput)
	assert.NotEmpty(t, input.ReportID)
	assert.Equal(t, "u1", input.Request.UserID)
	c.AssertExpectations(t)
}

func TestArchiveKey(t *testing.T) {
	assert.Equal(t, "premium/u1/r.md", workflows.ArchiveKey("u1", "r"))
	assert.Equal(t, "premium/anonymous/r.md", workflows.ArchiveKey("", "r"))
}
