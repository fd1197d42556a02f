package workflows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// Starter starts premium report workflows on a Temporal task queue. It
// implements ports.ReportWorkflowStarter.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter creates a Starter.
func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// StartPremiumReport starts the workflow and returns its ID. The report ID
// doubles as the stored analysis ID.
func (s *Starter) StartPremiumReport(ctx context.Context, req domain.PremiumReportRequest) (string, error) {
	reportID := uuid.NewString()
	opts := client.StartWorkflowOptions{
		ID:        "premium-report-" + reportID,
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, PremiumReportWorkflowName, PremiumReportInput{
		ReportID: reportID,
		Request:  req,
	})
	if err != nil {
		return "", fmt.Errorf("execute workflow: %w", err)
	}
	return run.GetID(), nil
}
