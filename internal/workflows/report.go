package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// PremiumReportWorkflowName is the registered workflow type.
const PremiumReportWorkflowName = "PremiumReportWorkflow"

// PremiumReportInput is the input for the premium report workflow.
type PremiumReportInput struct {
	ReportID string
	Request  domain.PremiumReportRequest
}

// PremiumReportResult describes a finished report.
type PremiumReportResult struct {
	ReportID   string
	ArchiveURL string
	Sections   int
}

// RecordInput is the input of the RecordReport activity.
type RecordInput struct {
	ReportID   string
	Request    domain.PremiumReportRequest
	Narrative  domain.NarrativeResult
	ArchiveURL string
	CreatedAt  time.Time
}

// PremiumReportWorkflow generates a premium report, archives it and records
// it as an analysis. If recording fails, the archived object is deleted
// (saga compensation).
func PremiumReportWorkflow(ctx workflow.Context, input PremiumReportInput) (*PremiumReportResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting premium report workflow", "reportID", input.ReportID, "userID", input.Request.UserID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Long-form generation gets its own budget.
	genCtx := workflow.WithStartToCloseTimeout(ctx, 3*time.Minute)

	// Step 1: Generate the narrative
	var narrative domain.NarrativeResult
	if err := workflow.ExecuteActivity(genCtx, "GeneratePremiumReport", input.Request).Get(ctx, &narrative); err != nil {
		return nil, err
	}

	// Step 2: Archive it
	var archiveURL string
	if err := workflow.ExecuteActivity(ctx, "ArchiveReport", input.ReportID, input.Request.UserID, narrative.Text).Get(ctx, &archiveURL); err != nil {
		return nil, err
	}

	// Step 3: Record the analysis
	var sections int
	err := workflow.ExecuteActivity(ctx, "RecordReport", RecordInput{
		ReportID:   input.ReportID,
		Request:    input.Request,
		Narrative:  narrative,
		ArchiveURL: archiveURL,
		CreatedAt:  workflow.Now(ctx).UTC(),
	}).Get(ctx, &sections)
	if err != nil {
		logger.Warn("recording report failed, compensating", "error", err)
		if archiveURL != "" {
			_ = workflow.ExecuteActivity(ctx, "DeleteArchivedReport", input.ReportID, input.Request.UserID).Get(ctx, nil)
		}
		return nil, err
	}

	logger.Info("Premium report ready", "reportID", input.ReportID, "sections", sections)
	return &PremiumReportResult{ReportID: input.ReportID, ArchiveURL: archiveURL, Sections: sections}, nil
}
