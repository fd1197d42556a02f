package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/ports"
	"github.com/samirrijal/areainsight/internal/core/usecases"
)

// ReportActivities holds the activity implementations for the premium
// report workflow. Archive and Events may be nil.
type ReportActivities struct {
	Insight  *usecases.InsightService
	Archive  ports.ReportArchive
	Analyses ports.AnalysisRepository
	Events   ports.EventPublisher
}

// ArchiveKey is the object key of a stored report.
func ArchiveKey(userID, reportID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("premium/%s/%s.md", userID, reportID)
}

// GeneratePremiumReport asks the narrative provider for the long-form report.
func (a *ReportActivities) GeneratePremiumReport(ctx context.Context, req domain.PremiumReportRequest) (domain.NarrativeResult, error) {
	return a.Insight.GeneratePremium(ctx, req)
}

// ArchiveReport stores the report text and returns its location. Without an
// archive it returns an empty location.
func (a *ReportActivities) ArchiveReport(ctx context.Context, reportID, userID, text string) (string, error) {
	if a.Archive == nil {
		return "", nil
	}
	url, err := a.Archive.Put(ctx, ArchiveKey(userID, reportID), []byte(text), "text/markdown; charset=utf-8")
	if err != nil {
		return "", fmt.Errorf("archive report %s: %w", reportID, err)
	}
	return url, nil
}

// RecordReport stores the report as an analysis and returns its section count.
func (a *ReportActivities) RecordReport(ctx context.Context, in RecordInput) (int, error) {
	analysis := &domain.Analysis{
		ID:        in.ReportID,
		UserID:    in.Request.UserID,
		Region:    in.Request.Region,
		Center:    in.Request.Region.Center(),
		Snapshot:  in.Request.Snapshot,
		Narrative: in.Narrative,
		Sections:  usecases.FormatSectionsWith(in.Narrative.Text, usecases.PremiumMarkers),
		CreatedAt: in.CreatedAt,
	}
	if err := a.Analyses.Insert(ctx, analysis); err != nil {
		return 0, fmt.Errorf("record report %s: %w", in.ReportID, err)
	}

	if a.Events != nil {
		if err := a.Events.PublishAnalysisCompleted(ctx, analysis); err != nil {
			slog.Warn("publish premium report failed", "report_id", in.ReportID, "error", err)
		}
	}
	return len(analysis.Sections), nil
}

// DeleteArchivedReport removes an archived report (saga compensation).
func (a *ReportActivities) DeleteArchivedReport(ctx context.Context, reportID, userID string) error {
	if a.Archive == nil {
		return nil
	}
	if err := a.Archive.Delete(ctx, ArchiveKey(userID, reportID)); err != nil {
		return fmt.Errorf("delete archived report %s: %w", reportID, err)
	}
	slog.Info("archived report deleted (saga compensation)", "report_id", reportID)
	return nil
}
