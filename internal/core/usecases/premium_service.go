package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/ports"
)

// PremiumService starts long-form reports. Generation runs in a durable
// workflow, not in the request.
type PremiumService struct {
	starter ports.ReportWorkflowStarter
}

// NewPremiumService creates a new PremiumService.
func NewPremiumService(starter ports.ReportWorkflowStarter) *PremiumService {
	return &PremiumService{starter: starter}
}

// RequestReport validates req and starts its workflow, returning the
// workflow ID.
func (s *PremiumService) RequestReport(ctx context.Context, req domain.PremiumReportRequest) (string, error) {
	if err := req.Region.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.UserID) == "" {
		return "", fmt.Errorf("user id must not be empty")
	}
	req.Language = ResolveLanguage(req.Language)

	id, err := s.starter.StartPremiumReport(ctx, req)
	if err != nil {
		return "", fmt.Errorf("start premium report: %w", err)
	}
	return id, nil
}
