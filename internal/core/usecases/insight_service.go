package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/ports"
	"github.com/samirrijal/areainsight/internal/pkg/logging"
	"github.com/samirrijal/areainsight/internal/pkg/metrics"
	"github.com/samirrijal/areainsight/internal/pkg/telemetry"
)

// Sampling parameters for the two report kinds.
var (
	BasicGenerateOptions   = ports.GenerateOptions{Temperature: 0.7, MaxTokens: 3000, TopK: 40, TopP: 0.95}
	PremiumGenerateOptions = ports.GenerateOptions{Temperature: 0.8, MaxTokens: 8192, TopK: 40, TopP: 0.95}
)

// InsightService turns a region and its snapshot into a narrative.
type InsightService struct {
	gen          ports.NarrativeGenerator
	model        string
	premiumModel string
	timeout      time.Duration
}

// NewInsightService creates a new InsightService. Empty model names leave the
// choice to the generator.
func NewInsightService(gen ports.NarrativeGenerator, model, premiumModel string, timeout time.Duration) *InsightService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &InsightService{gen: gen, model: model, premiumModel: premiumModel, timeout: timeout}
}

// Generate produces the basic sectioned narrative. snapshot may be nil.
func (s *InsightService) Generate(ctx context.Context, region domain.Region, snapshot *domain.BusinessSnapshot, lang string) (domain.NarrativeResult, error) {
	lang = ResolveLanguage(lang)
	opts := BasicGenerateOptions
	opts.Model = s.model

	text, err := s.generate(ctx, domain.ReportBasic, BuildPrompt(region, snapshot, lang), opts)
	if err != nil {
		return domain.NarrativeResult{}, err
	}
	return domain.NarrativeResult{Text: text, Language: lang, Kind: domain.ReportBasic}, nil
}

// GeneratePremium produces the long-form report for req.
func (s *InsightService) GeneratePremium(ctx context.Context, req domain.PremiumReportRequest) (domain.NarrativeResult, error) {
	lang := ResolveLanguage(req.Language)
	opts := PremiumGenerateOptions
	opts.Model = s.premiumModel
	if opts.Model == "" {
		opts.Model = s.model
	}

	prompt := BuildPremiumPrompt(req.Region, req.Snapshot, req.BasicSummary, lang)
	text, err := s.generate(ctx, domain.ReportPremium, prompt, opts)
	if err != nil {
		return domain.NarrativeResult{}, err
	}
	return domain.NarrativeResult{Text: text, Language: lang, Kind: domain.ReportPremium}, nil
}

func (s *InsightService) generate(ctx context.Context, kind domain.ReportKind, prompt string, opts ports.GenerateOptions) (string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "narrative.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("kind", string(kind)),
		attribute.Int("prompt_bytes", len(prompt)),
	)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.gen.Generate(ctx, prompt, opts)
	metrics.NarrativeLatency.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("empty response")
	}
	if err != nil {
		metrics.NarrativeRequests.WithLabelValues(string(kind), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		logging.FromContext(ctx).Error("narrative generation failed", "kind", kind, "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrNarrativeGeneration, err)
	}

	metrics.NarrativeRequests.WithLabelValues(string(kind), "ok").Inc()
	return text, nil
}
