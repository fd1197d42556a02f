// Package gemini implements ports.NarrativeGenerator on the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/samirrijal/areainsight/internal/core/ports"
)

// DefaultModel is used when neither the generator nor the call names one.
const DefaultModel = "gemini-2.0-flash"

// ModelsAPI is the subset of *genai.Models the generator needs.
type ModelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator is a Gemini-backed NarrativeGenerator.
type Generator struct {
	models ModelsAPI
	model  string
}

// New creates a Generator authenticated with apiKey.
func New(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return NewWithModels(client.Models, model), nil
}

// NewWithModels creates a Generator on an existing models client.
func NewWithModels(models ModelsAPI, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{models: models, model: model}
}

// Generate sends prompt as a single user turn and returns the text of the
// first candidate.
func (g *Generator) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = g.model
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: int32(opts.MaxTokens),
	}
	if opts.TopK > 0 {
		cfg.TopK = genai.Ptr(opts.TopK)
	}
	if opts.TopP > 0 {
		cfg.TopP = genai.Ptr(opts.TopP)
	}

	resp, err := g.models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini %s: no candidates", model)
	}
	if c := resp.Candidates[0]; c.Content == nil {
		return "", fmt.Errorf("gemini %s: empty candidate (finish reason %s)", model, c.FinishReason)
	}
	return resp.Text(), nil
}
