// Package bootstrap builds the core services from configuration. It is
// shared by the API server, the report worker and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/areainsight/internal/adapters/gemini"
	"github.com/samirrijal/areainsight/internal/adapters/googleplaces"
	"github.com/samirrijal/areainsight/internal/adapters/overpass"
	"github.com/samirrijal/areainsight/internal/core/ports"
	"github.com/samirrijal/areainsight/internal/core/usecases"
	"github.com/samirrijal/areainsight/internal/pkg/config"
)

// PlacesProvider returns the configured places provider.
func PlacesProvider(cfg config.PlacesConfig) (ports.PlacesProvider, error) {
	switch cfg.Provider {
	case "google":
		return googleplaces.New(googleplaces.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout(),
		}), nil
	case "overpass":
		return overpass.New(cfg.OverpassEndpoint, cfg.Timeout()), nil
	default:
		return nil, fmt.Errorf("unknown places provider %q", cfg.Provider)
	}
}

// SearchOptions maps the places configuration onto search options.
func SearchOptions(cfg config.PlacesConfig) usecases.SearchOptions {
	return usecases.SearchOptions{
		Terms:             cfg.Terms,
		PerCategoryCap:    cfg.PerCategoryCap,
		Throttle:          cfg.Throttle(),
		CallTimeout:       cfg.Timeout(),
		DetailConcurrency: cfg.DetailConcurrency,
		Retries:           cfg.Retries,
	}
}

// InsightService connects the narrative provider.
func InsightService(ctx context.Context, cfg config.NarrativeConfig) (*usecases.InsightService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("narrative.api_key is not set")
	}
	gen, err := gemini.New(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return usecases.NewInsightService(gen, cfg.Model, cfg.PremiumModel, time.Duration(cfg.Timeout)*time.Second), nil
}
