package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/areainsight/internal/adapters/http"
	natsadapter "github.com/samirrijal/areainsight/internal/adapters/nats"
	"github.com/samirrijal/areainsight/internal/adapters/postgres"
	"github.com/samirrijal/areainsight/internal/adapters/valkey"
	"github.com/samirrijal/areainsight/internal/bootstrap"
	"github.com/samirrijal/areainsight/internal/core/ports"
	"github.com/samirrijal/areainsight/internal/core/usecases"
	"github.com/samirrijal/areainsight/internal/pkg/config"
	"github.com/samirrijal/areainsight/internal/pkg/logging"
	"github.com/samirrijal/areainsight/internal/pkg/telemetry"
	"github.com/samirrijal/areainsight/internal/workflows"
)

func main() {
	cfg, err := config.Load("areainsight-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache (optional: snapshots are rebuilt on every request without it)
	var cachePort ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cachePort = cache
	}

	// NATS (optional: progress and completion events are dropped without it)
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Drain()
	}

	// Places + narrative providers
	places, err := bootstrap.PlacesProvider(cfg.Places)
	if err != nil {
		log.Fatalf("places: %v", err)
	}
	insight, err := bootstrap.InsightService(ctx, cfg.Narrative)
	if err != nil {
		log.Fatalf("narrative: %v", err)
	}

	// Use cases
	search := usecases.NewSearchService(places, bootstrap.SearchOptions(cfg.Places))
	analyses := usecases.NewAnalysisService(
		search,
		insight,
		usecases.NewSessionRegistry(),
		postgres.NewAnalysisRepo(db),
		cachePort,
		events,
		cfg.Valkey.SnapshotTTL,
	)

	deps := &http.Dependencies{
		Analyses: analyses,
		NATS:     natsConn,
		DB:       db,
		Cache:    cache,
	}
	if cachePort != nil {
		deps.Quota = usecases.NewFreeTierQuota(cache, cfg.Quota.FreeDailyLimit, cfg.Quota.Location())
	}

	// Temporal (optional: premium reports are disabled without it)
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			slog.Warn("temporal unavailable, premium reports disabled", "error", err)
		} else {
			defer tc.Close()
			deps.Premium = usecases.NewPremiumService(workflows.NewStarter(tc, cfg.Temporal.TaskQueue))
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Area Insight API",
	})

	http.SetupRoutesWithConfig(app, deps, http.RouteConfig{
		AnalysisTimeout:   time.Duration(cfg.Server.AnalysisTimeout) * time.Second,
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
		AllowOrigins:      cfg.Server.AllowOrigins,
	})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "places_provider", cfg.Places.Provider)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
