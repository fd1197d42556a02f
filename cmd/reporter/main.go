package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	natsadapter "github.com/samirrijal/areainsight/internal/adapters/nats"
	"github.com/samirrijal/areainsight/internal/adapters/postgres"
	"github.com/samirrijal/areainsight/internal/adapters/s3archive"
	"github.com/samirrijal/areainsight/internal/bootstrap"
	"github.com/samirrijal/areainsight/internal/core/ports"
	"github.com/samirrijal/areainsight/internal/pkg/config"
	"github.com/samirrijal/areainsight/internal/pkg/logging"
	"github.com/samirrijal/areainsight/internal/pkg/telemetry"
	"github.com/samirrijal/areainsight/internal/workflows"
)

func main() {
	cfg, err := config.Load("areainsight-reporter")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	insight, err := bootstrap.InsightService(ctx, cfg.Narrative)
	if err != nil {
		log.Fatalf("narrative: %v", err)
	}

	acts := &workflows.ReportActivities{
		Insight:  insight,
		Analyses: postgres.NewAnalysisRepo(db),
	}

	if cfg.Archive.Enabled() {
		archive, err := s3archive.New(ctx, cfg.Archive.Bucket, cfg.Archive.Region, cfg.Archive.Prefix)
		if err != nil {
			log.Fatalf("s3 archive: %v", err)
		}
		acts.Archive = archive
	} else {
		slog.Warn("archive.bucket not set, premium reports will not be archived")
	}

	var events ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}
	acts.Events = events

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflowWithOptions(workflows.PremiumReportWorkflow, workflow.RegisterOptions{
		Name: workflows.PremiumReportWorkflowName,
	})
	w.RegisterActivity(acts)

	slog.Info("report worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
