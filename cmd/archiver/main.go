package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/areainsight/internal/adapters/nats"
	"github.com/samirrijal/areainsight/internal/adapters/s3archive"
	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/ports"
	"github.com/samirrijal/areainsight/internal/pkg/config"
	"github.com/samirrijal/areainsight/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("areainsight-archiver")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if !cfg.Archive.Enabled() {
		log.Fatal("archive.bucket is not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	archive, err := s3archive.New(ctx, cfg.Archive.Bucket, cfg.Archive.Region, cfg.Archive.Prefix)
	if err != nil {
		log.Fatalf("s3 archive: %v", err)
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	a := &archiver{store: archive}
	if err := sub.SubscribeAnalysisCompleted(ctx, a.handle); err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	if err := sub.SubscribeProgress(ctx, a.progress); err != nil {
		log.Fatalf("subscribe progress: %v", err)
	}

	slog.Info("archiver started", "bucket", cfg.Archive.Bucket, "subject", natsadapter.SubjectCompletedAll)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("received signal, shutting down archiver", "signal", sig.String())
	cancel()
}

// archiver copies every completed analysis into the report archive as JSON.
type archiver struct {
	store ports.ReportArchive
}

func analysisKey(a *domain.Analysis) string {
	user := a.UserID
	if user == "" {
		user = "anonymous"
	}
	return fmt.Sprintf("analyses/%s/%s/%s.json", user, a.CreatedAt.UTC().Format("2006-01-02"), a.ID)
}

func (ar *archiver) handle(ctx context.Context, a *domain.Analysis) error {
	if a.ID == "" {
		slog.WarnContext(ctx, "skipping analysis without id")
		return nil
	}
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	loc, err := ar.store.Put(ctx, analysisKey(a), body, "application/json")
	if err != nil {
		slog.ErrorContext(ctx, "archive analysis failed", "analysis_id", a.ID, "error", err)
		return err
	}
	slog.InfoContext(ctx, "analysis archived", "analysis_id", a.ID, "kind", a.Narrative.Kind, "location", loc)
	return nil
}

func (ar *archiver) progress(ctx context.Context, p *domain.SearchProgress) error {
	if p.Failed {
		slog.WarnContext(ctx, "category search failed", "session_id", p.SessionID, "term", p.Term)
	} else {
		slog.DebugContext(ctx, "search progress", "session_id", p.SessionID, "term", p.Term, "index", p.Index, "total", p.Total)
	}
	return nil
}
