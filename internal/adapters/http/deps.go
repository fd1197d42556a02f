package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/areainsight/internal/adapters/postgres"
	"github.com/samirrijal/areainsight/internal/adapters/valkey"
	"github.com/samirrijal/areainsight/internal/core/ports"
	"github.com/samirrijal/areainsight/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Analyses *usecases.AnalysisService
	Premium  *usecases.PremiumService // nil when no workflow engine is configured
	Quota    ports.QuotaChecker       // nil disables the free-tier gate
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
