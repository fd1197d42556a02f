package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/areainsight/internal/pkg/metrics"
)

// RouteConfig tunes per-route limits.
type RouteConfig struct {
	// AnalysisTimeout bounds one analysis request: the category sweep plus
	// narrative generation.
	AnalysisTimeout time.Duration
	// RequestsPerMinute is the per-IP rate limit.
	RequestsPerMinute int
	// AllowOrigins is the CORS origin list.
	AllowOrigins string
}

// DefaultRouteConfig returns the limits used when none are configured.
func DefaultRouteConfig() RouteConfig {
	return RouteConfig{
		AnalysisTimeout:   2 * time.Minute,
		RequestsPerMinute: 120,
		AllowOrigins:      "*",
	}
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	SetupRoutesWithConfig(app, deps, DefaultRouteConfig())
}

// SetupRoutesWithConfig registers all routes using rc.
func SetupRoutesWithConfig(app *fiber.App, deps *Dependencies, rc RouteConfig) {
	if rc.AnalysisTimeout <= 0 {
		rc.AnalysisTimeout = DefaultRouteConfig().AnalysisTimeout
	}
	if rc.RequestsPerMinute <= 0 {
		rc.RequestsPerMinute = DefaultRouteConfig().RequestsPerMinute
	}
	if rc.AllowOrigins == "" {
		rc.AllowOrigins = "*"
	}

	app.Use(recover.New())

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(cors.New(cors.Config{
		AllowOrigins: rc.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	app.Use(limiter.New(limiter.Config{
		Max:        rc.RequestsPerMinute,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(DeprecationMiddleware(legacyRoutes))
	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Post("/snapshots", timeout.NewWithContext(SnapshotHandler(deps), rc.AnalysisTimeout))
	v1.Post("/analyses", timeout.NewWithContext(AnalyzeHandler(deps), rc.AnalysisTimeout))
	v1.Post("/analyze", timeout.NewWithContext(AnalyzeHandler(deps), rc.AnalysisTimeout))
	v1.Get("/analyses", timeout.NewWithContext(ListAnalysesHandler(deps), 15*time.Second))
	v1.Get("/analyses/nearby", timeout.NewWithContext(NearbyAnalysesHandler(deps), 15*time.Second))
	v1.Get("/analyses/:id", timeout.NewWithContext(GetAnalysisHandler(deps), 15*time.Second))
	v1.Delete("/sessions/:id", ClearSessionHandler(deps))
	v1.Post("/reports/premium", timeout.NewWithContext(PremiumReportHandler(deps), 15*time.Second))
	v1.Post("/sections", FormatSectionsHandler())

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), rc.AnalysisTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
