package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/insight"
	"github.com/eliBenven/case-nexus/internal/metrics"
	"github.com/eliBenven/case-nexus/internal/middleware/ratelimit"
	"github.com/eliBenven/case-nexus/internal/middleware/security"
	"github.com/eliBenven/case-nexus/internal/tokens"
	"github.com/eliBenven/case-nexus/internal/tools"
	"github.com/eliBenven/case-nexus/internal/workflow"
	"github.com/eliBenven/case-nexus/pkg/logger"
)

// NewServer wires the control WebSocket and the read-only HTTP surface
// (spec §6) onto a fresh *fiber.App. Grounded on the teacher's
// cmd/api/main.go router wiring (recover -> logger -> cors -> routes).
func NewServer(
	store *corpus.Store,
	bus *eventbus.Bus,
	engine *workflow.Engine,
	registry *tools.Registry,
	insights *insight.Log,
	acct *tokens.Accountant,
	demoPath string,
	bodyLimit int,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{IsDevelopment: true}))

	rl := ratelimit.New(ratelimit.Config{MaxRequestsPerMinute: 120, Logger: logger.GetLogger()})
	app.Use(rl.Middleware())

	wsHandler := NewWebSocketHandler(store, bus, engine, registry, demoPath)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsHandler.HandleConnection))

	httpHandler := NewHTTPHandler(store, insights, acct)
	api := app.Group("/api")
	api.Get("/cases", httpHandler.ListCases)
	api.Get("/case/:cn", httpHandler.GetCase)
	api.Get("/evidence/:cn", httpHandler.GetEvidence)
	api.Get("/alerts", httpHandler.ListAlerts)
	api.Get("/connections", httpHandler.ListConnections)
	api.Get("/stats", httpHandler.Stats)
	api.Get("/analysis-log", httpHandler.AnalysisLog)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	app.Get("/metrics", metrics.MetricsHandler())

	logger.Info("api server wired", zap.Int("body_limit", bodyLimit))
	return app
}
