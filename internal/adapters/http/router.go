package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/driverdash/internal/pkg/metrics"
)

// Version is reported by the health endpoint.
var Version = "dev"

// RouterOptions tunes cross-cutting middleware.
type RouterOptions struct {
	CORSOrigins  string
	RateLimit    int // requests per minute per IP; 0 disables
	RouteTimeout time.Duration
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, opts RouterOptions) {
	if opts.RouteTimeout <= 0 {
		opts.RouteTimeout = 15 * time.Second
	}

	app.Use(recover.New())

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// The dashboard is served from another origin.
	origins := strings.TrimSpace(opts.CORSOrigins)
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
	}))

	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health and readiness skip the timeout wrapper.
	app.Get("/v1/health", HealthHandler(Version))
	app.Get("/v1/ready", ReadyHandler(deps))

	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, opts.RouteTimeout)
	}

	v1 := app.Group("/v1")
	v1.Get("/trips", withTimeout(ListTripsHandler(deps)))
	v1.Get("/trips/summary", withTimeout(TripSummaryHandler(deps)))
	v1.Get("/trips/:id", withTimeout(GetTripHandler(deps)))
	v1.Get("/trips/:id/route", withTimeout(TripRouteHandler(deps)))
	v1.Get("/trips/:id/history", withTimeout(TripHistoryHandler(deps)))
	v1.Post("/trips/:id/plan", withTimeout(PlanTripHandler(deps)))
	v1.Post("/routes/reconcile", withTimeout(ReconcileHandler(deps)))
	v1.Get("/services", withTimeout(ListServicesHandler(deps)))
	v1.Post("/services/on-route", withTimeout(OnRouteServicesHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
