package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/jobbmapper/jobbmapper-api/internal/pkg/metrics"
)

const requestTimeout = 10 * time.Second

// SetupRoutes registers the legacy, REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: errRateLimited,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics"
		},
	}))

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware("/v1/regions", "/v1/municipalities", "/v1/search"))
	app.Use(CachingMiddleware())

	// Legacy endpoints used by the map client. Only the query endpoint is
	// exposed cross-origin.
	if deps.CORSOrigins != "" {
		app.Use("/get-cities-in-view", cors.New(cors.Config{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: "POST,OPTIONS",
			AllowHeaders: "Origin, Content-Type, Accept",
			MaxAge:       3600,
		}))
	}
	app.Get("/", RootHandler())
	app.Post("/get-cities-in-view", timeout.NewWithContext(CitiesInViewHandler(deps), requestTimeout))

	// Health & readiness
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/search", timeout.NewWithContext(SearchHandler(deps), requestTimeout))
	v1.Get("/municipalities", timeout.NewWithContext(MunicipalitiesHandler(deps), requestTimeout))
	v1.Get("/regions", RegionsHandler())
	v1.Get("/regions/:code", RegionHandler())

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.DocsPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
