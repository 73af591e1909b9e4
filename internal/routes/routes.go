package routes

import (
	"github.com/arnold/blueprint-api/internal/handlers"
	"github.com/arnold/blueprint-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Limits for the endpoints that call out to vendors.
var vendorRateLimit = middleware.RateLimitConfig{RequestsPerMinute: 30, Burst: 10}

func Setup(app *fiber.App) {
	app.Get("/health", handlers.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Vendor-facing endpoints answer 405 themselves for other methods
	limited := middleware.RateLimit(vendorRateLimit)
	api.All("/verify-payment", limited, handlers.VerifyPayment)
	api.All("/send-email", limited, handlers.SendEmail)
	api.All("/lemon-webhook", handlers.LemonWebhook)

	// Checkout redirect targets
	app.Get("/success", handlers.Success)
	app.Get("/cancel", handlers.Cancel)

	sessions := api.Group("/sessions")
	sessions.Post("/", handlers.CreateSession)

	session := sessions.Group("/:id", middleware.Session())
	session.Get("/", handlers.GetSession)
	session.Delete("/", handlers.DeleteSession)
	session.Get("/document", handlers.GetSessionDocument)
	session.Post("/resume", handlers.ResumeSession)
	session.Post("/commands", handlers.SessionCommand)
	session.Post("/checkout", handlers.Checkout)
	session.Get("/export/:format", handlers.SessionExport)
	session.Get("/snapshot/export/:format", handlers.SnapshotExport)

	// WebSocket for autosave status
	app.Use("/ws/sessions/:id", middleware.Session(), handlers.WebSocketUpgrade())
	app.Get("/ws/sessions/:id", websocket.New(handlers.HandleWebSocket))
}
