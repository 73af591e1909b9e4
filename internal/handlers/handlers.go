package handlers

import (
	"log"
	"time"

	"github.com/arnold/blueprint-api/internal/config"
	"github.com/arnold/blueprint-api/internal/metrics"
	"github.com/arnold/blueprint-api/internal/middleware"
	"github.com/arnold/blueprint-api/internal/services"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/arnold/blueprint-api/internal/webhook"
	"github.com/gofiber/fiber/v2"
)

// Package-level collaborators, set by Init.
var (
	Verifier *services.Verifier
	Relay    *webhook.Relay
	Sessions *SessionRegistry
	// CheckoutURL is the vendor checkout page sessions are handed to.
	CheckoutURL string
	// AppURL is the absolute origin the vendor redirects back to.
	AppURL string
	// DevPreview serves exports of the live, unpaid document.
	DevPreview bool
	// Now is the clock used for target years and tokens.
	Now = time.Now
)

// Init wires the handlers against cfg. store backs every session's
// namespaced local storage.
func Init(cfg *config.Config, store storage.Store) {
	vendor := services.NewLemonSqueezy(cfg)
	Verifier = &services.Verifier{
		Vendor:     vendor,
		Configured: vendor.Configured(),
		IssueToken: middleware.GenerateDownloadToken(cfg.DownloadTokenSecret),
		Now:        time.Now,
		Metrics:    metrics.Default,
	}

	Relay = &webhook.Relay{
		Secret:  cfg.LemonSqueezyWebhookSecret,
		Now:     time.Now,
		Metrics: metrics.Default,
	}
	if services.Mail.Configured() {
		Relay.Mailer = services.Mail
	} else {
		log.Println("webhook: email disabled, order events will only be logged")
	}

	CheckoutURL = cfg.LemonSqueezyCheckoutURL
	AppURL = cfg.AppURL
	DevPreview = cfg.DevPreview
	Sessions = NewSessionRegistry(store, SessionOptions{
		Origin:  cfg.AppURL,
		Delay:   cfg.AutosaveDelay,
		Metrics: metrics.Default,
	})
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// postOnly answers 405 for anything but POST. Routes using it are
// registered with app.All.
func postOnly(c *fiber.Ctx) bool {
	if c.Method() == fiber.MethodPost {
		return true
	}
	c.Set(fiber.HeaderAllow, fiber.MethodPost)
	_ = c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
		"error": "Method not allowed",
	})
	return false
}
