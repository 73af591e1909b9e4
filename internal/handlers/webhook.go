package handlers

import (
	"github.com/arnold/blueprint-api/internal/webhook"
	"github.com/gofiber/fiber/v2"
)

// LemonWebhook authenticates vendor events over the raw body.
func LemonWebhook(c *fiber.Ctx) error {
	if !postOnly(c) {
		return nil
	}

	res := Relay.Handle(c.UserContext(), c.Body(), c.Get(webhook.SignatureHeader))
	return c.Status(res.Status).JSON(res.Body)
}
