package middleware

import (
	"github.com/arnold/blueprint-api/internal/autosave"
	"github.com/gofiber/fiber/v2"
)

const sessionLocal = "sessionId"

// Session rejects requests whose :id param is not a minted session id and
// stores the id in the request context.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing session ID",
			})
		}
		if !autosave.ValidSessionID(id) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid session ID",
			})
		}

		c.Locals(sessionLocal, id)
		return c.Next()
	}
}

// GetSessionID extracts the session id stored by Session.
func GetSessionID(c *fiber.Ctx) string {
	id, ok := c.Locals(sessionLocal).(string)
	if !ok {
		return ""
	}
	return id
}
