package handlers

import (
	"encoding/json"

	"github.com/arnold/blueprint-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// VerifyPayment checks an order (or legacy checkout) with the vendor.
func VerifyPayment(c *fiber.Ctx) error {
	if !postOnly(c) {
		return nil
	}

	var req models.VerifyPaymentRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	res := Verifier.Verify(c.UserContext(), req)
	return c.Status(res.HTTPStatus).JSON(res.Body())
}
