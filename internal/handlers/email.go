package handlers

import (
	"github.com/arnold/blueprint-api/internal/config"
	"github.com/arnold/blueprint-api/internal/models"
	"github.com/arnold/blueprint-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

func SendEmail(c *fiber.Ctx) error {
	if !postOnly(c) {
		return nil
	}

	var req models.SendEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.To == "" || req.UserName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields: to, userName",
		})
	}
	if req.Year == 0 {
		req.Year = config.TargetYear(Now())
	}

	if !services.Mail.Configured() {
		service := ""
		if services.Mail != nil {
			service = services.Mail.Service()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Email service not configured",
			"service": service,
		})
	}

	if err := services.Mail.SendBlueprintReady(c.UserContext(), req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to send email",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Email sent successfully",
	})
}
