package handlers

import (
	"errors"
	"log"

	"github.com/arnold/blueprint-api/internal/autosave"
	"github.com/arnold/blueprint-api/internal/checkout"
	"github.com/arnold/blueprint-api/internal/models"
	"github.com/arnold/blueprint-api/internal/services"
	"github.com/arnold/blueprint-api/internal/wizard"
	"github.com/gofiber/fiber/v2"
)

// Checkout hands a finished session to the vendor checkout page.
func Checkout(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	s, ok := session(c)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl.Step() != models.StepSummary {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Checkout is only available from the summary step",
		})
	}

	s.ctrl.SetIdentity(req.UserName, req.UserEmail)
	h := &checkout.Handoff{
		Store:       s.ctx.Store,
		CheckoutURL: CheckoutURL,
		Origin:      AppURL,
		SessionID:   s.ctx.ID,
	}
	res, err := h.Begin(c.UserContext(), s.ctrl.Document(), req.UserName, req.UserEmail)
	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrPersistFailed):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save your data. Please try again.",
		})
	default:
		if _, ok := wizard.AsValidation(err); ok {
			return wizardError(c, err)
		}
		log.Printf("checkout: session %s: %v", s.ctx.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Checkout is not available right now",
		})
	}

	if !s.saver.Flush(c.UserContext()) {
		log.Printf("checkout: autosave flush for %s failed", s.ctx.ID)
	}
	return c.JSON(models.CheckoutResponse{RedirectURL: res.RedirectURL})
}

// Success is where the vendor sends the buyer after paying. The order is
// verified before the snapshot downloads are offered.
func Success(c *fiber.Ctx) error {
	id := c.Query(autosave.SessionParam)
	if !autosave.ValidSessionID(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	orderID := c.Query("order_id")
	if orderID == checkout.OrderIDPlaceholder {
		orderID = ""
	}

	res := Verifier.Verify(c.UserContext(), models.VerifyPaymentRequest{OrderID: orderID})
	body := res.Body()
	if res.Outcome != services.OutcomePaid {
		return c.Status(res.HTTPStatus).JSON(body)
	}

	base := "/api/sessions/" + id + "/snapshot/export/"
	body["sessionId"] = id
	body["downloads"] = fiber.Map{
		"pdf":      base + "pdf",
		"csv":      base + "csv",
		"markdown": base + "markdown",
	}
	return c.JSON(body)
}

// Cancel is where the vendor sends the buyer after abandoning checkout.
func Cancel(c *fiber.Ctx) error {
	id := c.Query(autosave.SessionParam)
	if !autosave.ValidSessionID(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	s, err := Sessions.Open(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to open session",
		})
	}

	return c.JSON(fiber.Map{
		"sessionId":  id,
		"resumeLink": s.ctx.ResumeLink(),
		"message":    "Checkout cancelled. Your progress has been saved.",
	})
}
