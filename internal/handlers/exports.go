package handlers

import (
	"errors"
	"log"

	"github.com/arnold/blueprint-api/internal/checkout"
	"github.com/arnold/blueprint-api/internal/export"
	"github.com/arnold/blueprint-api/internal/metrics"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// SessionExport renders the live document. It is a development preview;
// paid delivery goes through SnapshotExport.
func SessionExport(c *fiber.Ctx) error {
	if !DevPreview {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Export preview is only available in development",
		})
	}

	f, err := export.ParseFormat(c.Params("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s, ok := session(c)
	if !ok {
		return nil
	}
	s.mu.Lock()
	doc := s.ctrl.Document()
	s.mu.Unlock()

	a, err := generate(f, export.FromDocument(doc, Now()))
	if err != nil {
		return exportError(c, err)
	}
	return sendArtifact(c, a)
}

// SnapshotExport renders the checkout snapshot. A delivered PDF consumes
// the snapshot; the text formats leave it in place.
func SnapshotExport(c *fiber.Ctx) error {
	f, err := export.ParseFormat(c.Params("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s, ok := session(c)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := checkout.Load(c.UserContext(), s.ctx.Store)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No payment data found. Please complete checkout first.",
		})
	}

	a, err := generate(f, export.FromSnapshot(snap, Now()))
	if err != nil {
		return exportError(c, err)
	}
	if f == export.FormatPDF {
		s.ctx.Store.RemoveItem(c.UserContext(), storage.PaymentDataKey)
	}
	return sendArtifact(c, a)
}

func generate(f export.Format, in export.Input) (*export.Artifact, error) {
	a, err := export.Generate(f, in)
	metrics.Default.RecordExport(string(f), err)
	return a, err
}

func exportError(c *fiber.Ctx, err error) error {
	if errors.Is(err, export.ErrMissingIdentity) || errors.Is(err, export.ErrNoGoals) || errors.Is(err, export.ErrNoPrimary) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	log.Printf("export: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to generate export",
	})
}

func sendArtifact(c *fiber.Ctx, a *export.Artifact) error {
	c.Attachment(a.FileName)
	c.Set(fiber.HeaderContentType, a.ContentType)
	return c.Send(a.Body)
}
