package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/arnold/blueprint-api/internal/middleware"
	"github.com/arnold/blueprint-api/internal/models"
	"github.com/arnold/blueprint-api/internal/wizard"
	"github.com/gofiber/fiber/v2"
)

// Command types accepted by SessionCommand.
const (
	CommandStart           = "start"
	CommandRate            = "rate"
	CommandSelectPrimary   = "selectPrimary"
	CommandToggleSecondary = "toggleSecondary"
	CommandSetGoal         = "setGoal"
	CommandSetActions      = "setActions"
	CommandSetHabit        = "setHabit"
	CommandSetMotivation   = "setMotivation"
	CommandSetIdentity     = "setIdentity"
	CommandNext            = "next"
	CommandBack            = "back"
	CommandSkip            = "skip"
)

var errUnknownCommand = errors.New("unknown command")

type sessionCommand struct {
	Type       string            `json:"type"`
	Category   string            `json:"category"`
	Rating     int               `json:"rating"`
	Text       string            `json:"text"`
	Actions    models.ActionStep `json:"actions"`
	Motivation models.Motivation `json:"motivation"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Step       int               `json:"step"`
}

type sessionView struct {
	SessionID      string                 `json:"sessionId"`
	ResumeLink     string                 `json:"resumeLink"`
	Step           int                    `json:"step"`
	StepName       string                 `json:"stepName"`
	Cursor         int                    `json:"cursor"`
	ActiveCategory models.LifeCategory    `json:"activeCategory,omitempty"`
	Document       *models.WizardDocument `json:"document"`
	CompiledGoals  []models.CategoryGoal  `json:"compiledGoals"`
	Hints          []string               `json:"hints,omitempty"`
	LastSaved      int64                  `json:"lastSaved"`
}

// view must be called with s.mu held.
func (s *wizardSession) view() sessionView {
	doc := s.ctrl.Document()
	v := sessionView{
		SessionID:     s.ctx.ID,
		ResumeLink:    s.ctx.ResumeLink(),
		Step:          doc.CurrentStep,
		StepName:      models.StepNames[doc.CurrentStep],
		Cursor:        s.ctrl.Cursor(),
		Document:      doc,
		CompiledGoals: doc.CompiledGoals(),
		LastSaved:     s.saver.LastSaved(),
	}
	if cat, ok := s.ctrl.ActiveCategory(); ok {
		v.ActiveCategory = cat
	}

	if doc.CurrentStep == models.StepMotivation {
		m := doc.Motivation[doc.Primary()]
		if wizard.OverSoftTarget(m.Why) {
			v.Hints = append(v.Hints, fmt.Sprintf("motivation.why is longer than the suggested %d characters", wizard.MotivationSoft))
		}
		if wizard.OverSoftTarget(m.Consequence) {
			v.Hints = append(v.Hints, fmt.Sprintf("motivation.consequence is longer than the suggested %d characters", wizard.MotivationSoft))
		}
	}
	return v
}

func (s *wizardSession) apply(cmd sessionCommand) error {
	cat := models.LifeCategory(cmd.Category)
	switch cmd.Type {
	case CommandStart:
		s.ctrl.Start()
	case CommandRate:
		return s.ctrl.SetRating(cat, cmd.Rating)
	case CommandSelectPrimary:
		return s.ctrl.SelectPrimary(cat)
	case CommandToggleSecondary:
		_, err := s.ctrl.ToggleSecondary(cat)
		return err
	case CommandSetGoal:
		return s.ctrl.SetGoal(cat, cmd.Text)
	case CommandSetActions:
		return s.ctrl.SetActions(cmd.Actions)
	case CommandSetHabit:
		return s.ctrl.SetHabit(cmd.Text)
	case CommandSetMotivation:
		return s.ctrl.SetMotivation(cmd.Motivation)
	case CommandSetIdentity:
		s.ctrl.SetIdentity(cmd.Name, cmd.Email)
	case CommandNext:
		return s.ctrl.Next()
	case CommandBack:
		s.ctrl.Back()
	case CommandSkip:
		return s.ctrl.Skip(cmd.Step)
	default:
		return errUnknownCommand
	}
	return nil
}

// wizardError answers a failed controller operation.
func wizardError(c *fiber.Ctx, err error) error {
	if ve, ok := wizard.AsValidation(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":      ve.Message,
			"field":      ve.Field,
			"constraint": ve.Constraint,
			"step":       ve.Step,
		})
	}
	if errors.Is(err, errUnknownCommand) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown command",
		})
	}
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// session opens the session named by the route, answering 500 on failure.
func session(c *fiber.Ctx) (*wizardSession, bool) {
	s, err := Sessions.Open(middleware.GetSessionID(c))
	if err != nil {
		log.Printf("sessions: open %s: %v", middleware.GetSessionID(c), err)
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to open session",
		})
		return nil, false
	}
	return s, true
}

func CreateSession(c *fiber.Ctx) error {
	s, err := Sessions.Create()
	if err != nil {
		log.Printf("sessions: create: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create session",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"sessionId":  s.ctx.ID,
		"resumeLink": s.ctx.ResumeLink(),
	})
}

func GetSession(c *fiber.Ctx) error {
	s, ok := session(c)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := fiber.Map{
		"sessionId":   s.ctx.ID,
		"resumeLink":  s.ctx.ResumeLink(),
		"started":     s.ctrl.Started(),
		"step":        s.ctrl.Step(),
		"hasSaved":    false,
		"savedAt":     int64(0),
		"needsResume": false,
	}
	if saved, found := s.ctx.Saved(c.UserContext()); found && saved.HasStarted {
		resp["hasSaved"] = true
		resp["savedAt"] = saved.SavedAt
		resp["needsResume"] = !s.ctrl.Started()
	}
	return c.JSON(resp)
}

// ResumeSession restores the autosaved document when confirm is true. A
// declined restore keeps the stored copy.
func ResumeSession(c *fiber.Ctx) error {
	var req struct {
		Confirm bool `json:"confirm"`
	}
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

	doc, restored := s.ctx.Resume(c.UserContext(), s.ctrl.Started(), func(*models.WizardDocument) bool {
		return req.Confirm
	})
	if restored {
		s.ctrl = wizard.NewController(doc, s.saver.Schedule)
	}

	return c.JSON(fiber.Map{
		"restored": restored,
		"session":  s.view(),
	})
}

func SessionCommand(c *fiber.Ctx) error {
	var cmd sessionCommand
	if err := c.BodyParser(&cmd); err != nil {
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

	if err := s.apply(cmd); err != nil {
		return wizardError(c, err)
	}
	return c.JSON(s.view())
}

func GetSessionDocument(c *fiber.Ctx) error {
	s, ok := session(c)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(s.view())
}

// DeleteSession resets the wizard: the live session is dropped and its
// autosave cleared.
func DeleteSession(c *fiber.Ctx) error {
	s, ok := session(c)
	if !ok {
		return nil
	}

	Sessions.Close(s.ctx.ID)
	s.ctx.Clear(c.UserContext())
	return c.SendStatus(fiber.StatusNoContent)
}
