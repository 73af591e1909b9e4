package wizard

import (
	"github.com/arnold/blueprint-api/internal/models"
)

// MaxSecondary caps the number of supporting categories.
const MaxSecondary = 2

// ChangeFunc observes every document mutation. It receives a private copy.
type ChangeFunc func(doc *models.WizardDocument)

// Controller owns the current step of one wizard session and gates every
// transition. It is not safe for concurrent use.
type Controller struct {
	doc      *models.WizardDocument
	cursor   int
	onChange ChangeFunc
}

// NewController wraps doc; a nil doc starts an empty session.
func NewController(doc *models.WizardDocument, onChange ChangeFunc) *Controller {
	if doc == nil {
		doc = models.NewDocument()
	}
	doc.Normalize()
	c := &Controller{doc: doc, onChange: onChange}
	c.recomputeSelection()
	return c
}

// Document returns a copy of the current document.
func (c *Controller) Document() *models.WizardDocument {
	return c.doc.Clone()
}

func (c *Controller) Step() int { return c.doc.CurrentStep }

// Cursor is the index into SelectedCategories while on the goals step.
func (c *Controller) Cursor() int { return c.cursor }

func (c *Controller) Started() bool { return c.doc.HasStarted }

// ActiveCategory is the category the current step edits: the cursor
// category on the goals step, the primary category on steps 3 to 5.
func (c *Controller) ActiveCategory() (models.LifeCategory, bool) {
	switch c.doc.CurrentStep {
	case models.StepGoals:
		if c.cursor < len(c.doc.SelectedCategories) {
			return c.doc.SelectedCategories[c.cursor], true
		}
	case models.StepActions, models.StepHabits, models.StepMotivation:
		if p := c.doc.Primary(); p != "" {
			return p, true
		}
	}
	return "", false
}

// Start leaves the landing state.
func (c *Controller) Start() {
	if c.doc.HasStarted {
		return
	}
	c.doc.HasStarted = true
	c.changed()
}

// Reset discards the document and returns to the landing state.
func (c *Controller) Reset() {
	c.doc = models.NewDocument()
	c.cursor = 0
	c.changed()
}

func (c *Controller) SetRating(cat models.LifeCategory, rating int) error {
	if !cat.Valid() {
		return invalid(models.StepRatings, "ratings", ConstraintSelection, "Unknown category %q", cat)
	}
	if rating < MinRating || rating > MaxRating {
		return invalid(models.StepRatings, "ratings."+string(cat), ConstraintRange,
			"%s rating must be between %d and %d", cat, MinRating, MaxRating)
	}
	c.doc.Ratings[cat] = rating
	c.changed()
	return nil
}

// SelectPrimary makes cat the primary category, dropping it from the
// secondary list when present.
func (c *Controller) SelectPrimary(cat models.LifeCategory) error {
	if !cat.Valid() {
		return invalid(models.StepCategories, "primaryCategory", ConstraintSelection, "Unknown category %q", cat)
	}
	primary := cat
	c.doc.PrimaryCategory = &primary

	kept := c.doc.SecondaryCategories[:0]
	for _, s := range c.doc.SecondaryCategories {
		if s != cat {
			kept = append(kept, s)
		}
	}
	c.doc.SecondaryCategories = kept

	c.recomputeSelection()
	c.changed()
	return nil
}

// ToggleSecondary adds or removes cat from the supporting categories. It
// reports whether the selection changed: toggling the primary category, or
// adding a third supporting category, is a no-op.
func (c *Controller) ToggleSecondary(cat models.LifeCategory) (bool, error) {
	if !cat.Valid() {
		return false, invalid(models.StepCategories, "secondaryCategories", ConstraintSelection, "Unknown category %q", cat)
	}
	if cat == c.doc.Primary() {
		return false, nil
	}

	for i, s := range c.doc.SecondaryCategories {
		if s == cat {
			c.doc.SecondaryCategories = append(c.doc.SecondaryCategories[:i], c.doc.SecondaryCategories[i+1:]...)
			c.recomputeSelection()
			c.changed()
			return true, nil
		}
	}

	if len(c.doc.SecondaryCategories) >= MaxSecondary {
		return false, nil
	}
	c.doc.SecondaryCategories = append(c.doc.SecondaryCategories, cat)
	c.recomputeSelection()
	c.changed()
	return true, nil
}

// SetGoal stores goal text for a selected category. Length limits are
// enforced on Next, not while typing.
func (c *Controller) SetGoal(cat models.LifeCategory, text string) error {
	if !c.doc.IsSelected(cat) {
		return ErrCategoryNotSelected
	}
	c.doc.Goals[cat] = text
	c.changed()
	return nil
}

func (c *Controller) SetActions(actions models.ActionStep) error {
	p, err := c.primary()
	if err != nil {
		return err
	}
	c.doc.Actions[p] = actions
	c.changed()
	return nil
}

func (c *Controller) SetHabit(text string) error {
	p, err := c.primary()
	if err != nil {
		return err
	}
	c.doc.Habits[p] = text
	c.changed()
	return nil
}

func (c *Controller) SetMotivation(m models.Motivation) error {
	p, err := c.primary()
	if err != nil {
		return err
	}
	c.doc.Motivation[p] = m
	c.changed()
	return nil
}

// SetIdentity stores the sanitized identity fields; they are validated at
// checkout.
func (c *Controller) SetIdentity(name, email string) {
	c.doc.UserName = SanitizeInput(name)
	c.doc.UserEmail = SanitizeInput(email)
	c.changed()
}

// ValidateStep checks the active step without moving.
func (c *Controller) ValidateStep() error {
	d := c.doc
	switch d.CurrentStep {
	case models.StepRatings:
		return ValidateRatings(d.Ratings)
	case models.StepCategories:
		if d.PrimaryCategory == nil {
			return invalid(models.StepCategories, "primaryCategory", ConstraintRequired, "Please choose a primary focus area")
		}
		return nil
	case models.StepGoals:
		cat, ok := c.ActiveCategory()
		if !ok {
			return ErrPrimaryRequired
		}
		return ValidateGoal(cat, d.Goals[cat], cat == d.Primary())
	case models.StepActions:
		p, err := c.primary()
		if err != nil {
			return err
		}
		return ValidateActions(p, d.Actions[p])
	case models.StepHabits:
		p, err := c.primary()
		if err != nil {
			return err
		}
		return ValidateHabit(p, d.Habits[p])
	case models.StepMotivation:
		p, err := c.primary()
		if err != nil {
			return err
		}
		return ValidateMotivation(p, d.Motivation[p])
	case models.StepSummary:
		_, _, err := ValidateIdentity(d.UserName, d.UserEmail)
		return err
	}
	return ErrInvalidStep
}

// Next validates the active step and advances. On the goals step it first
// walks the category cursor through every selected category.
func (c *Controller) Next() error {
	if c.doc.CurrentStep == models.StepSummary {
		return ErrFinalStep
	}
	if err := c.ValidateStep(); err != nil {
		return err
	}
	if c.doc.CurrentStep == models.StepGoals && c.cursor < len(c.doc.SelectedCategories)-1 {
		c.cursor++
		return nil
	}
	c.doc.CurrentStep++
	c.cursor = 0
	c.changed()
	return nil
}

// Back moves one position backwards without validation. It reports false
// when step 0 was left for the landing state.
func (c *Controller) Back() bool {
	switch {
	case c.doc.CurrentStep == models.StepRatings:
		c.doc.HasStarted = false
		c.changed()
		return false
	case c.doc.CurrentStep == models.StepGoals && c.cursor > 0:
		c.cursor--
		return true
	}
	c.doc.CurrentStep--
	if c.doc.CurrentStep == models.StepGoals && len(c.doc.SelectedCategories) > 0 {
		c.cursor = len(c.doc.SelectedCategories) - 1
	} else {
		c.cursor = 0
	}
	c.changed()
	return true
}

// Skip jumps to target without validating, for a step that failed to
// render. Steps past category selection still require a primary category.
func (c *Controller) Skip(target int) error {
	if target < models.StepRatings || target >= models.StepCount {
		return ErrInvalidStep
	}
	if target > models.StepCategories && c.doc.PrimaryCategory == nil {
		return ErrPrimaryRequired
	}
	c.doc.CurrentStep = target
	c.cursor = 0
	c.changed()
	return nil
}

func (c *Controller) primary() (models.LifeCategory, error) {
	p := c.doc.Primary()
	if p == "" {
		return "", ErrPrimaryRequired
	}
	return p, nil
}

// recomputeSelection derives SelectedCategories and drops per-category
// entries for categories that are no longer selected.
func (c *Controller) recomputeSelection() {
	d := c.doc
	selected := make([]models.LifeCategory, 0, 1+len(d.SecondaryCategories))
	if p := d.Primary(); p != "" {
		selected = append(selected, p)
	}
	selected = append(selected, d.SecondaryCategories...)
	d.SelectedCategories = selected

	for cat := range d.Goals {
		if !d.IsSelected(cat) {
			delete(d.Goals, cat)
		}
	}
	for cat := range d.Actions {
		if !d.IsSelected(cat) {
			delete(d.Actions, cat)
		}
	}
	for cat := range d.Habits {
		if !d.IsSelected(cat) {
			delete(d.Habits, cat)
		}
	}
	for cat := range d.Motivation {
		if !d.IsSelected(cat) {
			delete(d.Motivation, cat)
		}
	}

	if c.cursor >= len(selected) {
		c.cursor = 0
	}
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange(c.doc.Clone())
	}
}
