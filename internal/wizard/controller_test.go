package wizard

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/arnold/blueprint-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateAll(t *testing.T, c *Controller, rating int) {
	t.Helper()
	for _, cat := range models.AllCategories {
		require.NoError(t, c.SetRating(cat, rating))
	}
}

func TestNextFromRatingsRequiresEveryCategory(t *testing.T) {
	c := NewController(nil, nil)
	c.Start()
	rateAll(t, c, 5)

	require.NoError(t, c.Next())
	assert.Equal(t, models.StepCategories, c.Step())

	doc := models.NewDocument()
	for _, cat := range models.AllCategories {
		if cat != models.CategoryHealth {
			doc.Ratings[cat] = 5
		}
	}
	c = NewController(doc, nil)
	err := c.Next()
	require.Error(t, err)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, ConstraintAllRated, ve.Constraint)
	assert.Contains(t, ve.Message, "Health")
	assert.Equal(t, models.StepRatings, c.Step())
}

func TestZeroRatingFailsValidation(t *testing.T) {
	ratings := map[models.LifeCategory]int{}
	for _, cat := range models.AllCategories {
		ratings[cat] = 7
	}
	ratings[models.CategoryPassion] = 0

	err := ValidateRatings(ratings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Passion")
}

func TestSetRatingRejectsOutOfRange(t *testing.T) {
	c := NewController(nil, nil)
	err := c.SetRating(models.CategoryCareer, 11)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, ConstraintRange, ve.Constraint)
	assert.NotContains(t, c.Document().Ratings, models.CategoryCareer)
}

func TestSecondaryToggleScenario(t *testing.T) {
	c := NewController(nil, nil)
	require.NoError(t, c.SelectPrimary(models.CategoryHealth))
	for _, cat := range []models.LifeCategory{models.CategoryCareer, models.CategoryFinance} {
		changed, err := c.ToggleSecondary(cat)
		require.NoError(t, err)
		require.True(t, changed)
	}

	changed, err := c.ToggleSecondary(models.CategoryPassion)
	require.NoError(t, err)
	assert.False(t, changed, "third secondary must be a no-op")

	_, _ = c.ToggleSecondary(models.CategoryCareer)
	changed, _ = c.ToggleSecondary(models.CategoryPassion)
	assert.True(t, changed)

	doc := c.Document()
	assert.Equal(t, []models.LifeCategory{models.CategoryFinance, models.CategoryPassion}, doc.SecondaryCategories)

	compiled := doc.CompiledGoals()
	require.Len(t, compiled, 3)
	assert.Equal(t, models.CategoryHealth, compiled[0].Category)
	assert.Equal(t, models.CategoryFinance, compiled[1].Category)
	assert.Equal(t, models.CategoryPassion, compiled[2].Category)
}

func TestSelectionInvariantsUnderRandomToggles(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := NewController(nil, nil)

	for i := 0; i < 500; i++ {
		cat := models.AllCategories[rng.Intn(len(models.AllCategories))]
		if rng.Intn(5) == 0 {
			require.NoError(t, c.SelectPrimary(cat))
		} else {
			_, err := c.ToggleSecondary(cat)
			require.NoError(t, err)
		}

		doc := c.Document()
		assert.LessOrEqual(t, len(doc.SecondaryCategories), MaxSecondary)
		for _, s := range doc.SecondaryCategories {
			assert.NotEqual(t, doc.Primary(), s)
		}
		if doc.PrimaryCategory != nil {
			assert.Equal(t, doc.Primary(), doc.SelectedCategories[0])
		}
		assert.Len(t, doc.CompiledGoals(), len(doc.SelectedCategories))
	}
}

func TestSelectPrimaryRemovesItFromSecondaries(t *testing.T) {
	c := NewController(nil, nil)
	require.NoError(t, c.SelectPrimary(models.CategoryHealth))
	_, _ = c.ToggleSecondary(models.CategoryCareer)
	require.NoError(t, c.SelectPrimary(models.CategoryCareer))

	doc := c.Document()
	assert.Empty(t, doc.SecondaryCategories)
	assert.Equal(t, []models.LifeCategory{models.CategoryCareer}, doc.SelectedCategories)
}

func TestDeselectingPrunesPerCategoryEntries(t *testing.T) {
	c := NewController(nil, nil)
	require.NoError(t, c.SelectPrimary(models.CategoryHealth))
	_, _ = c.ToggleSecondary(models.CategoryFinance)
	require.NoError(t, c.SetGoal(models.CategoryFinance, "Save twenty percent"))

	_, _ = c.ToggleSecondary(models.CategoryFinance)
	assert.NotContains(t, c.Document().Goals, models.CategoryFinance)
	assert.ErrorIs(t, c.SetGoal(models.CategoryFinance, "anything"), ErrCategoryNotSelected)
}

func goalsController(t *testing.T) *Controller {
	t.Helper()
	c := NewController(nil, nil)
	c.Start()
	rateAll(t, c, 6)
	require.NoError(t, c.Next())
	require.NoError(t, c.SelectPrimary(models.CategoryHealth))
	_, _ = c.ToggleSecondary(models.CategoryCareer)
	require.NoError(t, c.Next())
	require.Equal(t, models.StepGoals, c.Step())
	return c
}

func TestPrimaryGoalLengthBoundaries(t *testing.T) {
	c := goalsController(t)

	require.NoError(t, c.SetGoal(models.CategoryHealth, strings.Repeat("a", 9)))
	err := c.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be at least 10 characters")

	require.NoError(t, c.SetGoal(models.CategoryHealth, strings.Repeat("a", 301)))
	err = c.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")

	require.NoError(t, c.SetGoal(models.CategoryHealth, strings.Repeat("a", 10)))
	require.NoError(t, c.Next())
	assert.Equal(t, models.StepGoals, c.Step())
	assert.Equal(t, 1, c.Cursor())
}

func TestGoalsCursorWalksSelectedCategories(t *testing.T) {
	c := goalsController(t)

	require.NoError(t, c.SetGoal(models.CategoryHealth, "Run a half marathon"))
	require.NoError(t, c.Next())
	cat, ok := c.ActiveCategory()
	require.True(t, ok)
	assert.Equal(t, models.CategoryCareer, cat)

	require.NoError(t, c.SetGoal(models.CategoryCareer, "Ship"))
	err := c.Next()
	require.Error(t, err, "secondary goals need five characters")

	require.NoError(t, c.SetGoal(models.CategoryCareer, "Ship it"))
	require.NoError(t, c.Next())
	assert.Equal(t, models.StepActions, c.Step())

	assert.True(t, c.Back())
	assert.Equal(t, models.StepGoals, c.Step())
	assert.Equal(t, 1, c.Cursor())
	assert.True(t, c.Back())
	assert.Equal(t, 0, c.Cursor())
	assert.True(t, c.Back())
	assert.Equal(t, models.StepCategories, c.Step())
}

func TestFullWalkToSummary(t *testing.T) {
	c := goalsController(t)
	require.NoError(t, c.SetGoal(models.CategoryHealth, "Run a half marathon"))
	require.NoError(t, c.Next())
	require.NoError(t, c.SetGoal(models.CategoryCareer, "Get promoted"))
	require.NoError(t, c.Next())

	err := c.Next()
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "actions.Health.small", ve.Field)

	require.NoError(t, c.SetActions(models.ActionStep{Small: "Buy shoes", Medium: "Run 10k", Big: "Race day"}))
	require.NoError(t, c.Next())
	require.NoError(t, c.SetHabit("Every Sunday I review my running log"))
	require.NoError(t, c.Next())
	require.NoError(t, c.SetMotivation(models.Motivation{
		Why:         "I want energy for my kids every day",
		Consequence: "I will keep feeling tired and sluggish",
	}))
	require.NoError(t, c.Next())
	assert.Equal(t, models.StepSummary, c.Step())
	assert.ErrorIs(t, c.Next(), ErrFinalStep)

	doc := c.Document()
	assert.Empty(t, doc.Actions[models.CategoryCareer])
	assert.Equal(t, "Buy shoes", doc.Actions[models.CategoryHealth].Small)
}

func TestBackFromFirstStepReturnsToLanding(t *testing.T) {
	c := NewController(nil, nil)
	c.Start()
	assert.False(t, c.Back())
	assert.False(t, c.Started())
	assert.Equal(t, models.StepRatings, c.Step())
}

func TestSkipIgnoresValidationButKeepsPrimaryInvariant(t *testing.T) {
	c := NewController(nil, nil)
	require.NoError(t, c.Skip(models.StepCategories))
	assert.Equal(t, models.StepCategories, c.Step())

	assert.ErrorIs(t, c.Skip(models.StepGoals), ErrPrimaryRequired)
	assert.ErrorIs(t, c.Skip(models.StepCount), ErrInvalidStep)

	require.NoError(t, c.SelectPrimary(models.CategorySpirituality))
	require.NoError(t, c.Skip(models.StepHabits))
	assert.Equal(t, models.StepHabits, c.Step())
	assert.Empty(t, c.Document().Habits)
}

func TestChangeFuncReceivesCopies(t *testing.T) {
	var seen []*models.WizardDocument
	c := NewController(nil, func(doc *models.WizardDocument) {
		seen = append(seen, doc)
	})
	require.NoError(t, c.SetRating(models.CategoryHealth, 3))
	require.NoError(t, c.SetRating(models.CategoryHealth, 4))

	require.Len(t, seen, 2)
	assert.Equal(t, 3, seen[0].Ratings[models.CategoryHealth])
	assert.Equal(t, 4, seen[1].Ratings[models.CategoryHealth])
}

func TestCompiledGoalsIsPure(t *testing.T) {
	c := goalsController(t)
	require.NoError(t, c.SetGoal(models.CategoryHealth, "Run a half marathon"))
	doc := c.Document()

	first := doc.CompiledGoals()
	second := doc.CompiledGoals()
	assert.Equal(t, first, second)
	assert.Equal(t, "Run a half marathon", first[0].MainGoal)
	assert.Equal(t, "", first[1].MainGoal)
}

func TestSetIdentityStoresSanitizedValues(t *testing.T) {
	var saved *models.WizardDocument
	c := NewController(nil, func(doc *models.WizardDocument) { saved = doc })

	c.SetIdentity("  <img src=x onerror=alert(1)>Dana ", "<b>dana@example.com</b>")

	doc := c.Document()
	assert.Equal(t, "img src=x alert(1)Dana", doc.UserName)
	assert.Equal(t, "bdana@example.com/b", doc.UserEmail)
	require.NotNil(t, saved)
	assert.Equal(t, doc.UserName, saved.UserName)
}
