package wizard

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/arnold/blueprint-api/internal/models"
)

// Text limits, counted in characters.
const (
	PrimaryGoalMin   = 10
	PrimaryGoalMax   = 300
	SecondaryGoalMin = 5
	SecondaryGoalMax = 200
	ActionMax        = 150
	HabitMin         = 20
	HabitMax         = 200
	MotivationMin    = 20
	MotivationSoft   = 200
	MotivationMax    = 600
	NameMax          = 100
	EmailMax         = 255

	MinRating = 1
	MaxRating = 10
)

var (
	angleBrackets = regexp.MustCompile(`[<>]`)
	jsProtocol    = regexp.MustCompile(`(?i)javascript:`)
	eventHandler  = regexp.MustCompile(`(?i)on\w+=`)
	namePattern   = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	emailPattern  = regexp.MustCompile(`^[A-Za-z0-9_'+\-.%]+@[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)*\.[A-Za-z]{2,}$`)
)

// SanitizeInput strips angle brackets, javascript: prefixes and inline event
// handler attributes, then trims surrounding whitespace.
func SanitizeInput(input string) string {
	out := angleBrackets.ReplaceAllString(input, "")
	out = jsProtocol.ReplaceAllString(out, "")
	out = eventHandler.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateName sanitizes and validates a display name.
func ValidateName(name string) (string, error) {
	sanitized := SanitizeInput(name)
	switch {
	case sanitized == "":
		return "", invalid(models.StepSummary, "userName", ConstraintRequired, "Name is required")
	case length(sanitized) > NameMax:
		return "", invalid(models.StepSummary, "userName", ConstraintMaxLength, "Name is too long")
	case !namePattern.MatchString(sanitized):
		return "", invalid(models.StepSummary, "userName", ConstraintPattern, "Name contains invalid characters")
	}
	return sanitized, nil
}

// ValidateEmail sanitizes and validates an email address.
func ValidateEmail(email string) (string, error) {
	sanitized := SanitizeInput(email)
	switch {
	case sanitized == "":
		return "", invalid(models.StepSummary, "userEmail", ConstraintRequired, "Email is required")
	case length(sanitized) > EmailMax:
		return "", invalid(models.StepSummary, "userEmail", ConstraintMaxLength, "Email is too long")
	case !emailPattern.MatchString(sanitized) || strings.Contains(sanitized, "..") || strings.HasPrefix(sanitized, "."):
		return "", invalid(models.StepSummary, "userEmail", ConstraintEmail, "Please enter a valid email address")
	}
	return sanitized, nil
}

// ValidateIdentity validates both identity fields and returns the sanitized pair.
func ValidateIdentity(name, email string) (string, string, error) {
	n, err := ValidateName(name)
	if err != nil {
		return "", "", err
	}
	e, err := ValidateEmail(email)
	if err != nil {
		return "", "", err
	}
	return n, e, nil
}

// ValidateRatings requires every category to carry a rating in 1..10.
func ValidateRatings(ratings map[models.LifeCategory]int) error {
	for _, c := range models.AllCategories {
		r, ok := ratings[c]
		if !ok || r == 0 {
			return invalid(models.StepRatings, "ratings."+string(c), ConstraintAllRated,
				"All categories must be rated: %s is not rated", c)
		}
		if r < MinRating || r > MaxRating {
			return invalid(models.StepRatings, "ratings."+string(c), ConstraintRange,
				"%s rating must be between %d and %d", c, MinRating, MaxRating)
		}
	}
	return nil
}

// ValidateGoal applies the primary or secondary goal limits.
func ValidateGoal(c models.LifeCategory, text string, primary bool) error {
	min, max := SecondaryGoalMin, SecondaryGoalMax
	if primary {
		min, max = PrimaryGoalMin, PrimaryGoalMax
	}
	field := "goals." + string(c)
	n := length(text)
	if n < min {
		return invalid(models.StepGoals, field, ConstraintMinLength, "Goal must be at least %d characters", min)
	}
	if n > max {
		return invalid(models.StepGoals, field, ConstraintMaxLength, "Goal is too long (max %d characters)", max)
	}
	return nil
}

func ValidateActions(c models.LifeCategory, a models.ActionStep) error {
	tiers := []struct {
		name, label, value string
	}{
		{"small", "Small", a.Small},
		{"medium", "Medium", a.Medium},
		{"big", "Big", a.Big},
	}
	for _, tier := range tiers {
		field := fmt.Sprintf("actions.%s.%s", c, tier.name)
		if strings.TrimSpace(tier.value) == "" {
			return invalid(models.StepActions, field, ConstraintRequired, "%s action is required", tier.label)
		}
		if length(tier.value) > ActionMax {
			return invalid(models.StepActions, field, ConstraintMaxLength, "%s action is too long (max %d characters)", tier.label, ActionMax)
		}
	}
	return nil
}

func ValidateHabit(c models.LifeCategory, text string) error {
	field := "habits." + string(c)
	n := length(text)
	if n < HabitMin {
		return invalid(models.StepHabits, field, ConstraintMinLength, "Check-in must be at least %d characters", HabitMin)
	}
	if n > HabitMax {
		return invalid(models.StepHabits, field, ConstraintMaxLength, "Check-in is too long (max %d characters)", HabitMax)
	}
	return nil
}

func ValidateMotivation(c models.LifeCategory, m models.Motivation) error {
	parts := []struct {
		name, label, value string
	}{
		{"why", "Why it matters", m.Why},
		{"consequence", "Cost of inaction", m.Consequence},
	}
	for _, p := range parts {
		field := fmt.Sprintf("motivation.%s.%s", c, p.name)
		n := length(p.value)
		if n < MotivationMin {
			return invalid(models.StepMotivation, field, ConstraintMinLength, "%s must be at least %d characters", p.label, MotivationMin)
		}
		if n > MotivationMax {
			return invalid(models.StepMotivation, field, ConstraintMaxLength, "%s is too long (max %d characters)", p.label, MotivationMax)
		}
	}
	return nil
}

// OverSoftTarget reports motivation text past the suggested length. It is a
// hint for the presentation layer and never blocks a transition.
func OverSoftTarget(text string) bool {
	return length(text) > MotivationSoft
}
