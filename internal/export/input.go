package export

import (
	"errors"
	"regexp"
	"time"

	"github.com/arnold/blueprint-api/internal/config"
	"github.com/arnold/blueprint-api/internal/models"
	"github.com/arnold/blueprint-api/internal/wizard"
)

var (
	ErrMissingIdentity = errors.New("missing required user information (name or email)")
	ErrNoGoals         = errors.New("no goals to export")
	ErrNoPrimary       = errors.New("primary category is required")
)

// Input is everything an exporter reads. Generators never modify it.
type Input struct {
	UserName  string
	UserEmail string
	Goals     []models.CategoryGoal
	Primary   models.LifeCategory
	Secondary []models.LifeCategory
	Ratings   map[models.LifeCategory]int
	Year      int
	Date      time.Time
}

// FromDocument builds an Input from a wizard document at time now.
func FromDocument(doc *models.WizardDocument, now time.Time) Input {
	return Input{
		UserName:  wizard.SanitizeInput(doc.UserName),
		UserEmail: wizard.SanitizeInput(doc.UserEmail),
		Goals:     doc.CompiledGoals(),
		Primary:   doc.Primary(),
		Secondary: doc.SecondaryCategories,
		Ratings:   doc.Ratings,
		Year:      config.TargetYear(now),
		Date:      now,
	}
}

// FromSnapshot builds an Input from the checkout snapshot.
func FromSnapshot(snap *models.CheckoutSnapshot, now time.Time) Input {
	in := Input{
		UserName:  wizard.SanitizeInput(snap.UserName),
		UserEmail: wizard.SanitizeInput(snap.UserEmail),
		Goals:     snap.Goals,
		Secondary: snap.SecondaryCategories,
		Ratings:   snap.Ratings,
		Year:      config.TargetYear(now),
		Date:      now,
	}
	if snap.PrimaryCategory != nil {
		in.Primary = *snap.PrimaryCategory
	}
	return in
}

// Validate checks the preconditions shared by every generator.
func (in Input) Validate() error {
	switch {
	case in.UserName == "" || in.UserEmail == "":
		return ErrMissingIdentity
	case len(in.Goals) == 0:
		return ErrNoGoals
	case in.Primary == "":
		return ErrNoPrimary
	}
	return nil
}

func (in Input) isPrimary(c models.LifeCategory) bool {
	return c == in.Primary
}

// allRated reports whether every category carries a rating.
func (in Input) allRated() bool {
	for _, c := range models.AllCategories {
		if in.Ratings[c] <= 0 {
			return false
		}
	}
	return true
}

// Whitespace and path separators become underscores.
var fileStemSeparators = regexp.MustCompile(`[\s/\\]+`)

func fileStem(name string) string {
	return fileStemSeparators.ReplaceAllString(name, "_")
}
