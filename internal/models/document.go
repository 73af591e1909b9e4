package models

// Wizard steps, 0-indexed.
const (
	StepRatings = iota
	StepCategories
	StepGoals
	StepActions
	StepHabits
	StepMotivation
	StepSummary

	StepCount = 7
)

// StepNames are the labels shown next to progress and in step errors.
var StepNames = [StepCount]string{
	"Wheel of Life",
	"Category Selection",
	"Goals",
	"Actions",
	"Habits",
	"Motivation",
	"Summary",
}

type ActionStep struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Big    string `json:"big"`
}

type Motivation struct {
	Why         string `json:"why"`
	Consequence string `json:"consequence"`
}

// WizardDocument is one user's wizard session. It is persisted whole by
// autosave and handed to checkout at the final step.
type WizardDocument struct {
	HasStarted          bool                        `json:"hasStarted"`
	CurrentStep         int                         `json:"currentStep"`
	Ratings             map[LifeCategory]int        `json:"lifeWheelRatings"`
	PrimaryCategory     *LifeCategory               `json:"primaryCategory"`
	SecondaryCategories []LifeCategory              `json:"secondaryCategories"`
	SelectedCategories  []LifeCategory              `json:"selectedCategories"`
	Goals               map[LifeCategory]string     `json:"goals"`
	Actions             map[LifeCategory]ActionStep `json:"actions"`
	Habits              map[LifeCategory]string     `json:"habits"`
	Motivation          map[LifeCategory]Motivation `json:"motivation"`
	UserName            string                      `json:"userName"`
	UserEmail           string                      `json:"userEmail"`
	// SavedAt is the unix-millisecond time of the last persisted write.
	SavedAt int64 `json:"timestamp"`
}

func NewDocument() *WizardDocument {
	return &WizardDocument{
		Ratings:             map[LifeCategory]int{},
		SecondaryCategories: []LifeCategory{},
		SelectedCategories:  []LifeCategory{},
		Goals:               map[LifeCategory]string{},
		Actions:             map[LifeCategory]ActionStep{},
		Habits:              map[LifeCategory]string{},
		Motivation:          map[LifeCategory]Motivation{},
	}
}

// Normalize fills nil maps and slices left behind by a partial JSON payload.
func (d *WizardDocument) Normalize() {
	if d.Ratings == nil {
		d.Ratings = map[LifeCategory]int{}
	}
	if d.SecondaryCategories == nil {
		d.SecondaryCategories = []LifeCategory{}
	}
	if d.SelectedCategories == nil {
		d.SelectedCategories = []LifeCategory{}
	}
	if d.Goals == nil {
		d.Goals = map[LifeCategory]string{}
	}
	if d.Actions == nil {
		d.Actions = map[LifeCategory]ActionStep{}
	}
	if d.Habits == nil {
		d.Habits = map[LifeCategory]string{}
	}
	if d.Motivation == nil {
		d.Motivation = map[LifeCategory]Motivation{}
	}
	if d.CurrentStep < 0 || d.CurrentStep >= StepCount {
		d.CurrentStep = StepRatings
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (d *WizardDocument) Clone() *WizardDocument {
	out := *d
	if d.PrimaryCategory != nil {
		p := *d.PrimaryCategory
		out.PrimaryCategory = &p
	}
	out.Ratings = make(map[LifeCategory]int, len(d.Ratings))
	for k, v := range d.Ratings {
		out.Ratings[k] = v
	}
	out.SecondaryCategories = append([]LifeCategory{}, d.SecondaryCategories...)
	out.SelectedCategories = append([]LifeCategory{}, d.SelectedCategories...)
	out.Goals = make(map[LifeCategory]string, len(d.Goals))
	for k, v := range d.Goals {
		out.Goals[k] = v
	}
	out.Actions = make(map[LifeCategory]ActionStep, len(d.Actions))
	for k, v := range d.Actions {
		out.Actions[k] = v
	}
	out.Habits = make(map[LifeCategory]string, len(d.Habits))
	for k, v := range d.Habits {
		out.Habits[k] = v
	}
	out.Motivation = make(map[LifeCategory]Motivation, len(d.Motivation))
	for k, v := range d.Motivation {
		out.Motivation[k] = v
	}
	return &out
}

// Primary returns the primary category, or "" when none is chosen.
func (d *WizardDocument) Primary() LifeCategory {
	if d.PrimaryCategory == nil {
		return ""
	}
	return *d.PrimaryCategory
}

func (d *WizardDocument) IsSelected(c LifeCategory) bool {
	return containsCategory(d.SelectedCategories, c)
}

// CompiledGoals joins the per-category maps in selection order.
func (d *WizardDocument) CompiledGoals() []CategoryGoal {
	return CompileGoals(d.SelectedCategories, d.Goals, d.Actions, d.Habits, d.Motivation)
}
