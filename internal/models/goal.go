package models

// CategoryGoal is one entry of the compiled goal document consumed by the
// exporters and the checkout snapshot.
type CategoryGoal struct {
	Category       LifeCategory `json:"category"`
	MainGoal       string       `json:"mainGoal"`
	Actions        ActionStep   `json:"actions"`
	MonthlyCheckIn string       `json:"monthlyCheckIn"`
	Motivation     Motivation   `json:"motivation"`
}

// CompileGoals produces one CategoryGoal per selected category, preserving
// order. Missing entries compile to empty values.
func CompileGoals(
	selected []LifeCategory,
	goals map[LifeCategory]string,
	actions map[LifeCategory]ActionStep,
	habits map[LifeCategory]string,
	motivation map[LifeCategory]Motivation,
) []CategoryGoal {
	out := make([]CategoryGoal, 0, len(selected))
	for _, c := range selected {
		out = append(out, CategoryGoal{
			Category:       c,
			MainGoal:       goals[c],
			Actions:        actions[c],
			MonthlyCheckIn: habits[c],
			Motivation:     motivation[c],
		})
	}
	return out
}
