package models

import "fmt"

// LifeCategory is one of the six Wheel of Life areas.
type LifeCategory string

const (
	CategoryHealth        LifeCategory = "Health"
	CategoryCareer        LifeCategory = "Career"
	CategoryFinance       LifeCategory = "Finance"
	CategoryRelationships LifeCategory = "Relationships"
	CategorySpirituality  LifeCategory = "Spirituality"
	CategoryPassion       LifeCategory = "Passion"
)

// AllCategories lists every category in wheel order.
var AllCategories = []LifeCategory{
	CategoryHealth,
	CategoryCareer,
	CategoryFinance,
	CategoryRelationships,
	CategorySpirituality,
	CategoryPassion,
}

func (c LifeCategory) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts the exact category name.
func ParseCategory(s string) (LifeCategory, error) {
	c := LifeCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown life category %q", s)
	}
	return c, nil
}

func containsCategory(list []LifeCategory, c LifeCategory) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}
