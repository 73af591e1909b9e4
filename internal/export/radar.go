package export

import (
	"math"

	"github.com/arnold/blueprint-api/internal/models"
)

type Point struct {
	X, Y float64
}

type RadarAxis struct {
	Category models.LifeCategory
	Rating   int
	End      Point
	Value    Point
	Label    Point
}

// RadarChart is the wheel-of-life geometry: one axis per category, starting
// at twelve o'clock and running clockwise.
type RadarChart struct {
	Center  Point
	Radius  float64
	Axes    []RadarAxis
	Rings   [][]Point
	Polygon []Point
}

const radarLevels = 5

func NewRadarChart(ratings map[models.LifeCategory]int, cx, cy, radius float64) *RadarChart {
	n := len(models.AllCategories)
	chart := &RadarChart{Center: Point{cx, cy}, Radius: radius}

	at := func(i int, r float64) Point {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		return Point{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}

	for level := 1; level <= radarLevels; level++ {
		r := radius * float64(level) / radarLevels
		ring := make([]Point, n)
		for i := range ring {
			ring[i] = at(i, r)
		}
		chart.Rings = append(chart.Rings, ring)
	}

	for i, c := range models.AllCategories {
		rating := ratings[c]
		if rating < 0 {
			rating = 0
		}
		if rating > 10 {
			rating = 10
		}
		axis := RadarAxis{
			Category: c,
			Rating:   rating,
			End:      at(i, radius),
			Value:    at(i, radius*float64(rating)/10),
			Label:    at(i, radius+8),
		}
		chart.Axes = append(chart.Axes, axis)
		chart.Polygon = append(chart.Polygon, axis.Value)
	}
	return chart
}
