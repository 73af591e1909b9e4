package export

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/arnold/blueprint-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findBlock(doc *Document, kind BlockKind, nth int) (page int, b Block, ok bool) {
	seen := 0
	for _, p := range doc.Pages {
		for _, blk := range p.Blocks {
			if blk.Kind != kind {
				continue
			}
			if seen == nth {
				return p.Number, blk, true
			}
			seen++
		}
	}
	return 0, Block{}, false
}

func TestWrap(t *testing.T) {
	m := EstimateMeasurer{}
	assert.Equal(t, []string{"aaaa bbbb", "cccc"}, Wrap(m, "aaaa bbbb cccc", 10, false, 20))
	assert.Equal(t, []string{"abcdefghijk", "lmnopqrstuv", "wxyz"}, Wrap(m, "abcdefghijklmnopqrstuvwxyz", 10, false, 20))
	assert.Equal(t, []string{""}, Wrap(m, "", 10, false, 20))
	assert.Equal(t, []string{"one", "two"}, Wrap(m, "one\ntwo", 10, false, 20))
}

func TestFirstGoalFollowsSummary(t *testing.T) {
	doc, err := Layout(sampleInput(), EstimateMeasurer{})
	require.NoError(t, err)

	assert.True(t, doc.Pages[0].Cover)
	page, header, ok := findBlock(doc, BlockGoalHeader, 0)
	require.True(t, ok)
	assert.Equal(t, 2, page)
	assert.Greater(t, header.Y, ContentTop)

	_, _, ok = findBlock(doc, BlockRadar, 0)
	assert.False(t, ok, "radar needs all six ratings")
}

func TestRadarPushesFirstGoalToNextPage(t *testing.T) {
	in := sampleInput()
	in.Ratings = map[models.LifeCategory]int{}
	for i, c := range models.AllCategories {
		in.Ratings[c] = i + 3
	}
	doc, err := Layout(in, EstimateMeasurer{})
	require.NoError(t, err)

	radarPage, _, ok := findBlock(doc, BlockRadar, 0)
	require.True(t, ok)
	assert.Equal(t, 2, radarPage)

	page, header, ok := findBlock(doc, BlockGoalHeader, 0)
	require.True(t, ok)
	assert.Equal(t, 3, page)
	assert.Equal(t, ContentTop, header.Y)
}

func TestEveryLaterGoalStartsAPage(t *testing.T) {
	in := sampleInput()
	doc, err := Layout(in, EstimateMeasurer{})
	require.NoError(t, err)

	first, _, ok := findBlock(doc, BlockGoalHeader, 0)
	require.True(t, ok)
	second, header, ok := findBlock(doc, BlockGoalHeader, 1)
	require.True(t, ok)
	assert.Greater(t, second, first)
	assert.Equal(t, ContentTop, header.Y)
	assert.Equal(t, models.CategoryFinance, header.Category)
}

func TestBlocksFitTheirPage(t *testing.T) {
	in := sampleInput()
	long := strings.Repeat("Consistency beats intensity over a long year. ", 13)
	in.Goals[0].Motivation = models.Motivation{Why: long, Consequence: long}
	in.Goals[0].MonthlyCheckIn = strings.Repeat("Check the plan. ", 12)

	doc, err := Layout(in, EstimateMeasurer{})
	require.NoError(t, err)

	for _, p := range doc.Pages[1:] {
		assert.Equal(t, fmt.Sprintf("Your 2027 Success Blueprint • Page %d", p.Number), p.Footer)
		for i, b := range p.Blocks {
			fits := b.Y+b.H <= ContentBottom+1e-9 || math.Abs(b.Y-ContentTop) < 1e-9
			assert.True(t, fits, "page %d block %d overflows: y=%.1f h=%.1f", p.Number, i, b.Y, b.H)
			if b.Kind == BlockSectionLabel {
				require.Less(t, i+1, len(p.Blocks))
				assert.Equal(t, BlockTable, p.Blocks[i+1].Kind, "label separated from its table")
			}
		}
	}

	// The long motivation table cannot share the first goal's page.
	headerPage, _, _ := findBlock(doc, BlockGoalHeader, 0)
	var motivationPage int
	for _, p := range doc.Pages {
		for _, b := range p.Blocks {
			if b.Kind == BlockSectionLabel && b.Text == "MOTIVATION SYSTEM" && motivationPage == 0 {
				motivationPage = p.Number
			}
		}
	}
	assert.Greater(t, motivationPage, headerPage)
}

func TestRadarGeometry(t *testing.T) {
	ratings := map[models.LifeCategory]int{}
	for _, c := range models.AllCategories {
		ratings[c] = 5
	}
	ratings[models.CategoryHealth] = 10
	chart := NewRadarChart(ratings, 100, 100, 30)

	require.Len(t, chart.Axes, 6)
	require.Len(t, chart.Rings, radarLevels)

	top := chart.Axes[0]
	assert.Equal(t, models.CategoryHealth, top.Category)
	assert.InDelta(t, 100, top.End.X, 1e-9)
	assert.InDelta(t, 70, top.End.Y, 1e-9)
	assert.InDelta(t, 70, top.Value.Y, 1e-9)

	bottom := chart.Axes[3]
	assert.InDelta(t, 100, bottom.Value.X, 1e-9)
	assert.InDelta(t, 115, bottom.Value.Y, 1e-9)

	// Clockwise: the second axis sits to the right of centre.
	assert.Greater(t, chart.Axes[1].End.X, 100.0)
}
