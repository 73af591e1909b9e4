package export

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/arnold/blueprint-api/internal/models"
)

// A4 portrait geometry in millimetres.
const (
	PageWidth     = 210.0
	PageHeight    = 297.0
	Margin        = 28.0
	ContentTop    = Margin + 10
	ContentBottom = PageHeight - 20
	// A goal never starts below this line, even the first one.
	GoalStartLimit = PageHeight - 50
	ContentWidth   = PageWidth - 2*Margin

	ptToMM = 25.4 / 72
)

// Font sizes in points.
const (
	sizeGoal      = 15.0
	sizeTableHead = 10.0
	sizeTableBody = 10.5
	sizeIntro     = 11.0
	sizeLabel     = 12.0

	cellPadding   = 4.0
	actionColumn  = 48.0
	radarRadius   = 35.0
	sectionGap    = 25.0
	goalHeaderMin = 40.0
	checkInMin    = 35.0
)

// Measurer reports the rendered width of text in millimetres.
type Measurer interface {
	Width(text string, size float64, bold bool) float64
}

// EstimateMeasurer approximates Helvetica glyph widths without a font.
type EstimateMeasurer struct{}

func (EstimateMeasurer) Width(text string, size float64, bold bool) float64 {
	factor := 0.5
	if bold {
		factor = 0.55
	}
	return float64(utf8.RuneCountInString(text)) * size * ptToMM * factor
}

func lineHeight(size, factor float64) float64 {
	return size * ptToMM * factor
}

// Wrap breaks text into lines no wider than width. Words longer than a line
// are split by character.
func Wrap(m Measurer, text string, size float64, bold bool, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			for m.Width(w, size, bold) > width {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				head, tail := splitAt(m, w, size, bold, width)
				lines = append(lines, head)
				w = tail
			}
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if line != "" && m.Width(candidate, size, bold) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

func splitAt(m Measurer, word string, size float64, bold bool, width float64) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && m.Width(string(runes[:n+1]), size, bold) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

type BlockKind int

const (
	BlockSummaryTitle BlockKind = iota
	BlockFocus
	BlockIntro
	BlockRadar
	BlockGoalHeader
	BlockSectionLabel
	BlockTable
	BlockCheckIn
)

type Table struct {
	// LabelColumn marks the first column as bold row labels.
	LabelColumn bool
	Head        []string
	Widths      []float64
	HeadH       float64
	Rows        [][][]string
	RowHeight   []float64
}

// Block is one positioned element. Y is its top edge.
type Block struct {
	Kind     BlockKind
	Y, H     float64
	Text     string
	Lines    []string
	Category models.LifeCategory
	Table    *Table
	Radar    *RadarChart
}

type Page struct {
	Number int
	Cover  bool
	Footer string
	Blocks []Block
}

// Document is the laid-out PDF, independent of any renderer.
type Document struct {
	Input Input
	Pages []*Page
}

type layouter struct {
	m    Measurer
	in   Input
	doc  *Document
	page *Page
	y    float64
}

// Layout places every block of the blueprint. Each goal after the first
// starts a new page; the first goal follows the summary unless it would
// start below GoalStartLimit. Any block that does not fit the remaining
// space moves to a fresh page.
func Layout(in Input, m Measurer) (*Document, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	l := &layouter{m: m, in: in, doc: &Document{Input: in}}
	l.doc.Pages = append(l.doc.Pages, &Page{Number: 1, Cover: true})

	l.newPage()
	l.summary()
	for i, g := range in.Goals {
		if l.y > GoalStartLimit || i > 0 {
			l.newPage()
		}
		l.goal(g)
	}
	return l.doc, nil
}

func (l *layouter) newPage() {
	n := len(l.doc.Pages) + 1
	l.page = &Page{
		Number: n,
		Footer: fmt.Sprintf("Your %d Success Blueprint • Page %d", l.in.Year, n),
	}
	l.doc.Pages = append(l.doc.Pages, l.page)
	l.y = ContentTop
}

// ensure moves to a new page unless h fits below the cursor. A block taller
// than a whole page is placed at the top of one.
func (l *layouter) ensure(h float64) {
	if l.y+h > ContentBottom && l.y > ContentTop {
		l.newPage()
	}
}

func (l *layouter) place(b Block, advance float64) {
	b.Y = l.y
	l.page.Blocks = append(l.page.Blocks, b)
	l.y += advance
}

func (l *layouter) summary() {
	l.place(Block{Kind: BlockSummaryTitle, H: 10, Text: "Executive Summary"}, 20)
	l.place(Block{Kind: BlockFocus, H: 50, Category: l.in.Primary}, 65)

	intro := fmt.Sprintf("This blueprint outlines your strategic path for %d. You have identified %s as your \"Keystone Habit\" area, the one change that will create a ripple effect across your life. The following pages detail your specific goals, action steps, and motivation systems.", l.in.Year, l.in.Primary)
	lines := Wrap(l.m, intro, sizeIntro, false, ContentWidth)
	h := float64(len(lines)) * lineHeight(sizeIntro, 1.6)
	l.place(Block{Kind: BlockIntro, H: h, Lines: lines}, math.Max(35, h+10))

	if l.in.allRated() {
		h := 2*radarRadius + 30
		l.ensure(h)
		chart := NewRadarChart(l.in.Ratings, PageWidth/2, l.y+15+radarRadius, radarRadius)
		l.place(Block{Kind: BlockRadar, H: h, Radar: chart}, h+10)
	}
}

func (l *layouter) goal(g models.CategoryGoal) {
	goalLines := Wrap(l.m, g.MainGoal, sizeGoal, true, ContentWidth-16)
	headerH := math.Max(goalHeaderMin, 28+float64(len(goalLines)-1)*lineHeight(sizeGoal, 1.3)+8)
	l.ensure(headerH)
	l.place(Block{Kind: BlockGoalHeader, H: headerH, Lines: goalLines, Category: g.Category}, headerH+15)

	actions := l.table(
		[]string{"Timeline", "Action Step"},
		[]float64{actionColumn, ContentWidth - actionColumn},
		[][]string{
			{"Small Step (Now)", g.Actions.Small},
			{"Medium Step (Soon)", g.Actions.Medium},
			{"Big Step (Later)", g.Actions.Big},
		},
		true,
	)
	l.section("ACTION PLAN", actions)

	motivation := l.table(
		[]string{"Why it Matters (Gain)", "Cost of Inaction (Pain)"},
		[]float64{ContentWidth / 2, ContentWidth / 2},
		[][]string{{g.Motivation.Why, g.Motivation.Consequence}},
		false,
	)
	l.section("MOTIVATION SYSTEM", motivation)

	checkIn := Wrap(l.m, g.MonthlyCheckIn, sizeTableBody, false, ContentWidth-20)
	checkInH := math.Max(checkInMin, 22+float64(len(checkIn))*lineHeight(sizeTableBody, 1.5))
	l.ensure(checkInH)
	l.place(Block{Kind: BlockCheckIn, H: checkInH, Text: "MONTHLY CHECK-IN STRATEGY", Lines: checkIn}, checkInH)
}

// section keeps a label together with the table under it.
func (l *layouter) section(label string, t *Table) {
	h := tableHeight(t)
	l.ensure(10 + h)
	l.place(Block{Kind: BlockSectionLabel, H: 10, Text: label}, 10)
	l.place(Block{Kind: BlockTable, H: h, Table: t}, h+sectionGap)
}

// table wraps every cell. boldFirst marks a bold label column.
func (l *layouter) table(head []string, widths []float64, rows [][]string, boldFirst bool) *Table {
	t := &Table{
		LabelColumn: boldFirst,
		Head:        head,
		Widths:      widths,
		HeadH:       lineHeight(sizeTableHead, 1.15) + 2*cellPadding,
	}
	bodyLine := lineHeight(sizeTableBody, 1.15)
	for _, row := range rows {
		cells := make([][]string, len(row))
		maxLines := 1
		for i, text := range row {
			cells[i] = Wrap(l.m, text, sizeTableBody, boldFirst && i == 0, widths[i]-2*cellPadding)
			if len(cells[i]) > maxLines {
				maxLines = len(cells[i])
			}
		}
		t.Rows = append(t.Rows, cells)
		t.RowHeight = append(t.RowHeight, float64(maxLines)*bodyLine+2*cellPadding)
	}
	return t
}

func tableHeight(t *Table) float64 {
	h := t.HeadH
	for _, rh := range t.RowHeight {
		h += rh
	}
	return h
}
