package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/arnold/blueprint-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	return Input{
		UserName:  "Dana Scully",
		UserEmail: "dana@example.com",
		Primary:   models.CategoryHealth,
		Secondary: []models.LifeCategory{models.CategoryFinance},
		Goals: []models.CategoryGoal{
			{
				Category: models.CategoryHealth,
				MainGoal: "Run a half marathon, \"comfortably\" and injury free",
				Actions: models.ActionStep{
					Small:  "Walk 20 minutes, every day",
					Medium: "Join a running club",
					Big:    "Race in October",
				},
				MonthlyCheckIn: "Review the training log on the last Sunday",
				Motivation: models.Motivation{
					Why:         "More energy for the kids",
					Consequence: "Another year of feeling tired",
				},
			},
			{
				Category: models.CategoryFinance,
				MainGoal: "Save six months",
			},
		},
		Ratings: map[models.LifeCategory]int{models.CategoryHealth: 4},
		Year:    2027,
		Date:    time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC),
	}
}

func TestPreconditions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
		want   error
	}{
		{"missing name", func(in *Input) { in.UserName = "" }, ErrMissingIdentity},
		{"missing email", func(in *Input) { in.UserEmail = "" }, ErrMissingIdentity},
		{"no goals", func(in *Input) { in.Goals = nil }, ErrNoGoals},
		{"no primary", func(in *Input) { in.Primary = "" }, ErrNoPrimary},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := sampleInput()
			tc.mutate(&in)

			_, err := NotionCSV(in)
			assert.ErrorIs(t, err, tc.want)
			_, err = NotionMarkdown(in)
			assert.ErrorIs(t, err, tc.want)
			_, err = Layout(in, EstimateMeasurer{})
			assert.ErrorIs(t, err, tc.want)
			_, err = Generate(FormatPDF, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNotionCSVRoundTrips(t *testing.T) {
	in := sampleInput()
	out, err := NotionCSV(in)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "Category,Type,Main Goal,Small Action,Medium Action,Big Action,Monthly Check-in,Why It Matters,Cost of Inaction,Status,Priority", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"Health","Primary","Run a half marathon, ""comfortably""`))

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"Health",
		"Primary",
		"Run a half marathon, \"comfortably\" and injury free",
		"Walk 20 minutes, every day",
		"Join a running club",
		"Race in October",
		"Review the training log on the last Sunday",
		"More energy for the kids",
		"Another year of feeling tired",
		"Not Started",
		"High",
	}, records[1])
	assert.Equal(t, "Secondary", records[2][1])
	assert.Equal(t, "Medium", records[2][10])
	assert.Equal(t, "", records[2][3])
}

func TestNotionMarkdown(t *testing.T) {
	out, err := NotionMarkdown(sampleInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# 2027 Success Blueprint 🚀\n\n"))
	assert.Contains(t, out, "**Owner:** Dana Scully\n**Focus:** Health\n")
	assert.Contains(t, out, "### 🔧 Supporting Areas\n* Finance\n")
	assert.Contains(t, out, "### ⭐ Health\n")
	assert.Contains(t, out, "### 📌 Finance\n")
	assert.Contains(t, out, "| **Small Step** | Walk 20 minutes, every day |\n")
	assert.Contains(t, out, "| **Big Step** | - |\n")
	assert.Contains(t, out, "| Meditate 5 mins | [ ] | [ ] | [ ] | [ ] | [ ] | [ ] | [ ] |\n")
	assert.Equal(t, 12, strings.Count(out, "- [ ] Review Goals\n"))
	assert.Contains(t, out, "### December\n")
}

func TestGeneratorsArePure(t *testing.T) {
	in := sampleInput()
	a, err := NotionCSV(in)
	require.NoError(t, err)
	b, err := NotionCSV(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, sampleInput(), in)
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "Dana_Scully_2027_Success_Blueprint.pdf", FileName(FormatPDF, "Dana  Scully", 2027))
	assert.Equal(t, "Dana_2027_Notion_Template.csv", FileName(FormatCSV, "Dana", 2027))
	assert.Equal(t, "Dana_2027_Notion_Template.md", FileName(FormatMarkdown, "Dana", 2027))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MD")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestGenerateAllFormats(t *testing.T) {
	for _, f := range Formats {
		a, err := Generate(f, sampleInput())
		require.NoError(t, err, f)
		assert.NotEmpty(t, a.Body)
		assert.Equal(t, FileName(f, "Dana Scully", 2027), a.FileName)
	}

	pdf, err := Generate(FormatPDF, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, strings.HasPrefix(string(pdf.Body), "%PDF-"))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(dir+"/out", &Artifact{FileName: "x.csv", Body: []byte("a,b")})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestFromDocumentUsesTargetYear(t *testing.T) {
	doc := models.NewDocument()
	primary := models.CategoryCareer
	doc.PrimaryCategory = &primary
	doc.SelectedCategories = []models.LifeCategory{models.CategoryCareer}
	doc.Goals[models.CategoryCareer] = "Lead the platform team"

	in := FromDocument(doc, time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2027, in.Year)
	assert.Equal(t, models.CategoryCareer, in.Primary)
	require.Len(t, in.Goals, 1)

	in = FromDocument(doc, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2026, in.Year)
}

func TestFromDocumentSanitizesIdentity(t *testing.T) {
	doc := models.NewDocument()
	doc.UserName = `<svg onload=alert(1)>Dana</svg>`
	doc.UserEmail = "javascript:dana@example.com"

	in := FromDocument(doc, time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "svg alert(1)Dana/svg", in.UserName)
	assert.Equal(t, "dana@example.com", in.UserEmail)
	assert.Equal(t, 2027, in.Year)
	assert.Equal(t, "svg_alert(1)Dana_svg_2027_Notion_Template.md", FileName(FormatMarkdown, in.UserName, in.Year))
}

func TestFileNameNeverEscapesTheDirectory(t *testing.T) {
	assert.Equal(t, ".._.._etc_2027_Success_Blueprint.pdf", FileName(FormatPDF, "../../etc", 2027))
	assert.Equal(t, "a_b_2027_Notion_Template.csv", FileName(FormatCSV, `a\b`, 2027))
}
