package export

import (
	"fmt"
	"strings"
)

var csvHeader = []string{
	"Category",
	"Type",
	"Main Goal",
	"Small Action",
	"Medium Action",
	"Big Action",
	"Monthly Check-in",
	"Why It Matters",
	"Cost of Inaction",
	"Status",
	"Priority",
}

// NotionCSV renders one row per goal for import as a Notion database. The
// header is bare; every data cell is quoted with embedded quotes doubled.
func NotionCSV(in Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	rows := []string{strings.Join(csvHeader, ",")}
	for _, g := range in.Goals {
		kind, priority := "Secondary", "Medium"
		if in.isPrimary(g.Category) {
			kind, priority = "Primary", "High"
		}
		cells := []string{
			string(g.Category),
			kind,
			g.MainGoal,
			g.Actions.Small,
			g.Actions.Medium,
			g.Actions.Big,
			g.MonthlyCheckIn,
			g.Motivation.Why,
			g.Motivation.Consequence,
			"Not Started",
			priority,
		}
		for i, c := range cells {
			cells[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
		}
		rows = append(rows, strings.Join(cells, ","))
	}
	return strings.Join(rows, "\n"), nil
}

var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

// NotionMarkdown renders the outline form meant to be pasted into a Notion
// page.
func NotionMarkdown(in Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %d Success Blueprint 🚀\n\n", in.Year)

	b.WriteString("> \"The future depends on what you do today.\"\n\n")
	fmt.Fprintf(&b, "**Owner:** %s\n", in.UserName)
	fmt.Fprintf(&b, "**Focus:** %s\n\n", in.Primary)
	b.WriteString("---\n\n")

	b.WriteString("## 🧭 Dashboard\n\n")
	b.WriteString("* [Goals](#goals)\n")
	b.WriteString("* [Habit Tracker](#habit-tracker)\n")
	b.WriteString("* [Monthly Reviews](#monthly-reviews)\n\n")

	b.WriteString("## 🎯 Focus Areas\n\n")
	fmt.Fprintf(&b, "### 🌟 Primary Focus: %s\n", orNotSet(string(in.Primary)))
	fmt.Fprintf(&b, "This is your \"Keystone\" area for %d. Success here will ripple elsewhere.\n\n", in.Year)
	if len(in.Secondary) > 0 {
		b.WriteString("### 🔧 Supporting Areas\n")
		items := make([]string, len(in.Secondary))
		for i, c := range in.Secondary {
			items[i] = "* " + string(c)
		}
		b.WriteString(strings.Join(items, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("---\n\n")

	b.WriteString("## 🏆 Goals <a name=\"goals\"></a>\n\n")
	for _, g := range in.Goals {
		icon := "📌"
		if in.isPrimary(g.Category) {
			icon = "⭐"
		}
		fmt.Fprintf(&b, "### %s %s\n\n", icon, g.Category)
		fmt.Fprintf(&b, "> **Main Goal:** %s\n\n", orNotSet(g.MainGoal))

		b.WriteString("#### 📝 Action Plan\n")
		b.WriteString("| Timeline | Action Step |\n")
		b.WriteString("| :--- | :--- |\n")
		fmt.Fprintf(&b, "| **Small Step** | %s |\n", orDash(g.Actions.Small))
		fmt.Fprintf(&b, "| **Medium Step** | %s |\n", orDash(g.Actions.Medium))
		fmt.Fprintf(&b, "| **Big Step** | %s |\n\n", orDash(g.Actions.Big))

		b.WriteString("#### 🔥 Motivation\n")
		fmt.Fprintf(&b, "* **Why it matters:** %s\n", orDash(g.Motivation.Why))
		fmt.Fprintf(&b, "* **Cost of inaction:** %s\n\n", orDash(g.Motivation.Consequence))

		b.WriteString("#### 📅 Check-in Strategy\n")
		fmt.Fprintf(&b, "%s\n\n", orDash(g.MonthlyCheckIn))
		b.WriteString("---\n\n")
	}

	b.WriteString("## 📊 Habit Tracker <a name=\"habit-tracker\"></a>\n\n")
	b.WriteString("Copy this table for each month to track your daily habits.\n\n")
	b.WriteString("| Habit | M | T | W | T | F | S | S |\n")
	b.WriteString("| :--- | :---: | :---: | :---: | :---: | :---: | :---: | :---: |\n")
	for _, habit := range []string{"[Small Step Action]", "[Medium Step Action]", "Read 10 pages", "Meditate 5 mins"} {
		fmt.Fprintf(&b, "| %s |%s\n", habit, strings.Repeat(" [ ] |", 7))
	}
	b.WriteString("\n")

	b.WriteString("## 📅 Monthly Reviews <a name=\"monthly-reviews\"></a>\n\n")
	b.WriteString("Schedule these on the last Sunday of every month.\n\n")
	for _, m := range months {
		fmt.Fprintf(&b, "### %s\n", m)
		b.WriteString("- [ ] Review Goals\n")
		b.WriteString("- [ ] Check Habit Progress\n")
		b.WriteString("- [ ] Adjust Plan if needed\n\n")
	}

	return b.String(), nil
}
