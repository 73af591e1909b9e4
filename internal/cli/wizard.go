package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arnold/blueprint-api/internal/autosave"
	"github.com/arnold/blueprint-api/internal/checkout"
	"github.com/arnold/blueprint-api/internal/config"
	"github.com/arnold/blueprint-api/internal/export"
	"github.com/arnold/blueprint-api/internal/models"
	"github.com/arnold/blueprint-api/internal/wizard"
	"github.com/spf13/cobra"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Walk through the goal-setting wizard in the terminal",
	Long: `Walk through the seven wizard steps in the terminal.

Progress is autosaved locally. Pass --session to resume an earlier session.`,
	RunE: runWizard,
}

func init() {
	wizardCmd.Flags().String("session", "", "Session ID to resume")
	wizardCmd.Flags().String("out", ".", "Directory exports are written to")
}

var navItems = []string{"Continue", "Back", "Save and quit"}

const (
	navContinue = iota
	navBack
	navQuit
)

type summaryAction int

const (
	summaryExport summaryAction = iota
	summaryCheckout
	summaryBack
	summaryReset
	summaryQuit
)

var summaryLabels = map[summaryAction]string{
	summaryExport:   "Export a preview (development)",
	summaryCheckout: "Continue to checkout",
	summaryBack:     "Back",
	summaryReset:    "Start over",
	summaryQuit:     "Save and quit",
}

// summaryActions lists the summary menu. Exporting the unpaid document is a
// development preview only.
func (w *terminalWizard) summaryActions() []summaryAction {
	actions := []summaryAction{summaryCheckout, summaryBack, summaryReset, summaryQuit}
	if w.cfg.DevPreview {
		actions = append([]summaryAction{summaryExport}, actions...)
	}
	return actions
}

func runWizard(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store, err := openLocalStore(cfg)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("session")
	outDir, _ := cmd.Flags().GetString("out")
	if id != "" && !autosave.ValidSessionID(id) {
		return fmt.Errorf("invalid session id %q", id)
	}

	raw := strings.TrimRight(cfg.AppURL, "/") + "/"
	if id != "" {
		raw += "?" + url.Values{autosave.SessionParam: {id}}.Encode()
	}
	session, err := autosave.ResolveSession(raw, store, time.Now, nil)
	if err != nil {
		return err
	}

	w := newTerminalWizard(session, cfg, promptuiPrompter{}, os.Stdout)
	w.outDir = outDir
	return w.Run(cmd.Context())
}

// terminalWizard drives a wizard.Controller from terminal prompts.
type terminalWizard struct {
	ctrl    *wizard.Controller
	session *autosave.SessionContext
	saver   *autosave.Autosaver
	prompt  prompter
	out     io.Writer
	cfg     *config.Config
	outDir  string
}

func newTerminalWizard(session *autosave.SessionContext, cfg *config.Config, p prompter, out io.Writer) *terminalWizard {
	w := &terminalWizard{
		session: session,
		prompt:  p,
		out:     out,
		cfg:     cfg,
		outDir:  ".",
	}
	w.saver = autosave.NewAutosaver(session, autosave.Options{
		Delay: cfg.AutosaveDelay,
		OnStatus: func(status autosave.Status, _ int64) {
			if status == autosave.StatusFailed {
				fmt.Fprintln(os.Stderr, red("Autosave failed. Your latest changes are not stored yet."))
			}
		},
	})
	w.ctrl = wizard.NewController(nil, w.saver.Schedule)
	return w
}

func (w *terminalWizard) Run(ctx context.Context) error {
	defer w.saver.Stop()

	fmt.Fprintf(w.out, "%s\n", bold(fmt.Sprintf("Your %d Success Blueprint", config.TargetYear(time.Now()))))
	fmt.Fprintf(w.out, "Resume later with %s\n", cyan("blueprint wizard --session "+w.session.ID))
	fmt.Fprintf(w.out, "%s\n", gray(w.session.ResumeLink()))

	if doc, ok := w.session.Resume(ctx, w.ctrl.Started(), w.confirmResume); ok {
		w.ctrl = wizard.NewController(doc, w.saver.Schedule)
		fmt.Fprintln(w.out, green("Progress restored."))
	}
	w.ctrl.Start()

	err := w.loop(ctx)
	if !w.saver.Flush(ctx) {
		fmt.Fprintln(w.out, red("Your latest changes could not be saved."))
	}
	if errors.Is(err, errSaveAndQuit) {
		fmt.Fprintln(w.out, green("Progress saved."))
		return nil
	}
	return err
}

func (w *terminalWizard) confirmResume(saved *models.WizardDocument) bool {
	step := saved.CurrentStep
	label := fmt.Sprintf("Found saved progress at step %d (%s)", step+1, models.StepNames[step])
	if saved.SavedAt > 0 {
		label += " from " + time.UnixMilli(saved.SavedAt).Format("Jan 2 15:04")
	}
	ok, err := w.prompt.Confirm(label + ". Restore it")
	return err == nil && ok
}

func (w *terminalWizard) loop(ctx context.Context) error {
	for {
		step := w.ctrl.Step()
		w.header(step)

		if step == models.StepSummary {
			done, err := w.summary(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			continue
		}

		if err := w.editStep(step); err != nil {
			if errors.Is(err, errSaveAndQuit) {
				return err
			}
			if err := w.recoverStep(step, err); err != nil {
				return err
			}
			continue
		}

		nav, err := w.prompt.Select("What next?", navItems)
		if err != nil {
			return err
		}
		switch nav {
		case navContinue:
			if err := w.ctrl.Next(); err != nil {
				w.showError(err)
			}
		case navBack:
			if !w.ctrl.Back() {
				fmt.Fprintln(w.out, "Back at the start. Run the wizard again any time.")
				return errSaveAndQuit
			}
		case navQuit:
			return errSaveAndQuit
		}
	}
}

func (w *terminalWizard) header(step int) {
	line := fmt.Sprintf("Step %d of %d: %s", step+1, models.StepCount, models.StepNames[step])
	if cat, ok := w.ctrl.ActiveCategory(); ok && step == models.StepGoals {
		line += " (" + string(cat) + ")"
	}
	fmt.Fprintf(w.out, "\n%s", bold(line))
	if saved := w.saver.LastSaved(); saved > 0 {
		fmt.Fprintf(w.out, "  %s", gray("saved "+time.UnixMilli(saved).Format("15:04:05")))
	}
	fmt.Fprintln(w.out)
}

func (w *terminalWizard) showError(err error) {
	fmt.Fprintln(w.out, red(err.Error()))
}

// recoverStep is the step-level error boundary: the user may retry, skip
// ahead or start over.
func (w *terminalWizard) recoverStep(step int, cause error) error {
	w.showError(cause)
	choice, err := w.prompt.Select("Something went wrong on this step", []string{"Retry this step", "Skip this step", "Start over"})
	if err != nil {
		return err
	}
	switch choice {
	case 1:
		if err := w.ctrl.Skip(step + 1); err != nil {
			w.showError(err)
		}
	case 2:
		w.ctrl.Reset()
		w.ctrl.Start()
	}
	return nil
}

func (w *terminalWizard) editStep(step int) error {
	switch step {
	case models.StepRatings:
		return w.ratings()
	case models.StepCategories:
		return w.categories()
	case models.StepGoals:
		return w.goal()
	case models.StepActions:
		return w.actions()
	case models.StepHabits:
		return w.habit()
	case models.StepMotivation:
		return w.motivation()
	}
	return wizard.ErrInvalidStep
}

func validateRating(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < wizard.MinRating || n > wizard.MaxRating {
		return fmt.Errorf("enter a number from %d to %d", wizard.MinRating, wizard.MaxRating)
	}
	return nil
}

func (w *terminalWizard) ratings() error {
	doc := w.ctrl.Document()
	for _, c := range models.AllCategories {
		def := ""
		if r := doc.Ratings[c]; r > 0 {
			def = strconv.Itoa(r)
		}
		s, err := w.prompt.Input(fmt.Sprintf("Rate %s (%d-%d)", c, wizard.MinRating, wizard.MaxRating), def, validateRating)
		if err != nil {
			return err
		}
		n, _ := strconv.Atoi(strings.TrimSpace(s))
		if err := w.ctrl.SetRating(c, n); err != nil {
			return err
		}
	}
	return nil
}

func (w *terminalWizard) categories() error {
	doc := w.ctrl.Document()
	items := make([]string, len(models.AllCategories))
	for i, c := range models.AllCategories {
		items[i] = fmt.Sprintf("%s (%d/10)", c, doc.Ratings[c])
	}
	i, err := w.prompt.Select("Primary focus area", items)
	if err != nil {
		return err
	}
	if err := w.ctrl.SelectPrimary(models.AllCategories[i]); err != nil {
		return err
	}

	for {
		doc = w.ctrl.Document()
		var cats []models.LifeCategory
		var items []string
		for _, c := range models.AllCategories {
			if c == doc.Primary() {
				continue
			}
			mark := "[ ]"
			if doc.IsSelected(c) {
				mark = "[x]"
			}
			cats = append(cats, c)
			items = append(items, mark+" "+string(c))
		}
		items = append(items, "Done")

		i, err := w.prompt.Select(fmt.Sprintf("Supporting areas (up to %d)", wizard.MaxSecondary), items)
		if err != nil {
			return err
		}
		if i == len(cats) {
			return nil
		}
		changed, err := w.ctrl.ToggleSecondary(cats[i])
		if err != nil {
			return err
		}
		if !changed {
			fmt.Fprintln(w.out, yellow(fmt.Sprintf("You can choose up to %d supporting areas. Deselect one first.", wizard.MaxSecondary)))
		}
	}
}

func (w *terminalWizard) goal() error {
	cat, ok := w.ctrl.ActiveCategory()
	if !ok {
		return wizard.ErrPrimaryRequired
	}
	doc := w.ctrl.Document()
	primary := cat == doc.Primary()

	label := "Goal for " + string(cat)
	if primary {
		label += " (primary)"
	}
	text, err := w.prompt.Input(label, doc.Goals[cat], func(s string) error {
		return wizard.ValidateGoal(cat, s, primary)
	})
	if err != nil {
		return err
	}
	return w.ctrl.SetGoal(cat, text)
}

// textLimit validates a required field between min and max characters.
func textLimit(label string, min, max int) func(string) error {
	return func(s string) error {
		n := utf8.RuneCountInString(strings.TrimSpace(s))
		switch {
		case n == 0:
			return fmt.Errorf("%s is required", label)
		case n < min:
			return fmt.Errorf("%s must be at least %d characters", label, min)
		case n > max:
			return fmt.Errorf("%s is too long (max %d characters)", label, max)
		}
		return nil
	}
}

func (w *terminalWizard) actions() error {
	doc := w.ctrl.Document()
	cur := doc.Actions[doc.Primary()]

	var err error
	var a models.ActionStep
	if a.Small, err = w.prompt.Input("Small step (this week)", cur.Small, textLimit("Small action", 1, wizard.ActionMax)); err != nil {
		return err
	}
	if a.Medium, err = w.prompt.Input("Medium step (this month)", cur.Medium, textLimit("Medium action", 1, wizard.ActionMax)); err != nil {
		return err
	}
	if a.Big, err = w.prompt.Input("Big step (this quarter)", cur.Big, textLimit("Big action", 1, wizard.ActionMax)); err != nil {
		return err
	}
	return w.ctrl.SetActions(a)
}

func (w *terminalWizard) habit() error {
	doc := w.ctrl.Document()
	p := doc.Primary()
	text, err := w.prompt.Input("Monthly check-in habit", doc.Habits[p], func(s string) error {
		return wizard.ValidateHabit(p, s)
	})
	if err != nil {
		return err
	}
	return w.ctrl.SetHabit(text)
}

func (w *terminalWizard) motivation() error {
	doc := w.ctrl.Document()
	cur := doc.Motivation[doc.Primary()]

	var err error
	var m models.Motivation
	if m.Why, err = w.prompt.Input("Why does this matter to you", cur.Why, textLimit("Why it matters", wizard.MotivationMin, wizard.MotivationMax)); err != nil {
		return err
	}
	if m.Consequence, err = w.prompt.Input("What happens if you don't", cur.Consequence, textLimit("Cost of inaction", wizard.MotivationMin, wizard.MotivationMax)); err != nil {
		return err
	}
	if wizard.OverSoftTarget(m.Why) || wizard.OverSoftTarget(m.Consequence) {
		fmt.Fprintln(w.out, yellow(fmt.Sprintf("Tip: answers under %d characters are easier to revisit.", wizard.MotivationSoft)))
	}
	return w.ctrl.SetMotivation(m)
}

func (w *terminalWizard) summary(ctx context.Context) (bool, error) {
	doc := w.ctrl.Document()
	for _, g := range doc.CompiledGoals() {
		marker := "📌"
		if g.Category == doc.Primary() {
			marker = "⭐"
		}
		fmt.Fprintf(w.out, "%s %s: %s\n", marker, bold(string(g.Category)), g.MainGoal)
	}

	actions := w.summaryActions()
	items := make([]string, len(actions))
	for i, a := range actions {
		items[i] = summaryLabels[a]
	}
	choice, err := w.prompt.Select("Your blueprint is ready", items)
	if err != nil {
		return false, err
	}

	switch actions[choice] {
	case summaryExport:
		if err := w.identity(); err != nil {
			return false, err
		}
		w.exportAll()
	case summaryCheckout:
		if err := w.identity(); err != nil {
			return false, err
		}
		return w.checkout(ctx)
	case summaryBack:
		w.ctrl.Back()
	case summaryReset:
		ok, err := w.prompt.Confirm("Discard all answers and start over")
		if err != nil {
			return false, err
		}
		if ok {
			w.ctrl.Reset()
			w.ctrl.Start()
		}
	case summaryQuit:
		return false, errSaveAndQuit
	}
	return false, nil
}

func (w *terminalWizard) identity() error {
	doc := w.ctrl.Document()
	name, err := w.prompt.Input("Your name", doc.UserName, func(s string) error {
		_, err := wizard.ValidateName(s)
		return err
	})
	if err != nil {
		return err
	}
	email, err := w.prompt.Input("Your email", doc.UserEmail, func(s string) error {
		_, err := wizard.ValidateEmail(s)
		return err
	})
	if err != nil {
		return err
	}

	name, email, err = wizard.ValidateIdentity(name, email)
	if err != nil {
		return err
	}
	w.ctrl.SetIdentity(name, email)
	return nil
}

func (w *terminalWizard) exportAll() {
	in := export.FromDocument(w.ctrl.Document(), time.Now())
	for _, f := range export.Formats {
		path, err := writeArtifact(f, in, w.outDir)
		if err != nil {
			w.showError(err)
			continue
		}
		fmt.Fprintf(w.out, "%s %s\n", green("Saved"), path)
	}
}

func (w *terminalWizard) checkout(ctx context.Context) (bool, error) {
	h := &checkout.Handoff{
		Store:       w.session.Store,
		CheckoutURL: w.cfg.LemonSqueezyCheckoutURL,
		Origin:      w.cfg.AppURL,
		SessionID:   w.session.ID,
	}
	doc := w.ctrl.Document()
	res, err := h.Begin(ctx, doc, doc.UserName, doc.UserEmail)
	if err != nil {
		w.showError(err)
		return false, nil
	}

	fmt.Fprintln(w.out, "Complete your purchase here:")
	fmt.Fprintln(w.out, cyan(res.RedirectURL))
	fmt.Fprintf(w.out, "Afterwards, download your files with %s\n", cyan("blueprint export --snapshot"))
	return true, nil
}
