package cli

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// errSaveAndQuit ends the wizard with progress kept.
var errSaveAndQuit = errors.New("save and quit")

// prompter is the terminal input surface of the wizard.
type prompter interface {
	Input(label, def string, validate func(string) error) (string, error)
	Select(label string, items []string) (int, error)
	Confirm(label string) (bool, error)
}

type promptuiPrompter struct{}

func (promptuiPrompter) Input(label, def string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: def != "",
		Validate:  promptui.ValidateFunc(validate),
	}
	s, err := p.Run()
	return s, interrupted(err)
}

func (promptuiPrompter) Select(label string, items []string) (int, error) {
	s := promptui.Select{Label: label, Items: items, Size: len(items)}
	i, _, err := s.Run()
	return i, interrupted(err)
}

func (promptuiPrompter) Confirm(label string) (bool, error) {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	}
	return false, interrupted(err)
}

// interrupted maps Ctrl-C and Ctrl-D to errSaveAndQuit.
func interrupted(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errSaveAndQuit
	}
	return err
}
