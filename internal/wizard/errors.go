package wizard

import (
	"errors"
	"fmt"
)

// Constraint names reported in ValidationError.Constraint.
const (
	ConstraintRequired  = "required"
	ConstraintMinLength = "min_length"
	ConstraintMaxLength = "max_length"
	ConstraintRange     = "range"
	ConstraintAllRated  = "all_rated"
	ConstraintPattern   = "pattern"
	ConstraintEmail     = "email"
	ConstraintSelection = "selection"
)

var (
	ErrFinalStep           = errors.New("summary is the final step")
	ErrInvalidStep         = errors.New("step out of range")
	ErrCategoryNotSelected = errors.New("category is not selected")
	ErrPrimaryRequired     = errors.New("primary category must be chosen first")
	ErrWrongStep           = errors.New("field is not editable on the current step")
)

// ValidationError reports a single field failing a single constraint. It is
// returned by value-setting and transition operations; it never means the
// document was modified.
type ValidationError struct {
	Step       int    `json:"step"`
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"error"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(step int, field, constraint, format string, args ...any) *ValidationError {
	return &ValidationError{
		Step:       step,
		Field:      field,
		Constraint: constraint,
		Message:    fmt.Sprintf(format, args...),
	}
}

// AsValidation unwraps err into a *ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
