package run

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingInput is the sentinel for missing-input precondition failures,
// usable with errors.Is.
var ErrMissingInput = errors.New("missing input")

// MissingInputError reports that a task cannot run because declared inputs
// do not exist. It is fatal to the whole run, not just the task.
type MissingInputError struct {
	// Task is the name of the task whose precondition failed.
	Task string

	// Missing lists every nonexistent input path, in declared order.
	Missing []string
}

func (e *MissingInputError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("cannot run task %s because the following inputs are missing: %s",
		e.Task, strings.Join(e.Missing, ", "))
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }
