package pipeline

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned when analyze-all is invoked while another
// run holds the lock or is still marked processing.
var ErrRunInProgress = errors.New("an analysis run is already in progress")

// ValidationError carries the user-facing rejection reason for an invalid
// complaint. It is surfaced to the caller, not logged as a failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "complaint rejected: " + e.Reason
}

// StageError wraps a failure inside one pipeline stage. It aborts the
// remaining stages of the current workflow.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
