package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure taxonomy. Callers classify with errors.Is.
var (
	// ErrAuth means login could not be completed. Fatal to the whole run.
	ErrAuth = errors.New("authentication failed")

	// ErrElementNotFound means a required UI element never appeared after
	// every candidate query was exhausted.
	ErrElementNotFound = errors.New("element not found")

	// ErrInteractionFailed means every click strategy was exhausted.
	ErrInteractionFailed = errors.New("all interaction strategies failed")

	// ErrNavigationTimeout means an expected URL/page transition did not
	// occur in time. Most call sites degrade to proceed-with-warning.
	ErrNavigationTimeout = errors.New("navigation timed out")

	// ErrCaptureFailure means no serialization tier produced a non-empty
	// output file.
	ErrCaptureFailure = errors.New("capture produced no output")

	// ErrStaleReference means an ordinal index no longer resolves after
	// re-enumeration.
	ErrStaleReference = errors.New("stale reference after re-enumeration")
)

// StepError wraps a failure with the traversal path where it occurred
// (class/tab/topic/subtopic/section), so skipped leaves are attributable
// in the run log.
type StepError struct {
	Path []string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s at %s: %v", e.Step, strings.Join(e.Path, " > "), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// NewStepError copies path so later appends by the caller cannot mutate it.
func NewStepError(step string, path []string, err error) *StepError {
	p := make([]string, len(path))
	copy(p, path)
	return &StepError{Path: p, Step: step, Err: err}
}
