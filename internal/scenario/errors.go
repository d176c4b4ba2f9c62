package scenario

import (
	"errors"
	"fmt"
)

// Validation messages surfaced by annotations. They are part of the public
// contract and are matched verbatim by callers.
const (
	MsgTitleRequired   = "Test case title is required."
	MsgExamplesInvalid = "@examples argument error, it must be an object or a string."
	MsgBeforeEachFunc  = "@beforeEach argument error, it must be a function."
	MsgAfterEachFunc   = "@afterEach argument error, it must be a function."
	MsgParamsFunc      = "@params argument error, it must be a function."
)

// ValidationError reports an annotation applied with an invalid argument.
// It is raised eagerly, when the annotation is applied, never deferred to
// materialization.
type ValidationError struct {
	// Annotation names the offending annotation ("title", "examples", ...).
	Annotation string

	// Scenario is the scenario being annotated, when known.
	Scenario string

	Message string

	// Err is the underlying cause, e.g. a table parse error.
	Err error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Scenario != "" {
		return fmt.Sprintf("scenario %q: %s", e.Scenario, msg)
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Phase identifies which half of a hook chain failed.
type Phase string

const (
	PhaseBefore Phase = "beforeEach"
	PhaseAfter  Phase = "afterEach"
)

// HookFailure reports a hook that returned an error. The chain stops at the
// first failure; later hooks in the same phase do not run.
type HookFailure struct {
	Phase Phase

	// Source is "scenario" or the plugin that contributed the hook.
	Source string

	Err error
}

func (e *HookFailure) Error() string {
	return fmt.Sprintf("%s hook from %s failed: %v", e.Phase, e.Source, e.Err)
}

func (e *HookFailure) Unwrap() error { return e.Err }

// RunnerFailure wraps an error returned by the Runner for one invocation.
type RunnerFailure struct {
	Key   string
	Title string
	Err   error
}

func (e *RunnerFailure) Error() string {
	return fmt.Sprintf("runner failed for %s: %v", e.Key, e.Err)
}

func (e *RunnerFailure) Unwrap() error { return e.Err }

// ErrSealed is returned when a sealed catalog is annotated or bound again.
var ErrSealed = errors.New("catalog is sealed")

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsHookFailure reports whether err is or wraps a HookFailure.
func IsHookFailure(err error) bool {
	var hf *HookFailure
	return errors.As(err, &hf)
}

// IsRunnerFailure reports whether err is or wraps a RunnerFailure.
func IsRunnerFailure(err error) bool {
	var rf *RunnerFailure
	return errors.As(err, &rf)
}

func invalid(annotation, message string) *ValidationError {
	return &ValidationError{Annotation: annotation, Message: message}
}
