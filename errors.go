package desim

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Engine and its specializations.
var (
	// ErrEngineAlreadyRunning is returned when Run is called on an engine that
	// is already inside its dispatch loop.
	ErrEngineAlreadyRunning = errors.New("desim: engine is already running")

	// ErrReentrantRun describes a Run call made from within a handler on the
	// dispatch loop. Engine.Run reports that case as ErrEngineAlreadyRunning;
	// no function in this package returns ErrReentrantRun.
	ErrReentrantRun = errors.New("desim: cannot call Run re-entrantly")

	// ErrEventNotFound is returned by Engine.RescheduleEvent and
	// Engine.CancelEvent when the given event is not present in the
	// future-event set. The engine also logs the condition as a warning.
	ErrEventNotFound = errors.New("desim: event not found in future-event set")
)

// InvalidArgumentError reports a caller-supplied value that is structurally
// invalid — a nil reference where a live object is required, or a numeric
// parameter outside its documented range. It is always a programming error:
// recoverable only by fixing the call site.
type InvalidArgumentError struct {
	// Subject names the parameter or object that was invalid.
	Subject string
	// Message is a human-readable description of the violation.
	Message string
	// Cause, if non-nil, is the underlying error being wrapped.
	Cause error
}

func (e *InvalidArgumentError) Error() string {
	if e.Subject == "" {
		return "desim: invalid argument: " + e.Message
	}
	return fmt.Sprintf("desim: invalid argument %q: %s", e.Subject, e.Message)
}

// Unwrap returns the wrapped cause, if any, for use with [errors.Is] and [errors.As].
func (e *InvalidArgumentError) Unwrap() error { return e.Cause }

// NewInvalidArgumentError builds an *InvalidArgumentError with no cause chain.
func NewInvalidArgumentError(subject, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Subject: subject, Message: message}
}

// LogicError reports a violation of a contract that the caller could only have
// discovered at runtime — rescheduling to a time beyond recovery, looking up a
// statistic category that was never registered, or resolving a node/class id
// that does not exist in the owning network.
type LogicError struct {
	Message string
	Cause   error
}

func (e *LogicError) Error() string {
	return "desim: logic error: " + e.Message
}

// Unwrap returns the wrapped cause, if any, for use with [errors.Is] and [errors.As].
func (e *LogicError) Unwrap() error { return e.Cause }

// NewLogicError builds a *LogicError with no cause chain.
func NewLogicError(message string) *LogicError {
	return &LogicError{Message: message}
}

// AbortedError reports that a sequential detector (transient-phase,
// batch-size, or num-replications) gave up after exceeding its configured
// sample budget without converging. It is a soft failure: the owning
// analyzable statistic disables itself and the rest of the simulation
// continues.
type AbortedError struct {
	// Detector names the detector kind that aborted (e.g. "transient",
	// "batch-size", "num-replications").
	Detector string
	// Message explains which budget was exceeded.
	Message string
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("desim: %s detector aborted: %s", e.Detector, e.Message)
}

// NewAbortedError builds an *AbortedError for the named detector.
func NewAbortedError(detector, message string) *AbortedError {
	return &AbortedError{Detector: detector, Message: message}
}

// WrapError wraps an error with a contextual message, preserving the cause
// chain for [errors.Is] / [errors.As].
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
