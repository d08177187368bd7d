package login

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout is wrapped by browser engines when a bounded wait elapses.
var ErrTimeout = errors.New("timed out")

// ErrUnrecognized is matched by a MismatchError whose observed state fits no outcome.
var ErrUnrecognized = errors.New("unrecognized page state")

// Step names the automation step an EnvironmentError happened in.
type Step string

// Step constants, in the order the verifier runs them.
const (
	StepOpen          Step = "open session"
	StepNavigate      Step = "navigate"
	StepReset         Step = "clear session state"
	StepFillUsername  Step = "fill username"
	StepFillPassword  Step = "fill password"
	StepSubmit        Step = "submit"
	StepObserve       Step = "wait for result"
	StepReadState     Step = "read page state"
	StepProbeElements Step = "probe login form"
)

// EnvironmentError reports that an automation step did not complete.
// it says nothing about whether the site under test is broken.
type EnvironmentError struct {
	Step Step
	Err  error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("environment failure at %s: %v", e.Step, e.Err)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// Timeout reports whether the step failed because its wait elapsed.
func (e *EnvironmentError) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout) || errors.Is(e.Err, context.DeadlineExceeded)
}

// MismatchError reports a completed classification that differs from the declared outcome,
// or a matching outcome whose error text lacks the expected message.
type MismatchError struct {
	Expected Outcome
	Observed Outcome
	Detail   string
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("assertion mismatch: expected %s, observed %s", e.Expected, e.Observed)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap exposes ErrUnrecognized for states the classifier could not place.
func (e *MismatchError) Unwrap() error {
	if e.Observed == OutcomeUnknown {
		return ErrUnrecognized
	}
	return nil
}

// IsEnvironment reports whether err is, or wraps, an EnvironmentError.
func IsEnvironment(err error) bool {
	var envErr *EnvironmentError
	return errors.As(err, &envErr)
}

// IsMismatch reports whether err is, or wraps, a MismatchError.
func IsMismatch(err error) bool {
	var mErr *MismatchError
	return errors.As(err, &mErr)
}
