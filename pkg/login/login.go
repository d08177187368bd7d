// Package login verifies the outcome of a login attempt against a web login form.
// it splits the work into a pure classifier (Observed -> Outcome) and a driver that
// performs the attempt through an abstract browser Session.
package login

import (
	"context"
	"fmt"
	"strings"
	"time"
)

//go:generate moq -out mocks/session.go -pkg mocks -skip-ensure -fmt goimports . Session

// Outcome is the classification of a login attempt.
type Outcome string

// Outcome constants. OutcomeUnknown is never a valid expectation, it marks an unrecognized page state.
const (
	OutcomeUnknown            Outcome = "unknown"
	OutcomeSuccess            Outcome = "success"
	OutcomeLockedOut          Outcome = "locked-out"
	OutcomeUsernameRequired   Outcome = "username-required"
	OutcomePasswordRequired   Outcome = "password-required"
	OutcomeInvalidCredentials Outcome = "invalid-credentials"
)

// Outcomes lists every outcome a case may declare, in classification precedence order.
var Outcomes = []Outcome{
	OutcomeSuccess,
	OutcomeLockedOut,
	OutcomeUsernameRequired,
	OutcomePasswordRequired,
	OutcomeInvalidCredentials,
}

// ParseOutcome converts a name like "locked-out" to an Outcome.
// matching is case-insensitive and underscores are accepted in place of dashes.
func ParseOutcome(s string) (Outcome, error) {
	norm := Outcome(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	for _, o := range Outcomes {
		if o == norm {
			return o, nil
		}
	}
	return OutcomeUnknown, fmt.Errorf("unknown outcome %q", s)
}

// String returns the outcome name.
func (o Outcome) String() string {
	if o == "" {
		return string(OutcomeUnknown)
	}
	return string(o)
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, rejecting names outside of Outcomes.
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Credentials is a username/password pair. either field may be empty.
type Credentials struct {
	Username string
	Password string
}

// Case is one table entry: credentials plus the declared outcome.
type Case struct {
	Name        string
	Credentials Credentials
	Expect      Outcome
	Message     string // optional substring the error text must contain
}

// Observed holds the page facts used to classify an attempt.
type Observed struct {
	URL           string `json:"url"`
	MarkerVisible bool   `json:"marker_visible"`
	ErrorVisible  bool   `json:"error_visible"`
	ErrorText     string `json:"error_text,omitempty"`
}

// Selectors are the CSS selectors of the login form and its result elements.
type Selectors struct {
	Username string
	Password string
	Submit   string
	Marker   string // visible only on the authenticated view
	Error    string
}

// Target describes the site under test.
type Target struct {
	LoginURL         string
	AuthenticatedURL string
	Selectors        Selectors
}

// DefaultTarget returns the saucedemo login page and its selectors.
func DefaultTarget() Target {
	return Target{
		LoginURL:         "https://www.saucedemo.com/",
		AuthenticatedURL: "https://www.saucedemo.com/inventory.html",
		Selectors: Selectors{
			Username: "#user-name",
			Password: "#password",
			Submit:   "#login-button",
			Marker:   ".inventory_list",
			Error:    `[data-test="error"]`,
		},
	}
}

// Session is a single isolated browser context driven by the verifier.
// every blocking call fails with an error once its bounded wait elapses.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	WaitVisible(ctx context.Context, selector string) error
	URL(ctx context.Context) (string, error)
	IsVisible(ctx context.Context, selector string) (bool, error)
	Text(ctx context.Context, selector string) (string, error)
	ClearState(ctx context.Context) error
	Close() error
}

// Opener creates a fresh Session with its own cookies and storage.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context) (Session, error)

// Open calls f(ctx).
func (f OpenerFunc) Open(ctx context.Context) (Session, error) { return f(ctx) }

// Status is the verdict for a single case.
type Status string

// Status constants.
const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"  // observed outcome differs from the declared one
	StatusError Status = "error" // the harness could not observe the site
)

// Result is the outcome of verifying one Case.
type Result struct {
	Case     Case
	Observed Outcome
	State    Observed
	Status   Status
	Err      error
	Duration time.Duration
}

// Description returns a one-line human-readable verdict.
func (r Result) Description() string {
	switch r.Status {
	case StatusPass:
		return fmt.Sprintf("observed %s", r.Observed)
	case StatusFail, StatusError:
		if r.Err != nil {
			return r.Err.Error()
		}
	}
	return string(r.Status)
}
