package login

import (
	"fmt"
	"net/url"
	"strings"
)

// error text fragments shown by the login form, checked in this order.
const (
	textLockedOut        = "locked out"
	textUsernameRequired = "Username is required"
	textPasswordRequired = "Password is required"
	textMismatch         = "do not match"
)

// Classify maps an observed page state to an Outcome. first match wins:
// authenticated view with marker, then the error text fragments in precedence order.
// returns OutcomeUnknown when nothing matches.
func (t Target) Classify(o Observed) Outcome {
	if o.MarkerVisible && sameURL(o.URL, t.AuthenticatedURL) {
		return OutcomeSuccess
	}
	if !o.ErrorVisible {
		return OutcomeUnknown
	}
	switch {
	case strings.Contains(o.ErrorText, textLockedOut):
		return OutcomeLockedOut
	case strings.Contains(o.ErrorText, textUsernameRequired):
		return OutcomeUsernameRequired
	case strings.Contains(o.ErrorText, textPasswordRequired):
		return OutcomePasswordRequired
	case strings.Contains(o.ErrorText, textMismatch):
		return OutcomeInvalidCredentials
	}
	return OutcomeUnknown
}

// Compare classifies o and checks it against the case declaration.
// returns the classified outcome and a *MismatchError when they disagree.
func (t Target) Compare(c Case, o Observed) (Outcome, error) {
	got := t.Classify(o)
	if got != c.Expect {
		return got, &MismatchError{Expected: c.Expect, Observed: got, Detail: describeState(o)}
	}
	if c.Message != "" && !strings.Contains(o.ErrorText, c.Message) {
		return got, &MismatchError{
			Expected: c.Expect,
			Observed: got,
			Detail:   fmt.Sprintf("error text %q does not contain %q", o.ErrorText, c.Message),
		}
	}
	return got, nil
}

// describeState summarizes an observed state for mismatch diagnostics.
func describeState(o Observed) string {
	if o.ErrorVisible && o.ErrorText != "" {
		return fmt.Sprintf("url %s, error %q", o.URL, o.ErrorText)
	}
	return fmt.Sprintf("url %s, marker visible %v", o.URL, o.MarkerVisible)
}

// sameURL compares two URLs ignoring query, fragment and a trailing slash.
func sameURL(a, b string) bool {
	return normalizeURL(a) == normalizeURL(b)
}

func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimRight(raw, "/")
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)
	return strings.TrimRight(u.String(), "/")
}
