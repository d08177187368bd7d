package runner

import (
	"time"

	"github.com/umputun/logincheck/pkg/login"
)

// CaseResult holds all attempts of one case.
type CaseResult struct {
	Case     login.Case
	Attempts []login.Result
}

// Status is the case verdict: pass when every attempt passed, error when any
// attempt could not observe the site, fail otherwise.
func (c CaseResult) Status() login.Status {
	st := login.StatusPass
	for _, a := range c.Attempts {
		switch a.Status {
		case login.StatusError:
			return login.StatusError
		case login.StatusFail:
			st = login.StatusFail
		}
	}
	return st
}

// Result returns the representative attempt: the first one carrying the case status.
func (c CaseResult) Result() login.Result {
	st := c.Status()
	for _, a := range c.Attempts {
		if a.Status == st {
			return a
		}
	}
	return login.Result{Case: c.Case, Status: st}
}

// Observed lists distinct classifications across attempts, in first-seen order.
// environment failures observe nothing and are skipped.
func (c CaseResult) Observed() []login.Outcome {
	var res []login.Outcome
	seen := map[login.Outcome]bool{}
	for _, a := range c.Attempts {
		if a.Status == login.StatusError || seen[a.Observed] {
			continue
		}
		seen[a.Observed] = true
		res = append(res, a.Observed)
	}
	return res
}

// Flaky reports whether repeated attempts classified the same case differently.
func (c CaseResult) Flaky() bool {
	return len(c.Observed()) > 1
}

// Summary is the outcome of a suite run.
type Summary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Cases    []CaseResult
}

// Passed returns the number of passed cases.
func (s Summary) Passed() int { return s.count(login.StatusPass) }

// Failed returns the number of cases with an assertion mismatch.
func (s Summary) Failed() int { return s.count(login.StatusFail) }

// Errored returns the number of cases hit by an environment failure.
func (s Summary) Errored() int { return s.count(login.StatusError) }

// OK is true when every case passed.
func (s Summary) OK() bool {
	return s.Passed() == len(s.Cases)
}

// Flaky returns cases with differing classifications across attempts.
func (s Summary) Flaky() []CaseResult {
	var res []CaseResult
	for _, c := range s.Cases {
		if c.Flaky() {
			res = append(res, c)
		}
	}
	return res
}

// Results returns the representative result of every case, in table order.
func (s Summary) Results() []login.Result {
	res := make([]login.Result, 0, len(s.Cases))
	for _, c := range s.Cases {
		res = append(res, c.Result())
	}
	return res
}

func (s Summary) count(st login.Status) int {
	n := 0
	for _, c := range s.Cases {
		if c.Status() == st {
			n++
		}
	}
	return n
}
