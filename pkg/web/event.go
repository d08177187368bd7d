// Package web serves a live dashboard of a running login suite over SSE.
package web

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/umputun/logincheck/pkg/login"
	"github.com/umputun/logincheck/pkg/runner"
)

// EventType represents the type of event being streamed.
type EventType string

// event type constants, also used as SSE event names.
const (
	EventTypeRunStarted   EventType = "run_started"
	EventTypeCaseStarted  EventType = "case_started"
	EventTypeCaseFinished EventType = "case_finished"
	EventTypeRunFinished  EventType = "run_finished"
)

// Event represents a single event to be streamed to web clients.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Case      string    `json:"case,omitempty"`
	Attempt   int       `json:"attempt,omitempty"`
	Expect    string    `json:"expect,omitempty"`
	Observed  string    `json:"observed,omitempty"`
	Status    string    `json:"status,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	Total     int       `json:"total,omitempty"`
	Counts    *Counts   `json:"counts,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Counts summarizes a finished run.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Flaky   int `json:"flaky"`
}

// NewRunStartedEvent marks the beginning of a run of total attempts.
func NewRunStartedEvent(total int) Event {
	return Event{Type: EventTypeRunStarted, Total: total, Timestamp: time.Now()}
}

// NewCaseStartedEvent is sent when an attempt begins.
func NewCaseStartedEvent(c login.Case, attempt int) Event {
	return Event{
		Type:      EventTypeCaseStarted,
		Case:      c.Name,
		Attempt:   attempt,
		Expect:    c.Expect.String(),
		Timestamp: time.Now(),
	}
}

// NewCaseFinishedEvent carries the verdict of one attempt.
func NewCaseFinishedEvent(res login.Result, attempt int) Event {
	return Event{
		Type:      EventTypeCaseFinished,
		Case:      res.Case.Name,
		Attempt:   attempt,
		Expect:    res.Case.Expect.String(),
		Observed:  res.Observed.String(),
		Status:    string(res.Status),
		Detail:    res.Description(),
		Duration:  res.Duration.Round(time.Millisecond).String(),
		Timestamp: time.Now(),
	}
}

// NewRunFinishedEvent summarizes the run.
func NewRunFinishedEvent(sum runner.Summary) Event {
	st := login.StatusPass
	if !sum.OK() {
		st = login.StatusFail
	}
	return Event{
		Type:     EventTypeRunFinished,
		RunID:    sum.RunID,
		Status:   string(st),
		Duration: sum.Duration.Round(time.Millisecond).String(),
		Total:    len(sum.Cases),
		Counts: &Counts{Passed: sum.Passed(), Failed: sum.Failed(), Errored: sum.Errored(),
			Flaky: len(sum.Flaky())},
		Timestamp: time.Now(),
	}
}

// JSON returns the event as JSON bytes for SSE streaming.
func (e Event) JSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}
