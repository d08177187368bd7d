// Package notify sends login suite results to telegram, email, slack, webhooks or a custom script.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/umputun/logincheck/pkg/login"
	"github.com/umputun/logincheck/pkg/runner"
)

// Params configures a Service, see config.Config.NotifyParams.
type Params struct {
	Channels   []string
	OnError    bool
	OnComplete bool
	TimeoutMs  int

	TelegramToken string
	TelegramChat  string
	SlackToken    string
	SlackChannel  string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPStartTLS  bool
	EmailFrom     string
	EmailTo       []string
	WebhookURLs   []string
	CustomScript  string
}

const defaultTimeout = 10 * time.Second

// Service delivers a Result to every configured channel. a nil *Service is valid and sends nothing.
type Service struct {
	channels   []channel
	custom     *customChannel
	onError    bool
	onComplete bool
	timeout    time.Duration
	hostname   string
	log        logger
}

type logger interface {
	Print(format string, args ...any)
}

// Result is the notification payload, also the JSON the custom script reads.
type Result struct {
	Status    string   `json:"status"` // "success" or "failure"
	RunID     string   `json:"run_id"`
	Target    string   `json:"target"`
	Engine    string   `json:"engine"`
	CasesFile string   `json:"cases_file"`
	Revision  string   `json:"revision,omitempty"`
	Duration  string   `json:"duration"`
	Passed    int      `json:"passed"`
	Failed    int      `json:"failed"`
	Errored   int      `json:"errored"`
	Failures  []string `json:"failures,omitempty"` // "case[ #attempt]: reason" for every non-passing attempt
	Changes   []string `json:"changes,omitempty"`  // cases whose result differs from the previous run
	Error     string   `json:"error,omitempty"`    // set when the suite could not run at all
}

// FromSummary builds a Result from a finished run. the caller fills in the run environment.
func FromSummary(sum runner.Summary) Result {
	r := Result{
		Status:   "success",
		RunID:    sum.RunID,
		Duration: sum.Duration.Round(time.Millisecond).String(),
		Passed:   sum.Passed(),
		Failed:   sum.Failed(),
		Errored:  sum.Errored(),
	}
	if !sum.OK() {
		r.Status = "failure"
	}
	for _, c := range sum.Cases {
		for i, a := range c.Attempts {
			if a.Status == login.StatusPass {
				continue
			}
			name := c.Case.Name
			if len(c.Attempts) > 1 {
				name += fmt.Sprintf(" #%d", i+1)
			}
			r.Failures = append(r.Failures, fmt.Sprintf("%s: %s", name, a.Description()))
		}
	}
	return r
}

// New builds a Service for p.Channels. it returns nil, nil when no channel is configured.
// a misconfigured channel is an error, an unreachable one is logged and skipped.
func New(p Params, log logger) (*Service, error) {
	if len(p.Channels) == 0 {
		return nil, nil //nolint:nilnil // nil service is the "notifications off" value
	}

	svc := &Service{onError: p.OnError, onComplete: p.OnComplete, log: log,
		timeout: time.Duration(p.TimeoutMs) * time.Millisecond, hostname: "unknown"}
	if svc.timeout <= 0 {
		svc.timeout = defaultTimeout
	}
	if h, err := os.Hostname(); err == nil {
		svc.hostname = h
	}

	for _, raw := range p.Channels {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "custom" {
			if p.CustomScript == "" {
				return nil, errors.New("custom channel: notify_custom_script is required")
			}
			svc.custom = newCustomChannel(p.CustomScript)
			continue
		}

		build, ok := builders[name]
		if !ok {
			return nil, fmt.Errorf("unknown notification channel: %q", raw)
		}
		chs, err := build(p)
		var unavailable *unavailableError
		switch {
		case errors.As(err, &unavailable):
			log.Print("[WARN] %s channel disabled: %v", name, unavailable)
			continue
		case err != nil:
			return nil, fmt.Errorf("%s channel: %w", name, err)
		}
		svc.channels = append(svc.channels, chs...)
	}

	if len(svc.channels) == 0 && svc.custom == nil {
		log.Print("[WARN] all notification channels were disabled due to initialization errors")
	}
	return svc, nil
}

// Send delivers r if its status is enabled by on_error/on_complete.
// delivery is best-effort: failures are logged, never returned.
func (s *Service) Send(ctx context.Context, r Result) {
	if s == nil || !s.wants(r) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg := s.formatMessage(r)
	for _, ch := range s.channels {
		text := msg
		if ch.htmlEscape {
			text = html.EscapeString(msg)
		}
		if err := ch.notifier.Send(ctx, ch.dest, text); err != nil {
			s.log.Print("[WARN] notification failed for %s: %v", ch.notifier, err)
		}
	}

	if s.custom != nil {
		if err := s.custom.send(ctx, r); err != nil {
			s.log.Print("[WARN] custom notification failed: %v", err)
		}
	}
}

func (s *Service) wants(r Result) bool {
	if r.Status == "success" {
		return s.onComplete
	}
	return s.onError
}
