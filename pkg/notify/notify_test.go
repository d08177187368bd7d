package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	ntfy "github.com/go-pkgz/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/logincheck/pkg/login"
	"github.com/umputun/logincheck/pkg/runner"
)

// mockNotifier implements ntfy.Notifier for testing.
type mockNotifier struct {
	schema string
	mu     sync.Mutex
	calls  []sendCall
	err    error
}

type sendCall struct {
	dest string
	text string
}

func (m *mockNotifier) Send(_ context.Context, dest, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sendCall{dest: dest, text: text})
	return m.err
}

func (m *mockNotifier) Schema() string { return m.schema }
func (m *mockNotifier) String() string { return "mock-" + m.schema }

func (m *mockNotifier) getCalls() []sendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]sendCall, len(m.calls))
	copy(res, m.calls)
	return res
}

// mockLogger captures log output for testing.
type mockLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *mockLogger) Print(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
}

func (l *mockLogger) getMsgs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]string, len(l.msgs))
	copy(res, l.msgs)
	return res
}

func TestNew(t *testing.T) {
	t.Run("empty channels returns nil", func(t *testing.T) {
		svc, err := New(Params{}, &mockLogger{})
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	invalid := []struct {
		name    string
		params  Params
		wantErr string
	}{
		{name: "unknown channel", params: Params{Channels: []string{"pager"}}, wantErr: "unknown notification channel"},
		{name: "webhook without urls", params: Params{Channels: []string{"webhook"}}, wantErr: "notify_webhook_urls is required"},
		{name: "email without host", params: Params{Channels: []string{"email"}}, wantErr: "notify_smtp_host is required"},
		{name: "email without from", params: Params{Channels: []string{"email"}, SMTPHost: "smtp.example.com"},
			wantErr: "notify_email_from is required"},
		{name: "email without to", params: Params{Channels: []string{"email"}, SMTPHost: "smtp.example.com", EmailFrom: "qa@example.com"},
			wantErr: "notify_email_to is required"},
		{name: "slack without token", params: Params{Channels: []string{"slack"}}, wantErr: "notify_slack_token is required"},
		{name: "slack without channel", params: Params{Channels: []string{"slack"}, SlackToken: "xoxb-token"},
			wantErr: "notify_slack_channel is required"},
		{name: "telegram without token", params: Params{Channels: []string{"telegram"}}, wantErr: "notify_telegram_token is required"},
		{name: "telegram without chat", params: Params{Channels: []string{"telegram"}, TelegramToken: "bot-token"},
			wantErr: "notify_telegram_chat is required"},
		{name: "custom without script", params: Params{Channels: []string{"custom"}}, wantErr: "notify_custom_script is required"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.params, &mockLogger{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	t.Run("valid channels", func(t *testing.T) {
		svc, err := New(Params{
			Channels:     []string{"webhook", " Email ", "slack", "custom"},
			OnError:      true,
			WebhookURLs:  []string{"https://a.example.com", "https://b.example.com"},
			SMTPHost:     "smtp.example.com",
			SMTPPort:     587,
			EmailFrom:    "qa@example.com",
			EmailTo:      []string{"team@example.com"},
			SlackToken:   "xoxb-token",
			SlackChannel: "qa",
			CustomScript: "/usr/local/bin/notify.sh",
		}, &mockLogger{})
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.Len(t, svc.channels, 4, "two webhooks, email and slack")
		assert.NotNil(t, svc.custom)
		assert.True(t, svc.onError)
		assert.False(t, svc.onComplete)
		assert.Equal(t, 10*time.Second, svc.timeout, "default timeout")
	})

	t.Run("custom timeout", func(t *testing.T) {
		svc, err := New(Params{Channels: []string{"webhook"}, WebhookURLs: []string{"https://example.com"}, TimeoutMs: 2500},
			&mockLogger{})
		require.NoError(t, err)
		assert.Equal(t, 2500*time.Millisecond, svc.timeout)
	})

	t.Run("telegram api failure skips channel with redacted token", func(t *testing.T) {
		orig := telegramConnect
		telegramConnect = func(token string) (ntfy.Notifier, error) {
			return nil, fmt.Errorf("request to https://api.telegram.org/bot%s/getMe failed", token)
		}
		t.Cleanup(func() { telegramConnect = orig })

		log := &mockLogger{}
		svc, err := New(Params{Channels: []string{"telegram"}, TelegramToken: "123456:ABC-secret", TelegramChat: "-100"}, log)
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.Empty(t, svc.channels)

		msgs := log.getMsgs()
		require.Len(t, msgs, 2)
		assert.Contains(t, msgs[0], "[WARN] telegram channel disabled")
		assert.Contains(t, msgs[0], "[REDACTED]")
		assert.NotContains(t, msgs[0], "123456:ABC-secret")
		assert.Contains(t, msgs[1], "all notification channels were disabled")
	})
}

func TestFromSummary(t *testing.T) {
	pass := login.Case{Name: "standard user", Expect: login.OutcomeSuccess}
	locked := login.Case{Name: "locked out user", Expect: login.OutcomeLockedOut}

	t.Run("all passed", func(t *testing.T) {
		sum := runner.Summary{RunID: "r1", Duration: 1234567 * time.Microsecond, Cases: []runner.CaseResult{
			{Case: pass, Attempts: []login.Result{{Case: pass, Status: login.StatusPass, Observed: login.OutcomeSuccess}}},
		}}
		r := FromSummary(sum)
		assert.Equal(t, "success", r.Status)
		assert.Equal(t, "r1", r.RunID)
		assert.Equal(t, "1.235s", r.Duration)
		assert.Equal(t, 1, r.Passed)
		assert.Empty(t, r.Failures)
	})

	t.Run("mismatch and environment failure", func(t *testing.T) {
		sum := runner.Summary{Cases: []runner.CaseResult{
			{Case: pass, Attempts: []login.Result{{Case: pass, Status: login.StatusError,
				Err: &login.EnvironmentError{Step: login.StepNavigate, Err: login.ErrTimeout}}}},
			{Case: locked, Attempts: []login.Result{{Case: locked, Status: login.StatusFail, Observed: login.OutcomeSuccess,
				Err: &login.MismatchError{Expected: login.OutcomeLockedOut, Observed: login.OutcomeSuccess}}}},
		}}
		r := FromSummary(sum)
		assert.Equal(t, "failure", r.Status)
		assert.Equal(t, 1, r.Failed)
		assert.Equal(t, 1, r.Errored)
		assert.Equal(t, []string{
			"standard user: environment failure at navigate: timed out",
			"locked out user: assertion mismatch: expected locked-out, observed success",
		}, r.Failures)
	})

	t.Run("every failed attempt of a repeated case", func(t *testing.T) {
		sum := runner.Summary{Cases: []runner.CaseResult{{Case: pass, Attempts: []login.Result{
			{Case: pass, Status: login.StatusFail, Observed: login.OutcomeLockedOut,
				Err: &login.MismatchError{Expected: login.OutcomeSuccess, Observed: login.OutcomeLockedOut}},
			{Case: pass, Status: login.StatusPass, Observed: login.OutcomeSuccess},
			{Case: pass, Status: login.StatusError, Err: &login.EnvironmentError{Step: login.StepNavigate, Err: login.ErrTimeout}},
		}}}}
		r := FromSummary(sum)
		assert.Equal(t, 1, r.Errored)
		assert.Equal(t, []string{
			"standard user #1: assertion mismatch: expected success, observed locked-out",
			"standard user #3: environment failure at navigate: timed out",
		}, r.Failures)
	})
}

func TestService_Send(t *testing.T) {
	newService := func(onComplete, onError bool, chs ...channel) (*Service, *mockLogger) {
		log := &mockLogger{}
		return &Service{channels: chs, onComplete: onComplete, onError: onError, timeout: 5 * time.Second,
			hostname: "ci-runner", log: log}, log
	}

	t.Run("nil receiver is no-op", func(t *testing.T) {
		var svc *Service
		svc.Send(context.Background(), Result{Status: "success"})
	})

	filters := []struct {
		name       string
		status     string
		onComplete bool
		onError    bool
		wantSent   bool
	}{
		{name: "success with on_complete", status: "success", onComplete: true, wantSent: true},
		{name: "success without on_complete", status: "success", onError: true},
		{name: "failure with on_error", status: "failure", onError: true, wantSent: true},
		{name: "failure without on_error", status: "failure", onComplete: true},
	}
	for _, tc := range filters {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockNotifier{schema: "http"}
			svc, _ := newService(tc.onComplete, tc.onError, channel{notifier: mock, dest: "https://example.com/hook"})
			svc.Send(context.Background(), Result{Status: tc.status})
			if !tc.wantSent {
				assert.Empty(t, mock.getCalls())
				return
			}
			calls := mock.getCalls()
			require.Len(t, calls, 1)
			assert.Equal(t, "https://example.com/hook", calls[0].dest)
			word := map[string]string{"success": "passed", "failure": "failed"}[tc.status]
			assert.Contains(t, calls[0].text, "logincheck "+word+" on ci-runner")
		})
	}

	t.Run("notifier errors are logged not returned", func(t *testing.T) {
		bad := &mockNotifier{schema: "http", err: errors.New("network error")}
		good := &mockNotifier{schema: "slack"}
		svc, log := newService(true, true, channel{notifier: bad, dest: "https://example.com"}, channel{notifier: good, dest: "slack:qa"})
		svc.Send(context.Background(), Result{Status: "success"})

		assert.Len(t, good.getCalls(), 1, "other channels still notified")
		msgs := log.getMsgs()
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0], "notification failed for mock-http: network error")
	})

	t.Run("html entities escaped for telegram channel", func(t *testing.T) {
		tg := &mockNotifier{schema: "telegram"}
		plain := &mockNotifier{schema: "http"}
		svc, _ := newService(false, true,
			channel{notifier: tg, dest: "telegram:-100?parseMode=HTML", htmlEscape: true},
			channel{notifier: plain, dest: "https://example.com/hook"})
		svc.Send(context.Background(), Result{Status: "failure", Failures: []string{"odd <case>: observed a&b"}})

		require.Len(t, tg.getCalls(), 1)
		assert.Contains(t, tg.getCalls()[0].text, "odd &lt;case&gt;: observed a&amp;b")
		require.Len(t, plain.getCalls(), 1)
		assert.Contains(t, plain.getCalls()[0].text, "odd <case>: observed a&b")
	})
}

func TestService_FormatMessage(t *testing.T) {
	svc := &Service{hostname: "ci-runner"}

	t.Run("passed suite", func(t *testing.T) {
		msg := svc.formatMessage(Result{
			Status:    "success",
			Target:    "https://www.saucedemo.com/",
			Engine:    "rod",
			CasesFile: "cases.yml",
			Revision:  "master@1a2b3c4",
			Duration:  "8.1s",
			Passed:    10,
		})
		want := "logincheck passed on ci-runner\n\n" +
			"target:   https://www.saucedemo.com/\n" +
			"engine:   rod\n" +
			"cases:    cases.yml\n" +
			"revision: master@1a2b3c4\n" +
			"duration: 8.1s\n" +
			"results:  10 passed, 0 failed, 0 errors\n"
		assert.Equal(t, want, msg)
	})

	t.Run("failed suite lists failures and changes", func(t *testing.T) {
		msg := svc.formatMessage(Result{
			Status:   "failure",
			Passed:   8,
			Failed:   1,
			Errored:  1,
			Failures: []string{"locked out user: assertion mismatch", "standard user: environment failure at navigate"},
			Changes:  []string{"locked out user: locked-out (pass) -> success (fail)"},
		})
		assert.Contains(t, msg, "logincheck failed on ci-runner")
		assert.Contains(t, msg, "results:  8 passed, 1 failed, 1 errors")
		assert.Contains(t, msg, "\nfailures:\n  - locked out user: assertion mismatch\n  - standard user: environment failure at navigate\n")
		assert.Contains(t, msg, "\nchanged since last run:\n  - locked out user: locked-out (pass) -> success (fail)\n")
		assert.NotContains(t, msg, "target:")
	})

	t.Run("suite that could not run", func(t *testing.T) {
		msg := svc.formatMessage(Result{Status: "failure", Error: "launch browser: executable not found"})
		assert.Contains(t, msg, "error:    launch browser: executable not found")
		assert.NotContains(t, msg, "results:")
	})

	t.Run("long failure list is capped", func(t *testing.T) {
		var failures []string
		for i := range 13 {
			failures = append(failures, fmt.Sprintf("case %d: failed", i))
		}
		msg := svc.formatMessage(Result{Status: "failure", Failures: failures})
		assert.Contains(t, msg, "case 9: failed")
		assert.NotContains(t, msg, "case 10: failed")
		assert.Contains(t, msg, "... and 3 more")
		assert.Equal(t, maxListed+1, strings.Count(msg, "\n  "))
	})
}
