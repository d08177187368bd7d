package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/umputun/logincheck/pkg/login"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder is a Listener collecting notifications.
type recorder struct {
	mu       sync.Mutex
	started  []string
	finished []login.Result
}

func (r *recorder) CaseStarted(c login.Case, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, c.Name)
}

func (r *recorder) CaseFinished(res login.Result, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, res)
}

func passing(_ context.Context, c login.Case) login.Result {
	return login.Result{Case: c, Observed: c.Expect, Status: login.StatusPass}
}

func testCases() []login.Case {
	return []login.Case{
		{Name: "standard user", Expect: login.OutcomeSuccess},
		{Name: "locked out user", Expect: login.OutcomeLockedOut},
		{Name: "no credentials", Expect: login.OutcomeUsernameRequired},
		{Name: "username only", Expect: login.OutcomePasswordRequired},
	}
}

func TestRunner_Run_AllPass(t *testing.T) {
	rec := &recorder{}
	r := New(Config{Parallel: 2}, VerifierFunc(passing), rec)

	sum := r.Run(context.Background(), testCases())
	assert.NotEmpty(t, sum.RunID)
	assert.False(t, sum.Started.IsZero())
	require.Len(t, sum.Cases, 4)
	assert.Equal(t, 4, sum.Passed())
	assert.Zero(t, sum.Failed())
	assert.Zero(t, sum.Errored())
	assert.True(t, sum.OK())
	assert.Len(t, rec.started, 4)
	assert.Len(t, rec.finished, 4)

	for i, c := range testCases() {
		assert.Equal(t, c.Name, sum.Cases[i].Case.Name, "table order kept")
	}
}

func TestRunner_Run_FailuresDoNotStopOthers(t *testing.T) {
	v := VerifierFunc(func(ctx context.Context, c login.Case) login.Result {
		switch c.Name {
		case "locked out user":
			return login.Result{Case: c, Observed: login.OutcomeSuccess, Status: login.StatusFail,
				Err: &login.MismatchError{Expected: c.Expect, Observed: login.OutcomeSuccess}}
		case "no credentials":
			return login.Result{Case: c, Observed: login.OutcomeUnknown, Status: login.StatusError,
				Err: &login.EnvironmentError{Step: login.StepNavigate, Err: errors.New("dns")}}
		}
		return passing(ctx, c)
	})

	sum := New(Config{Parallel: 1}, v, nil).Run(context.Background(), testCases())
	assert.Equal(t, 2, sum.Passed())
	assert.Equal(t, 1, sum.Failed())
	assert.Equal(t, 1, sum.Errored())
	assert.False(t, sum.OK())

	results := sum.Results()
	require.Len(t, results, 4)
	assert.Equal(t, login.StatusFail, results[1].Status)
	assert.True(t, login.IsEnvironment(results[2].Err))
}

func TestRunner_Run_ParallelLimit(t *testing.T) {
	var cur, peak int32
	v := VerifierFunc(func(ctx context.Context, c login.Case) login.Result {
		n := atomic.AddInt32(&cur, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&cur, -1)
		return passing(ctx, c)
	})

	cases := append(testCases(), testCases()...)
	for i := range cases {
		cases[i].Name += string(rune('a' + i))
	}
	sum := New(Config{Parallel: 3}, v, nil).Run(context.Background(), cases)
	assert.Equal(t, 8, sum.Passed())
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(2), "cases ran concurrently")
}

func TestRunner_Run_CaseTimeout(t *testing.T) {
	v := VerifierFunc(func(ctx context.Context, c login.Case) login.Result {
		<-ctx.Done()
		return login.Result{Case: c, Status: login.StatusError,
			Err: &login.EnvironmentError{Step: login.StepFillUsername, Err: errors.New("element detached")}}
	})

	sum := New(Config{CaseTimeout: 20 * time.Millisecond}, v, nil).Run(context.Background(), testCases()[:1])
	res := sum.Cases[0].Result()
	assert.Equal(t, login.StatusError, res.Status)

	var envErr *login.EnvironmentError
	require.ErrorAs(t, res.Err, &envErr)
	assert.True(t, envErr.Timeout(), "case budget expiry is a timeout")
	assert.Contains(t, res.Err.Error(), "element detached")
}

func TestRunner_Run_CancelledContext(t *testing.T) {
	var calls int32
	v := VerifierFunc(func(ctx context.Context, c login.Case) login.Result {
		atomic.AddInt32(&calls, 1)
		return passing(ctx, c)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	sum := New(Config{}, v, rec).Run(ctx, testCases())
	assert.Zero(t, atomic.LoadInt32(&calls), "browser never touched")
	assert.Equal(t, 4, sum.Errored())
	assert.Len(t, rec.finished, 4)
	assert.ErrorIs(t, sum.Cases[0].Result().Err, context.Canceled)
}

func TestRunner_Run_RepeatFlaky(t *testing.T) {
	var n int32
	v := VerifierFunc(func(ctx context.Context, c login.Case) login.Result {
		if c.Name != "standard user" {
			return passing(ctx, c)
		}
		if atomic.AddInt32(&n, 1) == 2 {
			return login.Result{Case: c, Observed: login.OutcomeUnknown, Status: login.StatusFail,
				Err: &login.MismatchError{Expected: c.Expect, Observed: login.OutcomeUnknown}}
		}
		return passing(ctx, c)
	})

	rec := &recorder{}
	sum := New(Config{Parallel: 1, Repeat: 3}, v, rec).Run(context.Background(), testCases()[:2])
	require.Len(t, sum.Cases, 2)
	assert.Len(t, sum.Cases[0].Attempts, 3)
	assert.Len(t, rec.finished, 6)

	flaky := sum.Flaky()
	require.Len(t, flaky, 1)
	assert.Equal(t, "standard user", flaky[0].Case.Name)
	assert.Equal(t, []login.Outcome{login.OutcomeSuccess, login.OutcomeUnknown}, flaky[0].Observed())
	assert.Equal(t, login.StatusFail, flaky[0].Status())
	assert.Equal(t, login.StatusFail, flaky[0].Result().Status)
	assert.False(t, sum.OK())
}

func TestCaseResult_Status(t *testing.T) {
	pass := login.Result{Status: login.StatusPass, Observed: login.OutcomeSuccess}
	fail := login.Result{Status: login.StatusFail, Observed: login.OutcomeLockedOut}
	errd := login.Result{Status: login.StatusError}

	tests := []struct {
		name     string
		attempts []login.Result
		want     login.Status
		flaky    bool
	}{
		{name: "all pass", attempts: []login.Result{pass, pass}, want: login.StatusPass},
		{name: "one fail", attempts: []login.Result{pass, fail}, want: login.StatusFail, flaky: true},
		{name: "error wins", attempts: []login.Result{fail, errd}, want: login.StatusError},
		{name: "errors not flaky", attempts: []login.Result{pass, errd}, want: login.StatusError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cr := CaseResult{Attempts: tc.attempts}
			assert.Equal(t, tc.want, cr.Status())
			assert.Equal(t, tc.want, cr.Result().Status)
			assert.Equal(t, tc.flaky, cr.Flaky())
		})
	}
}

func TestListeners(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	ls := Listeners{a, b}
	ls.CaseStarted(login.Case{Name: "x"}, 1)
	ls.CaseFinished(login.Result{Case: login.Case{Name: "x"}}, 1)
	assert.Equal(t, []string{"x"}, a.started)
	assert.Equal(t, []string{"x"}, b.started)
	assert.Len(t, b.finished, 1)
}
