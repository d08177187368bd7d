// Package runner executes a table of login cases against a verifier.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/logincheck/pkg/login"
)

// Verifier checks a single case. *login.Verifier implements it.
type Verifier interface {
	Verify(ctx context.Context, c login.Case) login.Result
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, c login.Case) login.Result

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, c login.Case) login.Result { return f(ctx, c) }

// Listener gets notified about attempts as they start and finish.
// calls come from worker goroutines, implementations must be safe for concurrent use.
type Listener interface {
	CaseStarted(c login.Case, attempt int)
	CaseFinished(res login.Result, attempt int)
}

// Listeners fans out notifications to every listener in order.
type Listeners []Listener

// CaseStarted notifies all listeners.
func (ls Listeners) CaseStarted(c login.Case, attempt int) {
	for _, l := range ls {
		l.CaseStarted(c, attempt)
	}
}

// CaseFinished notifies all listeners.
func (ls Listeners) CaseFinished(res login.Result, attempt int) {
	for _, l := range ls {
		l.CaseFinished(res, attempt)
	}
}

// Config holds runner configuration.
type Config struct {
	Parallel    int           // max concurrent attempts, 1 runs sequentially
	Repeat      int           // attempts per case, differing outcomes mark the case flaky
	CaseTimeout time.Duration // budget for one attempt, zero means no limit
}

// Runner executes cases concurrently, each attempt in its own session.
type Runner struct {
	cfg      Config
	verifier Verifier
	listener Listener
}

// New creates a Runner. listener may be nil.
func New(cfg Config, v Verifier, listener Listener) *Runner {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.Repeat < 1 {
		cfg.Repeat = 1
	}
	if listener == nil {
		listener = Listeners{}
	}
	return &Runner{cfg: cfg, verifier: v, listener: listener}
}

// Run executes every case Repeat times and returns results in table order.
// a failing case never stops the others. once ctx is done, attempts not yet
// started are reported as environment failures without touching the browser.
func (r *Runner) Run(ctx context.Context, cases []login.Case) Summary {
	sum := Summary{RunID: uuid.NewString(), Started: time.Now(), Cases: make([]CaseResult, len(cases))}

	var g errgroup.Group // not WithContext, one failure must not cancel the rest
	g.SetLimit(r.cfg.Parallel)
	for i, c := range cases {
		sum.Cases[i] = CaseResult{Case: c, Attempts: make([]login.Result, r.cfg.Repeat)}
		for a := range r.cfg.Repeat {
			g.Go(func() error {
				sum.Cases[i].Attempts[a] = r.attempt(ctx, c, a+1)
				return nil
			})
		}
	}
	_ = g.Wait()

	sum.Duration = time.Since(sum.Started)
	return sum
}

func (r *Runner) attempt(ctx context.Context, c login.Case, attempt int) login.Result {
	r.listener.CaseStarted(c, attempt)

	if err := ctx.Err(); err != nil {
		res := login.Result{Case: c, Observed: login.OutcomeUnknown, Status: login.StatusError,
			Err: &login.EnvironmentError{Step: login.StepOpen, Err: err}}
		r.listener.CaseFinished(res, attempt)
		return res
	}

	caseCtx := ctx
	if r.cfg.CaseTimeout > 0 {
		var cancel context.CancelFunc
		caseCtx, cancel = context.WithTimeout(ctx, r.cfg.CaseTimeout)
		defer cancel()
	}

	res := r.verifier.Verify(caseCtx, c)

	// an attempt cut by the case budget is a timeout whatever the engine said
	var envErr *login.EnvironmentError
	if errors.Is(caseCtx.Err(), context.DeadlineExceeded) && errors.As(res.Err, &envErr) && !envErr.Timeout() {
		envErr.Err = errors.Join(login.ErrTimeout, envErr.Err)
	}

	r.listener.CaseFinished(res, attempt)
	return res
}
