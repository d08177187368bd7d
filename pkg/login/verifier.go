package login

import (
	"context"
	"errors"
	"time"
)

// DefaultObserveTimeout bounds the wait for the post-submit page state.
const DefaultObserveTimeout = 5 * time.Second

// Config holds verifier configuration.
type Config struct {
	Target         Target
	ObserveTimeout time.Duration // wait for marker or error after submit, DefaultObserveTimeout if zero
}

// Verifier performs login attempts and checks their outcome.
// it is safe for concurrent use as long as the Opener is.
type Verifier struct {
	opener Opener
	cfg    Config
}

// NewVerifier creates a Verifier that opens one session per attempt.
func NewVerifier(opener Opener, cfg Config) *Verifier {
	if cfg.ObserveTimeout <= 0 {
		cfg.ObserveTimeout = DefaultObserveTimeout
	}
	return &Verifier{opener: opener, cfg: cfg}
}

// Verify runs one login attempt in a fresh session and compares the result with c.Expect.
// automation errors produce StatusError, a differing classification produces StatusFail.
// nothing is retried.
func (v *Verifier) Verify(ctx context.Context, c Case) Result {
	start := time.Now()
	res := Result{Case: c, Observed: OutcomeUnknown}

	state, err := v.attempt(ctx, c.Credentials)
	res.Duration = time.Since(start)
	if err != nil {
		res.Status = StatusError
		res.Err = err
		return res
	}

	res.State = state
	res.Observed, res.Err = v.cfg.Target.Compare(c, state)
	if res.Err != nil {
		res.Status = StatusFail
		return res
	}
	res.Status = StatusPass
	return res
}

// Probe checks that the login form is present: username, password and submit must be visible.
func (v *Verifier) Probe(ctx context.Context) error {
	sess, err := v.opener.Open(ctx)
	if err != nil {
		return &EnvironmentError{Step: StepOpen, Err: err}
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Navigate(ctx, v.cfg.Target.LoginURL); err != nil {
		return &EnvironmentError{Step: StepNavigate, Err: err}
	}

	sel := v.cfg.Target.Selectors
	waitCtx, cancel := context.WithTimeout(ctx, v.cfg.ObserveTimeout)
	defer cancel()
	for _, s := range []string{sel.Username, sel.Password, sel.Submit} {
		if err := sess.WaitVisible(waitCtx, s); err != nil {
			return &EnvironmentError{Step: StepProbeElements, Err: err}
		}
	}
	return nil
}

// attempt drives the login form and collects the resulting page state.
func (v *Verifier) attempt(ctx context.Context, cr Credentials) (Observed, error) {
	sess, err := v.opener.Open(ctx)
	if err != nil {
		return Observed{}, &EnvironmentError{Step: StepOpen, Err: err}
	}
	defer func() { _ = sess.Close() }()

	t := v.cfg.Target
	sel := t.Selectors

	if err := sess.Navigate(ctx, t.LoginURL); err != nil {
		return Observed{}, &EnvironmentError{Step: StepNavigate, Err: err}
	}
	if err := sess.ClearState(ctx); err != nil {
		return Observed{}, &EnvironmentError{Step: StepReset, Err: err}
	}

	// the form starts empty, so empty values are left unfilled
	if cr.Username != "" {
		if err := sess.Fill(ctx, sel.Username, cr.Username); err != nil {
			return Observed{}, &EnvironmentError{Step: StepFillUsername, Err: err}
		}
	}
	if cr.Password != "" {
		if err := sess.Fill(ctx, sel.Password, cr.Password); err != nil {
			return Observed{}, &EnvironmentError{Step: StepFillPassword, Err: err}
		}
	}
	if err := sess.Click(ctx, sel.Submit); err != nil {
		return Observed{}, &EnvironmentError{Step: StepSubmit, Err: err}
	}

	// settle on whichever result element shows up first
	waitCtx, cancel := context.WithTimeout(ctx, v.cfg.ObserveTimeout)
	defer cancel()
	if err := sess.WaitVisible(waitCtx, sel.Marker+", "+sel.Error); err != nil {
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			err = errors.Join(ErrTimeout, err)
		}
		return Observed{}, &EnvironmentError{Step: StepObserve, Err: err}
	}

	return readState(ctx, sess, sel)
}

func readState(ctx context.Context, sess Session, sel Selectors) (Observed, error) {
	var (
		obs Observed
		err error
	)
	if obs.URL, err = sess.URL(ctx); err != nil {
		return Observed{}, &EnvironmentError{Step: StepReadState, Err: err}
	}
	if obs.MarkerVisible, err = sess.IsVisible(ctx, sel.Marker); err != nil {
		return Observed{}, &EnvironmentError{Step: StepReadState, Err: err}
	}
	if obs.ErrorVisible, err = sess.IsVisible(ctx, sel.Error); err != nil {
		return Observed{}, &EnvironmentError{Step: StepReadState, Err: err}
	}
	if obs.ErrorVisible {
		if obs.ErrorText, err = sess.Text(ctx, sel.Error); err != nil {
			return Observed{}, &EnvironmentError{Step: StepReadState, Err: err}
		}
	}
	return obs, nil
}
