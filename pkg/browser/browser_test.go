package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/logincheck/pkg/login"
)

// every engine satisfies the same contracts
var (
	_ Engine        = (*pwEngine)(nil)
	_ Engine        = (*rodEngine)(nil)
	_ Engine        = (*cdpEngine)(nil)
	_ login.Session = (*pwSession)(nil)
	_ login.Session = (*rodSession)(nil)
	_ login.Session = (*cdpSession)(nil)
)

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: EnginePlaywright},
		{in: "playwright", want: EnginePlaywright},
		{in: " Rod ", want: EngineRod},
		{in: "CHROMEDP", want: EngineChromedp},
		{in: "selenium", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseEngine(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown browser engine")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNew_UnknownEngine(t *testing.T) {
	_, err := New(context.Background(), Config{Engine: "lynx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"lynx"`)
}

func TestStepTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, stepTimeout(context.Background(), 10*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got := stepTimeout(ctx, 10*time.Second)
	assert.LessOrEqual(t, got, time.Second, "deadline shortens the step")
	assert.Positive(t, got)

	assert.Equal(t, 5*time.Millisecond, stepTimeout(ctx, 5*time.Millisecond), "action timeout kept when shorter")

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	assert.Equal(t, time.Millisecond, stepTimeout(expired, time.Second), "never zero, zero means no limit to drivers")
}

func TestRodSession_Bound(t *testing.T) {
	s := &rodSession{page: &rod.Page{}, timeout: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, release := s.bound(ctx)
	dl, ok := p.GetContext().Deadline()
	require.True(t, ok, "step timeout applied")
	assert.WithinDuration(t, time.Now().Add(time.Minute), dl, 5*time.Second)
	require.NoError(t, p.GetContext().Err())

	release()
	require.ErrorIs(t, p.GetContext().Err(), context.Canceled, "release stops the step timer")
	require.NoError(t, ctx.Err(), "caller context untouched")
}

func TestMarkTimeout(t *testing.T) {
	plain := errors.New("element not interactable")

	assert.NoError(t, markTimeout(nil, true))
	assert.Equal(t, plain, markTimeout(plain, false))

	err := markTimeout(plain, true)
	require.ErrorIs(t, err, login.ErrTimeout)
	require.ErrorIs(t, err, plain)

	err = markTimeout(context.DeadlineExceeded, false)
	require.ErrorIs(t, err, login.ErrTimeout)

	already := errors.Join(login.ErrTimeout, plain)
	assert.Equal(t, already, markTimeout(already, true), "not wrapped twice")
}

func TestPwErr(t *testing.T) {
	assert.NoError(t, pwErr(nil))
	assert.ErrorIs(t, pwErr(playwright.ErrTimeout), login.ErrTimeout)
	assert.NotErrorIs(t, pwErr(errors.New("target closed")), login.ErrTimeout)
}

func TestJSString(t *testing.T) {
	assert.Equal(t, `"#user-name"`, jsString("#user-name"))
	assert.Equal(t, `"[data-test=\"error\"]"`, jsString(`[data-test="error"]`))
}
