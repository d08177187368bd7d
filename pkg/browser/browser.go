// Package browser provides login.Session implementations over real browsers.
// three engines are supported: playwright (default), rod and chromedp. every engine
// launches one browser and gives each session its own incognito context, so
// cookies and storage never leak between login attempts.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/logincheck/pkg/login"
)

// engine names
const (
	EnginePlaywright = "playwright"
	EngineRod        = "rod"
	EngineChromedp   = "chromedp"
)

// Engines lists supported engine names.
var Engines = []string{EnginePlaywright, EngineRod, EngineChromedp}

// DefaultActionTimeout bounds a single browser step when Config.ActionTimeout is zero.
const DefaultActionTimeout = 10 * time.Second

// Engine is a launched browser able to open isolated sessions.
type Engine interface {
	login.Opener
	Name() string
	Close() error
}

// Config holds browser launch settings.
type Config struct {
	Engine        string
	Headless      bool
	SlowMo        time.Duration // delay between actions, for watching a headed run
	ActionTimeout time.Duration // upper bound for one step (navigate, fill, click, wait)
	Install       bool          // download playwright driver and chromium before launch
}

// New launches the configured engine.
func New(ctx context.Context, cfg Config) (Engine, error) {
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = DefaultActionTimeout
	}
	name, err := ParseEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	switch name {
	case EngineRod:
		return newRod(ctx, cfg)
	case EngineChromedp:
		return newChromedp(ctx, cfg)
	default:
		return newPlaywright(cfg)
	}
}

// ParseEngine normalizes an engine name. empty means playwright.
func ParseEngine(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return EnginePlaywright, nil
	}
	for _, e := range Engines {
		if e == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown browser engine %q, want one of %s", name, strings.Join(Engines, ", "))
}

// stepTimeout returns the wait budget for one step: the action timeout, shortened
// to the context deadline if that comes first.
func stepTimeout(ctx context.Context, action time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < action {
			return max(left, time.Millisecond)
		}
	}
	return action
}

// markTimeout joins login.ErrTimeout to engine errors caused by an elapsed wait.
func markTimeout(err error, isTimeout bool) error {
	if err == nil || errors.Is(err, login.ErrTimeout) {
		return err
	}
	if isTimeout || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(login.ErrTimeout, err)
	}
	return err
}

// clearStorageJS wipes web storage of the current origin.
const clearStorageJS = `() => { try { localStorage.clear(); sessionStorage.clear(); } catch (e) {} return true; }`
