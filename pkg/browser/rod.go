package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/umputun/logincheck/pkg/login"
)

type rodEngine struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

func newRod(ctx context.Context, cfg Config) (*rodEngine, error) {
	l := launcher.New().Headless(cfg.Headless)
	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if cfg.SlowMo > 0 {
		b = b.SlowMotion(cfg.SlowMo)
	}
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	return &rodEngine{launcher: l, browser: b, timeout: cfg.ActionTimeout}, nil
}

func (e *rodEngine) Name() string { return EngineRod }

// Open creates an incognito browser context with a blank page.
// the context is not bound to ctx, Close must work after a case deadline.
func (e *rodEngine) Open(context.Context) (login.Session, error) {
	incognito, err := e.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}
	return &rodSession{browser: incognito, page: page, timeout: e.timeout}, nil
}

func (e *rodEngine) Close() error {
	err := e.browser.Close()
	e.launcher.Kill()
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

type rodSession struct {
	browser *rod.Browser // incognito context owning the page
	page    *rod.Page
	timeout time.Duration
}

// bound returns the page bound to ctx with the step timeout applied.
// release stops the timeout timer and must be called when the step is done.
func (s *rodSession) bound(ctx context.Context) (p *rod.Page, release func()) {
	p = s.page.Context(ctx).Timeout(stepTimeout(ctx, s.timeout))
	return p, func() { p.CancelTimeout() }
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p, release := s.bound(ctx)
	defer release()
	if err := p.Navigate(url); err != nil {
		return markTimeout(err, false)
	}
	return markTimeout(p.WaitLoad(), false)
}

func (s *rodSession) Fill(ctx context.Context, selector, value string) error {
	p, release := s.bound(ctx)
	defer release()
	el, err := p.Element(selector)
	if err != nil {
		return markTimeout(err, false)
	}
	return markTimeout(el.Input(value), false)
}

func (s *rodSession) Click(ctx context.Context, selector string) error {
	p, release := s.bound(ctx)
	defer release()
	el, err := p.Element(selector)
	if err != nil {
		return markTimeout(err, false)
	}
	return markTimeout(el.Click(proto.InputMouseButtonLeft, 1), false)
}

func (s *rodSession) WaitVisible(ctx context.Context, selector string) error {
	p, release := s.bound(ctx)
	defer release()
	el, err := p.Element(selector)
	if err != nil {
		return markTimeout(err, false)
	}
	return markTimeout(el.WaitVisible(), false)
}

func (s *rodSession) URL(ctx context.Context) (string, error) {
	p, release := s.bound(ctx)
	defer release()
	info, err := p.Info()
	if err != nil {
		return "", markTimeout(err, false)
	}
	return info.URL, nil
}

// IsVisible checks the current state without waiting for the element to appear.
func (s *rodSession) IsVisible(ctx context.Context, selector string) (bool, error) {
	p, release := s.bound(ctx)
	defer release()
	has, el, err := p.Has(selector)
	if err != nil || !has {
		return false, markTimeout(err, false)
	}
	visible, err := el.Visible()
	return visible, markTimeout(err, false)
}

func (s *rodSession) Text(ctx context.Context, selector string) (string, error) {
	p, release := s.bound(ctx)
	defer release()
	has, el, err := p.Has(selector)
	if err != nil {
		return "", markTimeout(err, false)
	}
	if !has {
		return "", errors.New("element not found: " + selector)
	}
	txt, err := el.Text()
	return txt, markTimeout(err, false)
}

func (s *rodSession) ClearState(ctx context.Context) error {
	p, release := s.bound(ctx)
	defer release()
	if err := (proto.NetworkClearBrowserCookies{}).Call(p); err != nil {
		return fmt.Errorf("clear cookies: %w", markTimeout(err, false))
	}
	if _, err := p.Eval(clearStorageJS); err != nil {
		return fmt.Errorf("clear storage: %w", markTimeout(err, false))
	}
	return nil
}

// Close disposes the incognito context together with its page.
func (s *rodSession) Close() error {
	return s.browser.Close()
}
