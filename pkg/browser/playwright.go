package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/umputun/logincheck/pkg/login"
)

type pwEngine struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	timeout time.Duration
}

func newPlaywright(cfg Config) (*pwEngine, error) {
	if cfg.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("run playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(cfg.Headless)}
	if cfg.SlowMo > 0 {
		opts.SlowMo = playwright.Float(float64(cfg.SlowMo.Milliseconds()))
	}
	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &pwEngine{pw: pw, browser: browser, timeout: cfg.ActionTimeout}, nil
}

func (e *pwEngine) Name() string { return EnginePlaywright }

// Open creates a new browser context with a single page.
func (e *pwEngine) Open(context.Context) (login.Session, error) {
	bctx, err := e.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}
	return &pwSession{bctx: bctx, page: page, timeout: e.timeout}, nil
}

func (e *pwEngine) Close() error {
	var errs []error
	if err := e.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := e.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

// pwSession drives one page. playwright calls are not context-aware, so every
// wait gets an explicit timeout derived from ctx.
type pwSession struct {
	bctx    playwright.BrowserContext
	page    playwright.Page
	timeout time.Duration
}

func (s *pwSession) ms(ctx context.Context) *float64 {
	return playwright.Float(float64(stepTimeout(ctx, s.timeout).Milliseconds()))
}

func (s *pwSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return markTimeout(err, false)
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{Timeout: s.ms(ctx)})
	return pwErr(err)
}

func (s *pwSession) Fill(ctx context.Context, selector, value string) error {
	return pwErr(s.page.Locator(selector).First().Fill(value, playwright.LocatorFillOptions{Timeout: s.ms(ctx)}))
}

func (s *pwSession) Click(ctx context.Context, selector string) error {
	return pwErr(s.page.Locator(selector).First().Click(playwright.LocatorClickOptions{Timeout: s.ms(ctx)}))
}

func (s *pwSession) WaitVisible(ctx context.Context, selector string) error {
	err := s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: s.ms(ctx),
	})
	return pwErr(err)
}

func (s *pwSession) URL(context.Context) (string, error) {
	return s.page.URL(), nil
}

func (s *pwSession) IsVisible(_ context.Context, selector string) (bool, error) {
	visible, err := s.page.Locator(selector).First().IsVisible()
	return visible, pwErr(err)
}

func (s *pwSession) Text(ctx context.Context, selector string) (string, error) {
	txt, err := s.page.Locator(selector).First().TextContent(playwright.LocatorTextContentOptions{Timeout: s.ms(ctx)})
	return txt, pwErr(err)
}

// ClearState drops cookies of the context and storage of the current origin.
func (s *pwSession) ClearState(context.Context) error {
	if err := s.bctx.ClearCookies(); err != nil {
		return fmt.Errorf("clear cookies: %w", pwErr(err))
	}
	if _, err := s.page.Evaluate(clearStorageJS); err != nil {
		return fmt.Errorf("clear storage: %w", pwErr(err))
	}
	return nil
}

func (s *pwSession) Close() error {
	return s.bctx.Close()
}

func pwErr(err error) error {
	return markTimeout(err, errors.Is(err, playwright.ErrTimeout))
}
