package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/umputun/logincheck/pkg/login"
)

type cdpEngine struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
	slowMo        time.Duration
}

func newChromedp(_ context.Context, cfg Config) (*cdpEngine, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	// the allocator outlives any single request context, Close releases it
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return &cdpEngine{allocCancel: allocCancel, browserCtx: browserCtx, browserCancel: browserCancel,
		timeout: cfg.ActionTimeout, slowMo: cfg.SlowMo}, nil
}

func (e *cdpEngine) Name() string { return EngineChromedp }

// Open creates a tab in a new browser context.
// the first run allocates the target and must not use a derived timeout context, it would close the tab.
func (e *cdpEngine) Open(ctx context.Context) (login.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, cancel := chromedp.NewContext(e.browserCtx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("create tab: %w", err)
	}
	return &cdpSession{tabCtx: tabCtx, cancel: cancel, timeout: e.timeout, slowMo: e.slowMo}, nil
}

func (e *cdpEngine) Close() error {
	e.browserCancel()
	e.allocCancel()
	return nil
}

type cdpSession struct {
	tabCtx  context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	slowMo  time.Duration
}

// run executes actions on the tab, bounded by the step timeout and by ctx.
func (s *cdpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.tabCtx, stepTimeout(ctx, s.timeout))
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if s.slowMo > 0 && len(actions) > 0 {
		actions = append([]chromedp.Action{chromedp.Sleep(s.slowMo)}, actions...)
	}
	return markTimeout(chromedp.Run(runCtx, actions...), false)
}

func (s *cdpSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *cdpSession) Fill(ctx context.Context, selector, value string) error {
	return s.run(ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery))
}

func (s *cdpSession) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (s *cdpSession) WaitVisible(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *cdpSession) URL(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

// IsVisible evaluates visibility in the page, without waiting for the node.
func (s *cdpSession) IsVisible(ctx context.Context, selector string) (bool, error) {
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return false;
		const st = getComputedStyle(el);
		const r = el.getBoundingClientRect();
		return st.display !== 'none' && st.visibility !== 'hidden' && r.width > 0 && r.height > 0;
	})()`, jsString(selector))
	var visible bool
	err := s.run(ctx, chromedp.Evaluate(js, &visible))
	return visible, err
}

func (s *cdpSession) Text(ctx context.Context, selector string) (string, error) {
	js := fmt.Sprintf(`(() => { const el = document.querySelector(%s); return el ? el.textContent : ""; })()`, jsString(selector))
	var txt string
	err := s.run(ctx, chromedp.Evaluate(js, &txt))
	return txt, err
}

func (s *cdpSession) ClearState(ctx context.Context) error {
	var ok bool
	return s.run(ctx, network.ClearBrowserCookies(), chromedp.Evaluate("("+clearStorageJS+")()", &ok))
}

// Close cancels the tab context, which closes the target and disposes its browser context.
func (s *cdpSession) Close() error {
	s.cancel()
	return nil
}

func jsString(s string) string {
	b, _ := json.Marshal(s) //nolint:errchkjson // strings always marshal
	return string(b)
}
