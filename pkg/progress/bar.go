package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/umputun/logincheck/pkg/login"
)

// Bar shows suite progress as a single bar, used in quiet mode instead of per-case lines.
type Bar struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	passed int
	failed int
	errs   int
}

// NewBar creates a bar for total attempts writing to w (usually stderr).
func NewBar(total int, w io.Writer) *Bar {
	b := &Bar{}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(b.description()),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprint(w, "\n") }),
		progressbar.OptionSetRenderBlankState(true),
	)
	return b
}

// CaseStarted is a no-op, the bar only moves on completion.
func (b *Bar) CaseStarted(login.Case, int) {}

// CaseFinished advances the bar and updates the counters.
func (b *Bar) CaseFinished(res login.Result, _ int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch res.Status {
	case login.StatusPass:
		b.passed++
	case login.StatusFail:
		b.failed++
	default:
		b.errs++
	}
	b.bar.Describe(b.description())
	_ = b.bar.Add(1)
}

// Counts returns passed, failed and errored attempts seen so far.
func (b *Bar) Counts() (passed, failed, errored int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.passed, b.failed, b.errs
}

// Finish completes the bar.
func (b *Bar) Finish() error {
	if err := b.bar.Finish(); err != nil {
		return fmt.Errorf("finish progress bar: %w", err)
	}
	return nil
}

func (b *Bar) description() string {
	return color.CyanString("login cases ") +
		color.GreenString("[pass: %d", b.passed) + " | " +
		color.RedString("fail: %d", b.failed) + " | " +
		color.YellowString("error: %d]", b.errs)
}
