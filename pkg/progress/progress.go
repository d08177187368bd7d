// Package progress provides timestamped logging to file and stdout with color support.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/umputun/logincheck/pkg/config"
	"github.com/umputun/logincheck/pkg/login"
)

// Logger writes timestamped output to both a progress file and stdout.
// safe for concurrent use, cases report from parallel workers.
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	stdout    io.Writer
	colors    *Colors
	quiet     bool
	startTime time.Time
}

// Config holds logger configuration.
type Config struct {
	CasesFile string // cases filename, used to derive the progress filename
	Dir       string // directory for the progress file, empty for current
	Target    string // login url under test
	Engine    string
	Cases     int
	Quiet     bool // case lines go to the file only
	NoColor   bool // disable color output (sets color.NoColor globally)
}

// NewLogger creates a logger writing to both a progress file and stdout.
func NewLogger(cfg Config, colors *Colors) (*Logger, error) {
	if cfg.NoColor {
		color.NoColor = true
	}
	if colors == nil {
		colors = NewColors(config.ColorConfig{})
	}

	progressPath := filepath.Join(cfg.Dir, progressFilename(cfg.CasesFile))
	if dir := filepath.Dir(progressPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create progress dir: %w", err)
		}
	}

	f, err := os.Create(progressPath) //nolint:gosec // path derived from cases filename
	if err != nil {
		return nil, fmt.Errorf("create progress file: %w", err)
	}

	l := &Logger{file: f, stdout: os.Stdout, colors: colors, quiet: cfg.Quiet, startTime: time.Now()}

	casesStr := cfg.CasesFile
	if casesStr == "" {
		casesStr = "(built-in)"
	}
	l.writeFile("# Logincheck Progress Log\n")
	l.writeFile("Target: %s\n", cfg.Target)
	l.writeFile("Engine: %s\n", cfg.Engine)
	l.writeFile("Cases: %s (%d)\n", casesStr, cfg.Cases)
	l.writeFile("Started: %s\n", l.startTime.Format("2006-01-02 15:04:05"))
	l.writeFile("%s\n\n", strings.Repeat("-", 60))

	return l, nil
}

// Path returns the progress file path.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// timestampFormat is the format for timestamps: YY-MM-DD HH:MM:SS
const timestampFormat = "06-01-02 15:04:05"

// Print writes a timestamped message to both file and stdout.
func (l *Logger) Print(format string, args ...any) {
	l.line("", l.colors.Info(), fmt.Sprintf(format, args...), false)
}

// Error writes an error message.
func (l *Logger) Error(format string, args ...any) {
	l.line("ERROR: ", l.colors.Error(), fmt.Sprintf(format, args...), false)
}

// Warn writes a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.line("WARN: ", l.colors.Warn(), fmt.Sprintf(format, args...), false)
}

// CaseStarted logs the start of a login attempt.
func (l *Logger) CaseStarted(c login.Case, attempt int) {
	l.line("", l.colors.Info(), fmt.Sprintf("run   %s%s, expect %s", c.Name, attemptSuffix(attempt), c.Expect), l.quiet)
}

// CaseFinished logs the outcome of a login attempt, colored by status.
func (l *Logger) CaseFinished(res login.Result, attempt int) {
	clr := l.colors.Pass()
	switch res.Status {
	case login.StatusFail:
		clr = l.colors.Fail()
	case login.StatusError:
		clr = l.colors.Error()
	}
	msg := fmt.Sprintf("%-5s %s%s: %s (%s)", strings.ToUpper(string(res.Status)), res.Case.Name,
		attemptSuffix(attempt), res.Description(), res.Duration.Round(time.Millisecond))
	l.line("", clr, msg, l.quiet && res.Status == login.StatusPass)
}

// Detail writes indented continuation lines under the previous entry, wrapped
// to the terminal width on stdout. the file copy is never wrapped.
func (l *Logger) Detail(lines ...string) {
	if len(lines) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	width := contentWidth()
	for _, ln := range lines {
		l.writeFile("%s%s\n", detailIndent, ln)
		if l.quiet {
			continue
		}
		for _, part := range wrapText(ln, width) {
			l.writeStdout("%s%s\n", detailIndent, l.colors.Info().Sprint(part))
		}
	}
}

// Elapsed returns formatted elapsed time since start.
func (l *Logger) Elapsed() string {
	return humanize.RelTime(l.startTime, time.Now(), "", "")
}

// Close writes footer and closes the progress file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}

	l.writeFile("\n%s\n", strings.Repeat("-", 60))
	l.writeFile("Completed: %s (%s)\n", time.Now().Format("2006-01-02 15:04:05"), l.Elapsed())

	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("close progress file: %w", err)
	}
	return nil
}

// line writes one timestamped line. fileOnly skips stdout.
func (l *Logger) line(prefix string, clr *color.Color, msg string, fileOnly bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format(timestampFormat)
	l.writeFile("[%s] %s%s\n", timestamp, prefix, msg)
	if fileOnly {
		return
	}
	l.writeStdout("%s %s\n", l.colors.Timestamp().Sprintf("[%s]", timestamp), clr.Sprint(prefix+msg))
}

func (l *Logger) writeFile(format string, args ...any) {
	if l.file != nil {
		fmt.Fprintf(l.file, format, args...)
	}
}

func (l *Logger) writeStdout(format string, args ...any) {
	fmt.Fprintf(l.stdout, format, args...)
}

func attemptSuffix(attempt int) string {
	if attempt <= 1 {
		return ""
	}
	return " #" + strconv.Itoa(attempt)
}

// detailIndent lines detail text up with the message after "[YY-MM-DD HH:MM:SS] ".
var detailIndent = strings.Repeat(" ", len(timestampFormat)+3)

// contentWidth is the terminal width left after the timestamp column, never below 40.
// COLUMNS wins over the tty size, 80 columns are assumed when neither is known.
func contentWidth() int {
	cols := 80
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		cols = w
	} else if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 { //nolint:gosec // fd fits int
		cols = w
	}
	return max(cols-len(detailIndent), 40)
}

// wrapText splits text into lines of at most width display cells, breaking between words.
// a word wider than width gets a line of its own.
func wrapText(text string, width int) []string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return []string{text}
	}
	var res []string
	cur, curWidth := "", 0
	for _, w := range strings.Fields(text) {
		ww := runewidth.StringWidth(w)
		if curWidth > 0 && curWidth+1+ww > width {
			res = append(res, cur)
			cur, curWidth = "", 0
		}
		if curWidth > 0 {
			cur += " "
			curWidth++
		}
		cur += w
		curWidth += ww
	}
	return append(res, cur)
}

// progressFilename returns progress file name based on the cases file.
func progressFilename(casesFile string) string {
	if casesFile == "" {
		return "progress.txt"
	}
	stem := filepath.Base(casesFile)
	stem = strings.TrimSuffix(strings.TrimSuffix(stem, ".yml"), ".yaml")
	return fmt.Sprintf("progress-%s.txt", stem)
}
