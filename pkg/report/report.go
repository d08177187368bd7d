// Package report renders suite results as markdown, for files and the terminal.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/umputun/logincheck/pkg/login"
	"github.com/umputun/logincheck/pkg/runner"
)

// Meta describes the run environment shown in the report header.
type Meta struct {
	Target    string
	Engine    string
	CasesFile string
	Revision  string // branch and commit of the cases file, empty outside a repo
}

// Markdown renders the summary as a markdown document.
// tables are padded so the raw text stays readable without a renderer.
func Markdown(sum runner.Summary, meta Meta) string {
	var b strings.Builder

	b.WriteString("# Login check report\n\n")
	fmt.Fprintf(&b, "- run: `%s`\n", sum.RunID)
	if meta.Target != "" {
		fmt.Fprintf(&b, "- target: %s\n", meta.Target)
	}
	if meta.Engine != "" {
		fmt.Fprintf(&b, "- engine: %s\n", meta.Engine)
	}
	cases := meta.CasesFile
	if cases == "" {
		cases = "built-in"
	}
	fmt.Fprintf(&b, "- cases: %s\n", cases)
	if meta.Revision != "" {
		fmt.Fprintf(&b, "- revision: %s\n", meta.Revision)
	}
	fmt.Fprintf(&b, "- started: %s\n", sum.Started.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- duration: %s\n\n", sum.Duration.Round(time.Millisecond))

	verdict := "**PASSED**"
	if !sum.OK() {
		verdict = "**FAILED**"
	}
	fmt.Fprintf(&b, "%s\n\n", verdict)

	writeTable(&b, []string{"passed", "failed", "errors", "flaky"}, [][]string{{
		strconv.Itoa(sum.Passed()), strconv.Itoa(sum.Failed()), strconv.Itoa(sum.Errored()), strconv.Itoa(len(sum.Flaky())),
	}})

	b.WriteString("\n## Cases\n\n")
	rows := make([][]string, 0, len(sum.Cases))
	for _, c := range sum.Cases {
		res := c.Result()
		rows = append(rows, []string{c.Case.Name, c.Case.Expect.String(), observedCell(c), string(c.Status()),
			res.Duration.Round(time.Millisecond).String()})
	}
	writeTable(&b, []string{"case", "expected", "observed", "status", "duration"}, rows)

	writeSection(&b, "Assertion mismatches", sum, login.StatusFail)
	writeSection(&b, "Environment failures", sum, login.StatusError)

	if flaky := sum.Flaky(); len(flaky) > 0 {
		b.WriteString("\n## Flaky cases\n\n")
		for _, c := range flaky {
			fmt.Fprintf(&b, "- **%s**: %s over %d attempts\n", c.Case.Name, outcomes(c.Observed()), len(c.Attempts))
		}
	}
	return b.String()
}

// Render renders markdown content for terminal display.
// if noColor is true, returns the content unchanged.
func Render(content string, noColor bool) (string, error) {
	if noColor {
		return content, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	result, err := renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return result, nil
}

// WriteFile writes content to path atomically, via a temp file in the same directory.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // no-op after a successful rename

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // reports are meant to be shared
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

// writeSection lists every attempt with status st, whatever the case verdict is.
// a case with a mismatch and a later environment failure shows up in both sections.
func writeSection(b *strings.Builder, title string, sum runner.Summary, st login.Status) {
	var lines []string
	for _, c := range sum.Cases {
		for i, a := range c.Attempts {
			if a.Status != st {
				continue
			}
			name := c.Case.Name
			if len(c.Attempts) > 1 {
				name += fmt.Sprintf(" #%d", i+1)
			}
			lines = append(lines, fmt.Sprintf("- **%s**: %s", name, oneLine(a.Description())))
		}
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n%s\n", title, strings.Join(lines, "\n"))
}

func writeTable(b *strings.Builder, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(runewidth.StringWidth(h), 3)
	}
	for _, r := range rows {
		for i, cell := range r {
			r[i] = escapeCell(cell)
			widths[i] = max(widths[i], runewidth.StringWidth(r[i]))
		}
	}

	line := func(cells []string) {
		b.WriteString("|")
		for i, c := range cells {
			b.WriteString(" " + runewidth.FillRight(c, widths[i]) + " |")
		}
		b.WriteString("\n")
	}
	line(header)
	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(" " + strings.Repeat("-", w) + " |")
	}
	b.WriteString("\n")
	for _, r := range rows {
		line(r)
	}
}

func observedCell(c runner.CaseResult) string {
	obs := c.Observed()
	if len(obs) == 0 {
		return "-"
	}
	return outcomes(obs)
}

func outcomes(list []login.Outcome) string {
	parts := make([]string, len(list))
	for i, o := range list {
		parts[i] = o.String()
	}
	return strings.Join(parts, " / ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
