package notify

import (
	"fmt"
	"strings"
)

// maxListed caps failure and change lines in a message.
const maxListed = 10

// formatMessage renders r as plain text, one aligned "key: value" line per known field.
func (s *Service) formatMessage(r Result) string {
	var b strings.Builder

	verdict := "passed"
	if r.Status != "success" {
		verdict = "failed"
	}
	fmt.Fprintf(&b, "logincheck %s on %s\n\n", verdict, s.hostname)

	for _, f := range []struct{ key, val string }{
		{"target", r.Target},
		{"engine", r.Engine},
		{"cases", r.CasesFile},
		{"revision", r.Revision},
		{"duration", r.Duration},
	} {
		if f.val != "" {
			fmt.Fprintf(&b, "%-9s %s\n", f.key+":", f.val)
		}
	}

	if r.Error != "" {
		writeList(&b, "failures", r.Failures)
		writeList(&b, "changed since last run", r.Changes)
		fmt.Fprintf(&b, "error:    %s\n", r.Error)
		return b.String()
	}

	fmt.Fprintf(&b, "results:  %d passed, %d failed, %d errors\n", r.Passed, r.Failed, r.Errored)
	writeList(&b, "failures", r.Failures)
	writeList(&b, "changed since last run", r.Changes)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items[:min(len(items), maxListed)] {
		fmt.Fprintf(b, "  - %s\n", it)
	}
	if extra := len(items) - maxListed; extra > 0 {
		fmt.Fprintf(b, "  ... and %d more\n", extra)
	}
}
