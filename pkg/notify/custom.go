package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// customChannel runs a user script for notifications.
// the script gets the result as JSON on stdin and the status in LOGINCHECK_STATUS.
type customChannel struct {
	scriptPath string
}

func newCustomChannel(scriptPath string) *customChannel {
	return &customChannel{scriptPath: scriptPath}
}

// send pipes the JSON encoded result to the script and waits for it to exit.
func (c *customChannel) send(ctx context.Context, r Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.scriptPath) //nolint:gosec // path comes from user config, not user input
	cmd.Stdin = bytes.NewReader(data)
	cmd.Env = append(os.Environ(), "LOGINCHECK_STATUS="+r.Status, "LOGINCHECK_RUN_ID="+r.RunID)
	cmd.WaitDelay = time.Second // children of a killed script may hold the output pipes

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err = cmd.Run(); err != nil {
		var details []string
		if s := strings.TrimSpace(stdout.String()); s != "" {
			details = append(details, "output: "+s)
		}
		if s := strings.TrimSpace(stderr.String()); s != "" {
			details = append(details, "stderr: "+s)
		}
		if len(details) > 0 {
			return fmt.Errorf("script %s: %w, %s", c.scriptPath, err, strings.Join(details, ", "))
		}
		return fmt.Errorf("script %s: %w", c.scriptPath, err)
	}
	return nil
}
