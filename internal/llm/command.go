package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrEmptyOutput is returned when the generator produced no text.
var ErrEmptyOutput = errors.New("generator returned no output")

// Command runs an external program with the prompt on stdin; its stdout is the result.
type Command struct {
	name    string
	args    []string
	timeout time.Duration
}

// NewCommand creates a command generator. A zero timeout means no limit beyond ctx.
func NewCommand(name string, args []string, timeout time.Duration) *Command {
	return &Command{name: name, args: args, timeout: timeout}
}

// Generate runs the command and returns its trimmed stdout.
func (c *Command) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	slog.Debug("running generator command", "command", c.name, "prompt_chars", len(prompt))

	if err := cmd.Run(); err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound):
			return "", fmt.Errorf("generator command %q not found: install it or set generator.command", c.name)
		case ctx.Err() != nil:
			return "", fmt.Errorf("run generator: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("run generator: %w", err)
		}
		return "", wrapFatalError(fmt.Errorf("run generator: %w: %s", err, msg))
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", ErrEmptyOutput
	}
	slog.Debug("generator command finished", "command", c.name, "duration_ms", time.Since(start).Milliseconds())
	return out, nil
}
