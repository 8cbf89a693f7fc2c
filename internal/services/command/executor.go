// Package command runs external tools for the pipeline stages.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/rs/zerolog"
)

// maxStderr bounds how much tool output ends up in an error message.
const maxStderr = 512

// Executor allows mocking exec.Command in tests.
type Executor interface {
	Run(ctx context.Context, cmd models.Command) error
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct{}

// Run starts the command and waits for it to finish. When cmd.Stdout is
// set the process stdout is written to that file.
func (e *DefaultExecutor) Run(ctx context.Context, cmd models.Command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // argv is built by the stages, no shell involved
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stderr bytes.Buffer
	c.Stderr = &stderr

	if cmd.Stdout != "" {
		output, err := os.OpenFile(cmd.Stdout, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // path is computed by the planner
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = output.Close() }()
		c.Stdout = output
	}

	if err := c.Run(); err != nil {
		if msg := tail(stderr.String()); msg != "" {
			return fmt.Errorf("%w, output: %s", err, msg)
		}
		return err
	}

	return nil
}

// ExitCode extracts the process exit code from an error returned by Run.
// It returns -1 when the process never ran or was killed by a signal.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// WithNice prefixes a tool invocation with nice when a niceness is set.
func WithNice(niceBin, level, name string, args ...string) models.Command {
	if level == "" {
		return models.Command{Name: name, Args: args}
	}
	return models.Command{
		Name: niceBin,
		Args: append([]string{"-n", level, name}, args...),
	}
}

// Logger returns the logger attached to ctx, or fallback when there is none.
func Logger(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return fallback
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}
	return s
}
