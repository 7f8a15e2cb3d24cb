// Package runner executes external processes and reports their exit codes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/CyberAndrii/setup-steamcmd/internal/logging"
)

// Options controls a single execution.
type Options struct {
	// IgnoreReturnCode returns a non-zero exit code instead of an error.
	IgnoreReturnCode bool
	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// ExitError is returned for a non-zero exit when IgnoreReturnCode is false.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d", e.Command, e.Code)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	log logging.Logger
}

// New creates a runner that logs each command line at debug level.
func New(log logging.Logger) *ExecRunner {
	return &ExecRunner{log: logging.OrNop(log)}
}

// Exec runs name with args and waits for it to exit. A process that
// cannot be started is always an error, regardless of IgnoreReturnCode.
func (r *ExecRunner) Exec(ctx context.Context, name string, args []string, opts Options) (int, error) {
	cmdline := commandLine(name, args)
	r.log.Debug("exec", "command", cmdline)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return -1, fmt.Errorf("run %s: %w", cmdline, err)
		}
		code = exitErr.ExitCode()
	}

	r.log.Debug("exit", "command", cmdline, "code", code)

	if code != 0 && !opts.IgnoreReturnCode {
		return code, &ExitError{Command: cmdline, Code: code}
	}
	return code, nil
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
