package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// sshExitTransport is the exit code the ssh binary reserves for its own
// failures (connection refused, auth failure, timeout). Remote commands that
// themselves fail exit with their own status instead.
const sshExitTransport = 255

// Runner executes one external command and captures its stdout. It is the
// single subprocess boundary of the package; tests replace it with a fake
// that counts invocations.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, stdin string, name string, args ...string) ([]byte, error)
}

// ExitError carries the exit status of a failed command so callers can
// distinguish a transport failure from a remote command failure.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command exited with status %d", e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// IsTransportError reports whether err represents a failure of the ssh
// transport itself rather than of the remote command.
func IsTransportError(err error) bool {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code == sshExitTransport
	}
	// Timeouts, missing binaries and cancellations are transport failures.
	return err != nil
}

type execRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, timeout time.Duration, stdin string, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{
				Code:   exitErr.ExitCode(),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
