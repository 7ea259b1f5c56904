// Package executor runs vetted, non-interactive shell commands.
package executor

import (
	"context"
	"errors"
)

// Result is the outcome of one command run.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// ErrTimeout is returned when a command does not finish within the
// gateway's deadline.
var ErrTimeout = errors.New("command timed out")

// Gateway executes a single command and returns its output. Implementations
// must not require interactive input and must report truncation instead of
// silently dropping output.
type Gateway interface {
	Execute(ctx context.Context, command string) (Result, error)
}
