package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"time"
)

// DenyPatterns contains regex patterns for commands the gateway refuses to
// run regardless of approval state.
var DenyPatterns = []string{
	`\brm\s+(-[rf]+\s+)*[/~]`, // rm with root or home
	`\brm\s+-rf\b`,
	`\brm\s+-r[fF]?\s+\.\b`,
	`\brm\s+-r[fF]?\s+\*`,
	`\bdd\b.*\bof=/dev/`,
	`\bmkfs\b`,
	`\bfdisk\b`,
	`>\s*/dev/`,
	`\bchmod\s+-R\s+777\b`,
	`:\(\)\{ :\|:& \};:`, // fork bomb
	`\bshutdown\b`,
	`\breboot\b`,
	`\bhalt\b`,
	`\binit\s+[0-6]\b`,
}

const defaultOutputCap = 64 * 1024

// ShellGateway runs commands through sh -c with a timeout and an output cap.
type ShellGateway struct {
	Timeout   time.Duration
	WorkDir   string
	OutputCap int
	denyRes   []*regexp.Regexp
}

// NewShellGateway creates a gateway. timeout 0 means 60s.
func NewShellGateway(timeout time.Duration, workDir string) *ShellGateway {
	denyRes := make([]*regexp.Regexp, 0, len(DenyPatterns))
	for _, pattern := range DenyPatterns {
		if re, err := regexp.Compile(pattern); err == nil {
			denyRes = append(denyRes, re)
		}
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &ShellGateway{
		Timeout:   timeout,
		WorkDir:   workDir,
		OutputCap: defaultOutputCap,
		denyRes:   denyRes,
	}
}

// Execute runs command after rewriting it to a non-interactive form.
// Non-zero exits are reported in the Result, not as an error; errors mean
// the gateway itself failed (denied command, timeout, spawn failure).
func (g *ShellGateway) Execute(ctx context.Context, command string) (Result, error) {
	for _, re := range g.denyRes {
		if re.MatchString(command) {
			return Result{}, fmt.Errorf("command refused by deny list: %s", command)
		}
	}

	command = Rewrite(command)

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	if g.WorkDir != "" {
		cmd.Dir = g.WorkDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return Result{}, fmt.Errorf("%w after %v", ErrTimeout, g.Timeout)
	}

	res := Result{ExitCode: 0}
	res.Stdout, res.Truncated = capOutput(stdout.String(), g.outputCap())
	var errTrunc bool
	res.Stderr, errTrunc = capOutput(stderr.String(), g.outputCap())
	res.Truncated = res.Truncated || errTrunc

	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return Result{}, fmt.Errorf("spawn command: %w", runErr)
	}
	return res, nil
}

func (g *ShellGateway) outputCap() int {
	if g.OutputCap <= 0 {
		return defaultOutputCap
	}
	return g.OutputCap
}

func capOutput(s string, max int) (string, bool) {
	if len(s) <= max {
		return s, false
	}
	return s[:max] + "\n[output truncated]", true
}
