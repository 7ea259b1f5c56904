package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TmuxGateway runs commands inside a dedicated tmux pane so they inherit a
// real terminal environment. Completion is detected by a unique marker
// echoed after the command.
type TmuxGateway struct {
	Session      string
	PollInterval time.Duration
	MaxPolls     int
}

// NewTmuxGateway creates a gateway bound to the named tmux session.
func NewTmuxGateway(session string) *TmuxGateway {
	if session == "" {
		session = "asksh"
	}
	return &TmuxGateway{
		Session:      session,
		PollInterval: 100 * time.Millisecond,
		MaxPolls:     100,
	}
}

// Execute sends the command to the pane and polls until the completion
// marker appears or the poll budget runs out. Exit codes are recovered from
// the marker line.
func (g *TmuxGateway) Execute(ctx context.Context, command string) (Result, error) {
	if err := g.ensureSession(); err != nil {
		return Result{}, fmt.Errorf("ensure tmux session: %w", err)
	}

	command = Rewrite(command)
	marker := fmt.Sprintf("__ASKSH_DONE_%s__", uuid.NewString())
	full := fmt.Sprintf("%s; echo %s:$?", command, marker)

	if err := g.tmux("clear-history", "-t", g.Session); err != nil {
		return Result{}, fmt.Errorf("clear pane history: %w", err)
	}
	if err := g.tmux("send-keys", "-t", g.Session, full, "Enter"); err != nil {
		return Result{}, fmt.Errorf("send command: %w", err)
	}

	for i := 0; i < g.MaxPolls; i++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(g.PollInterval):
		}

		pane, err := g.capturePane()
		if err != nil {
			return Result{}, fmt.Errorf("capture pane: %w", err)
		}
		if line, ok := findMarkerLine(pane, marker); ok {
			exit := parseExitCode(line, marker)
			out := cleanOutput(pane, full, marker)
			return Result{Stdout: out, ExitCode: exit}, nil
		}
	}
	return Result{}, ErrTimeout
}

func (g *TmuxGateway) ensureSession() error {
	// Inside tmux the current pane is reused.
	if os.Getenv("TMUX") != "" {
		return nil
	}
	if err := g.tmux("has-session", "-t", g.Session); err == nil {
		return nil
	}
	return g.tmux("new-session", "-d", "-s", g.Session)
}

func (g *TmuxGateway) capturePane() (string, error) {
	out, err := exec.Command("tmux", "capture-pane", "-pJ", "-t", g.Session, "-S", "-", "-E", "-").Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (g *TmuxGateway) tmux(args ...string) error {
	return exec.Command("tmux", args...).Run()
}

// findMarkerLine locates the echoed marker, skipping the echoed command
// itself (which also contains the marker text).
func findMarkerLine(pane, marker string) (string, bool) {
	for _, line := range strings.Split(pane, "\n") {
		if strings.Contains(line, marker+":") && !strings.Contains(line, "echo "+marker) {
			return line, true
		}
	}
	return "", false
}

func parseExitCode(line, marker string) int {
	idx := strings.Index(line, marker+":")
	if idx < 0 {
		return 0
	}
	rest := strings.TrimSpace(line[idx+len(marker)+1:])
	code := 0
	fmt.Sscanf(rest, "%d", &code)
	return code
}

// cleanOutput strips the echoed command line, the marker line, and blank
// lines from the captured pane, leaving only command output.
func cleanOutput(pane, sent, marker string) string {
	var kept []string
	for _, line := range strings.Split(pane, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.Contains(line, marker) {
			continue
		}
		if strings.Contains(line, sent) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
