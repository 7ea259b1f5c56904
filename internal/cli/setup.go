package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/asksh/asksh/internal/config"
	"github.com/asksh/asksh/internal/executor"
	"github.com/asksh/asksh/internal/lang"
	"github.com/asksh/asksh/internal/ledger"
	"github.com/asksh/asksh/internal/provider"
	"github.com/asksh/asksh/internal/session"
	"github.com/asksh/asksh/internal/sysinfo"
	"github.com/asksh/asksh/internal/timeline"
	"github.com/asksh/asksh/internal/trace"
	"github.com/asksh/asksh/internal/turn"
)

// runtime bundles everything a command needs to drive turns.
type runtime struct {
	cfg        *config.Config
	controller *turn.Controller
	sessions   *session.Manager
	timeline   *timeline.TimelineService
	tracer     *trace.Publisher
}

func (r *runtime) close() {
	if r.timeline != nil {
		r.timeline.Close()
	}
	if r.tracer != nil {
		r.tracer.Close()
	}
}

// session returns the named live session with the configured ledger
// retention applied.
func (r *runtime) session(key string) *session.Session {
	sess := r.sessions.GetOrCreate(key)
	if sess.Commands().Len() == 0 {
		sess.AttachLedger(ledger.New(r.cfg.Ledger.Retention))
	}
	return sess
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	prov, err := provider.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	var gateway executor.Gateway
	switch cfg.Exec.Mode {
	case "tmux":
		gateway = executor.NewTmuxGateway(cfg.Exec.TmuxSession)
	default:
		gateway = executor.NewShellGateway(time.Duration(cfg.Exec.TimeoutSeconds)*time.Second, cfg.Exec.WorkDir)
	}

	var tl *timeline.TimelineService
	if path := timelinePath(cfg); path != "" {
		tl, err = timeline.NewTimelineService(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "timeline disabled: %v\n", err)
			tl = nil
		}
	}

	tracer := trace.NewPublisher(cfg.Trace.Brokers, cfg.Trace.Topic)

	controller := &turn.Controller{
		Provider:    prov,
		Gateway:     gateway,
		Detector:    lang.NewDetector(cfg.Language.Default),
		Info:        sysinfo.Collect(),
		RetryBudget: cfg.Turn.RetryBudget,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeline:    tl,
		Trace:       tracer,
	}
	if !cfg.Exec.AutoApprove {
		controller.Approve = promptApproval
	}

	return &runtime{
		cfg:        cfg,
		controller: controller,
		sessions:   session.NewManager(cfg.Sessions.Dir),
		timeline:   tl,
		tracer:     tracer,
	}, nil
}

func timelinePath(cfg *config.Config) string {
	if cfg.Timeline.Path != "" {
		return cfg.Timeline.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".asksh")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "timeline.db")
}

// promptApproval asks on the terminal before a flagged command runs.
func promptApproval(command, reason string) bool {
	fmt.Printf("%s %s\n", color.YellowString("about to run:"), command)
	fmt.Printf("  (%s)\n", reason)
	fmt.Print("proceed? [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
