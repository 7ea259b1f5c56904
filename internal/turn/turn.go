// Package turn implements the per-request orchestration loop: detect
// the reply language, ask the engine for commands, vet them against
// the session ledger, execute, observe, and decide whether to keep
// going or stop.
package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/asksh/asksh/internal/analyser"
	"github.com/asksh/asksh/internal/executor"
	"github.com/asksh/asksh/internal/guard"
	"github.com/asksh/asksh/internal/lang"
	"github.com/asksh/asksh/internal/ledger"
	"github.com/asksh/asksh/internal/prompts"
	"github.com/asksh/asksh/internal/provider"
	"github.com/asksh/asksh/internal/session"
	"github.com/asksh/asksh/internal/sysinfo"
	"github.com/asksh/asksh/internal/timeline"
	"github.com/asksh/asksh/internal/trace"
)

// Turn dispositions.
const (
	DispositionCompleted        = "completed"
	DispositionBlockedDuplicate = "blocked-duplicate"
	DispositionAwaitingOutput   = "awaiting-output"
)

// DefaultRetryBudget bounds propose/guard cycles within one turn.
const DefaultRetryBudget = 3

// defaultDecideRounds bounds execute/observe/decide rounds so a
// pathological engine cannot keep a turn alive forever.
const defaultDecideRounds = 8

// maxHistoryMessages caps how much transcript the engine sees.
const maxHistoryMessages = 40

// ApproveFunc asks the user to confirm a command the analyser flagged.
// Returning false skips the command.
type ApproveFunc func(command, reason string) bool

// Controller drives one turn at a time for a session.
type Controller struct {
	Provider     provider.LLMProvider
	Gateway      executor.Gateway
	Detector     *lang.Detector
	Info         sysinfo.Info
	RetryBudget  int
	DecideRounds int
	MaxTokens    int
	Temperature  float64
	// Approve is consulted for commands that require approval.
	// Nil means approve everything.
	Approve ApproveFunc
	// Timeline and Trace are optional audit sinks.
	Timeline *timeline.TimelineService
	Trace    *trace.Publisher
}

// Result is the outcome of one turn.
type Result struct {
	Disposition string
	Reply       string
	Language    language.Tag
	Retries     int
	Executed    []ledger.Record
}

// Run processes one user request against the session. It is the only
// method that blocks, and only while a command is executing or the
// engine is thinking.
func (c *Controller) Run(ctx context.Context, sess *session.Session, userInput string) (*Result, error) {
	// DETECT_LANGUAGE: once per turn, immutable afterwards.
	previous := language.Make(sess.Language())
	tag := c.Detector.Detect(userInput, previous)
	sess.SetLanguage(tag.String())

	turnID := ""
	if c.Timeline != nil {
		id, err := c.Timeline.BeginTurn(sess.Key, userInput, tag.String())
		if err != nil {
			slog.Warn("timeline: begin turn failed", "error", err)
		} else {
			turnID = id
		}
	}
	c.publish(ctx, trace.Span{Type: trace.SpanTurn, TurnID: turnID, SessionKey: sess.Key, Title: "turn started", Detail: userInput})

	systemPrompt, err := prompts.System(c.Info, lang.Name(tag))
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}
	userPrompt, err := prompts.User(userInput)
	if err != nil {
		return nil, fmt.Errorf("render user prompt: %w", err)
	}

	messages := []provider.Message{{Role: "system", Content: systemPrompt}}
	for _, m := range sess.GetHistory(maxHistoryMessages) {
		messages = append(messages, provider.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, provider.Message{Role: "user", Content: userPrompt})
	sess.AddMessage("user", userInput)

	result := &Result{Disposition: DispositionCompleted, Language: tag}
	budget := c.RetryBudget
	if budget <= 0 {
		budget = DefaultRetryBudget
	}
	rounds := c.DecideRounds
	if rounds <= 0 {
		rounds = defaultDecideRounds
	}

	rejected := 0
	for round := 0; round < rounds; round++ {
		// PROPOSE
		resp, err := c.Provider.Chat(ctx, &provider.ChatRequest{
			Messages:    messages,
			MaxTokens:   c.MaxTokens,
			Temperature: c.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("propose: %w", err)
		}
		proposal := ParseProposal(resp.Content)

		// DECIDE: no commands means the engine considers the request
		// answered; its text is the final reply.
		if len(proposal.Candidates) == 0 {
			result.Reply = strings.TrimSpace(resp.Content)
			result.Retries = rejected
			sess.AddMessage("assistant", resp.Content)
			c.finish(ctx, sess, turnID, result)
			return result, nil
		}

		// GUARD_CHECK: vet the whole candidate set before running any
		// of it, so one rejection never costs a gateway call.
		rejectedThis := false
		for _, cand := range proposal.Candidates {
			d := guard.Check(cand.Command, cand.Justification, sess.Commands())
			if d.Verdict == guard.Reject {
				rejected++
				rejectedThis = true
				c.publish(ctx, trace.Span{Type: trace.SpanGuard, TurnID: turnID, Title: "rejected", Detail: cand.Command})
				if rejected >= budget {
					result.Disposition = DispositionBlockedDuplicate
					result.Retries = rejected
					result.Reply = fmt.Sprintf(
						"Stopped: the proposed command %q was already run and no distinct approach was offered after %d attempts.",
						cand.Command, rejected)
					sess.AddMessage("assistant", result.Reply)
					c.finish(ctx, sess, turnID, result)
					return result, nil
				}
				// Feed the rejection back and re-propose.
				feedback := fmt.Sprintf(
					"Command %q was rejected: %s Propose a different approach, or justify the rerun with a \"# rerun: <reason>\" line.",
					cand.Command, d.Reason)
				sess.AddMessage("assistant", resp.Content)
				sess.AddMessage("user", feedback)
				messages = append(messages,
					provider.Message{Role: "assistant", Content: resp.Content},
					provider.Message{Role: "user", Content: feedback})
				break
			}
		}
		if rejectedThis {
			continue
		}

		sess.AddMessage("assistant", resp.Content)
		messages = append(messages, provider.Message{Role: "assistant", Content: resp.Content})

		// EXECUTE + OBSERVE
		var outputs []string
		for _, cand := range proposal.Candidates {
			if skipped, why := c.confirm(cand.Command); skipped {
				outputs = append(outputs, fmt.Sprintf("$ %s\n(skipped: %s)", cand.Command, why))
				continue
			}

			// The ledger grows as this loop runs, so the vet above can
			// go stale. Check again against the current ledger before
			// every execution; an earlier sibling may have just made
			// this command an immediate repeat.
			d := guard.Check(cand.Command, cand.Justification, sess.Commands())
			if d.Verdict == guard.Reject {
				rejected++
				c.publish(ctx, trace.Span{Type: trace.SpanGuard, TurnID: turnID, Title: "rejected", Detail: cand.Command})
				if rejected >= budget {
					result.Disposition = DispositionBlockedDuplicate
					result.Retries = rejected
					result.Reply = fmt.Sprintf(
						"Stopped: the proposed command %q was already run and no distinct approach was offered after %d attempts.",
						cand.Command, rejected)
					sess.AddMessage("assistant", result.Reply)
					c.finish(ctx, sess, turnID, result)
					return result, nil
				}
				outputs = append(outputs, fmt.Sprintf("$ %s\n(not run: %s)", cand.Command, d.Reason))
				continue
			}

			res, execErr := c.Gateway.Execute(ctx, cand.Command)
			rec := c.observe(sess, cand, d, res, execErr)
			result.Executed = append(result.Executed, rec)
			if c.Timeline != nil && turnID != "" {
				if err := c.Timeline.RecordCommand(turnID, rec, ""); err != nil {
					slog.Warn("timeline: record command failed", "error", err)
				}
			}
			c.publish(ctx, trace.Span{Type: trace.SpanCommand, TurnID: turnID, Title: cand.Command, Detail: fmt.Sprintf("exit=%d failed=%v", rec.Result.ExitCode, rec.Result.Failed)})

			if errors.Is(execErr, executor.ErrTimeout) {
				result.Disposition = DispositionAwaitingOutput
				result.Retries = rejected
				result.Reply = fmt.Sprintf("Command %q is still running; its output was not captured in time.", cand.Command)
				sess.AddMessage("assistant", result.Reply)
				c.finish(ctx, sess, turnID, result)
				return result, nil
			}
			outputs = append(outputs, formatOutput(cand.Command, rec.Result))
		}

		// Feed observations back so DECIDE happens on the next round.
		// A failed outcome goes the same route; the guard keeps the
		// engine from retrying it verbatim.
		observation, err := prompts.TerminalOutput(strings.Join(outputs, "\n\n"))
		if err != nil {
			return nil, fmt.Errorf("render output prompt: %w", err)
		}
		sess.AddMessage("user", observation)
		messages = append(messages, provider.Message{Role: "user", Content: observation})
	}

	result.Retries = rejected
	result.Reply = "Stopped after too many command rounds without a final answer."
	sess.AddMessage("assistant", result.Reply)
	c.finish(ctx, sess, turnID, result)
	return result, nil
}

// confirm runs the approval check for one command.
func (c *Controller) confirm(command string) (skipped bool, why string) {
	needed, reason := analyser.RequiresApproval(command)
	if !needed || c.Approve == nil {
		return false, ""
	}
	if c.Approve(command, reason) {
		return false, ""
	}
	return true, "declined by user: " + reason
}

// observe appends the execution result to the session ledger.
func (c *Controller) observe(sess *session.Session, cand Candidate, d guard.Decision, res executor.Result, execErr error) ledger.Record {
	lr := ledger.Result{
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		Failed:   execErr != nil || res.ExitCode != 0,
	}
	if execErr != nil && lr.Stderr == "" {
		lr.Stderr = execErr.Error()
	}
	justification := ""
	if d.Verdict == guard.AllowWithJustification {
		justification = cand.Justification
	}
	sess.Commands().Append(cand.Command, justification, lr)
	rec, _ := sess.Commands().Last()
	return rec
}

func (c *Controller) finish(ctx context.Context, sess *session.Session, turnID string, result *Result) {
	if c.Timeline != nil && turnID != "" {
		if err := c.Timeline.CompleteTurn(turnID, result.Disposition, result.Retries, result.Reply); err != nil {
			slog.Warn("timeline: complete turn failed", "error", err)
		}
	}
	c.publish(ctx, trace.Span{Type: trace.SpanTurn, TurnID: turnID, SessionKey: sess.Key, Title: "turn " + result.Disposition})
}

func (c *Controller) publish(ctx context.Context, span trace.Span) {
	if c.Trace != nil {
		c.Trace.Publish(ctx, span)
	}
}

func formatOutput(command string, res ledger.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "$ %s\n", command)
	if res.Stdout != "" {
		sb.WriteString(res.Stdout)
		if !strings.HasSuffix(res.Stdout, "\n") {
			sb.WriteString("\n")
		}
	}
	if res.Stderr != "" {
		fmt.Fprintf(&sb, "stderr: %s\n", strings.TrimSpace(res.Stderr))
	}
	fmt.Fprintf(&sb, "exit code: %d", res.ExitCode)
	return sb.String()
}
