package turn

import (
	"context"
	"testing"

	"golang.org/x/text/language"

	"github.com/asksh/asksh/internal/executor"
	"github.com/asksh/asksh/internal/lang"
	"github.com/asksh/asksh/internal/ledger"
	"github.com/asksh/asksh/internal/provider"
	"github.com/asksh/asksh/internal/session"
	"github.com/asksh/asksh/internal/sysinfo"
)

// fakeProvider replays canned responses; the last one repeats forever.
type fakeProvider struct {
	responses []string
	calls     int
}

func (f *fakeProvider) Chat(_ context.Context, _ *provider.ChatRequest) (*provider.ChatResponse, error) {
	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return &provider.ChatResponse{Content: f.responses[i], FinishReason: "stop"}, nil
}

func (f *fakeProvider) DefaultModel() string { return "fake" }

type fakeGateway struct {
	calls   []string
	results map[string]executor.Result
	err     error
}

func (g *fakeGateway) Execute(_ context.Context, command string) (executor.Result, error) {
	g.calls = append(g.calls, command)
	if g.err != nil {
		return executor.Result{}, g.err
	}
	if res, ok := g.results[command]; ok {
		return res, nil
	}
	return executor.Result{ExitCode: 0, Stdout: "ok\n"}, nil
}

func newController(p *fakeProvider, g *fakeGateway) *Controller {
	return &Controller{
		Provider: p,
		Gateway:  g,
		Detector: lang.NewDetector("en"),
		Info:     sysinfo.Info{OS: "linux", Arch: "amd64", Shell: "bash"},
	}
}

func TestRun_FrenchDateRequest(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"Je vérifie la date.\n```\ndate\n```",
		"Nous sommes le samedi 30 août 2025.",
	}}
	g := &fakeGateway{results: map[string]executor.Result{
		"date": {ExitCode: 0, Stdout: "Sat Aug 30 10:00:00 UTC 2025\n"},
	}}
	c := newController(p, g)
	sess := session.NewSession("test")

	res, err := c.Run(context.Background(), sess, "Quelle est la date d'aujourd'hui ?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Disposition != DispositionCompleted {
		t.Errorf("disposition = %q", res.Disposition)
	}
	if res.Language != language.French {
		t.Errorf("language = %v, want French", res.Language)
	}
	if res.Reply != "Nous sommes le samedi 30 août 2025." {
		t.Errorf("reply = %q", res.Reply)
	}
	if len(g.calls) != 1 || g.calls[0] != "date" {
		t.Errorf("gateway calls = %v", g.calls)
	}
	if len(res.Executed) != 1 || res.Executed[0].Raw != "date" {
		t.Errorf("executed = %+v", res.Executed)
	}
}

func TestRun_ImmediateRepeatForcesDifferentApproach(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"```\nls -la\n```",
		"Trying a narrower listing.\n```\nls -la /tmp\n```",
		"The directory holds two files.",
	}}
	g := &fakeGateway{}
	c := newController(p, g)
	sess := session.NewSession("test")
	sess.Commands().Append("ls -la", "", ledger.Result{ExitCode: 0})

	res, err := c.Run(context.Background(), sess, "list the files again")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Disposition != DispositionCompleted {
		t.Errorf("disposition = %q", res.Disposition)
	}
	if len(g.calls) != 1 || g.calls[0] != "ls -la /tmp" {
		t.Fatalf("gateway calls = %v, rejected command must never reach the gateway", g.calls)
	}
	if res.Executed[0].Signature == ledger.Signature("ls -la") {
		t.Error("substituted command has the same signature as the rejected one")
	}
}

func TestRun_RetryBudgetExhaustion(t *testing.T) {
	p := &fakeProvider{responses: []string{"```\nls\n```"}}
	g := &fakeGateway{}
	c := newController(p, g)
	c.RetryBudget = 3
	sess := session.NewSession("test")
	sess.Commands().Append("ls", "", ledger.Result{ExitCode: 0})

	res, err := c.Run(context.Background(), sess, "list files")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Disposition != DispositionBlockedDuplicate {
		t.Errorf("disposition = %q, want blocked-duplicate", res.Disposition)
	}
	if res.Retries != 3 {
		t.Errorf("retries = %d, want exactly 3", res.Retries)
	}
	if p.calls != 3 {
		t.Errorf("provider calls = %d, want 3", p.calls)
	}
	if len(g.calls) != 0 {
		t.Errorf("gateway calls = %v, want none", g.calls)
	}
	if res.Reply == "" {
		t.Error("blocked-duplicate must carry a user-visible explanation")
	}
}

func TestRun_JustifiedRerunAllowed(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"```\n# rerun: a file was created since the last listing\nls\n```",
		"The new file is there.",
	}}
	g := &fakeGateway{}
	c := newController(p, g)
	sess := session.NewSession("test")
	sess.Commands().Append("ls", "", ledger.Result{ExitCode: 0})

	res, err := c.Run(context.Background(), sess, "check the listing again")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Disposition != DispositionCompleted {
		t.Errorf("disposition = %q", res.Disposition)
	}
	if len(g.calls) != 1 {
		t.Fatalf("gateway calls = %v", g.calls)
	}
	if res.Executed[0].Justification == "" {
		t.Error("justified rerun must record its justification")
	}
}

func TestRun_FailedCommandNeverRetriedVerbatim(t *testing.T) {
	p := &fakeProvider{responses: []string{"```\ncat /nope\n```"}}
	g := &fakeGateway{results: map[string]executor.Result{
		"cat /nope": {ExitCode: 1, Stderr: "No such file or directory"},
	}}
	c := newController(p, g)
	c.RetryBudget = 3
	sess := session.NewSession("test")

	res, err := c.Run(context.Background(), sess, "show that file")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(g.calls) != 1 {
		t.Errorf("gateway calls = %v, failed command must run exactly once", g.calls)
	}
	if res.Disposition != DispositionBlockedDuplicate {
		t.Errorf("disposition = %q", res.Disposition)
	}
	if !res.Executed[0].Result.Failed {
		t.Error("non-zero exit must be observed as a failed outcome")
	}
}

func TestRun_TimeoutYieldsAwaitingOutput(t *testing.T) {
	p := &fakeProvider{responses: []string{"```\nsleep 600\n```"}}
	g := &fakeGateway{err: executor.ErrTimeout}
	c := newController(p, g)
	sess := session.NewSession("test")

	res, err := c.Run(context.Background(), sess, "wait ten minutes")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Disposition != DispositionAwaitingOutput {
		t.Errorf("disposition = %q, want awaiting-output", res.Disposition)
	}
}

func TestRun_NoCommandsIsDirectAnswer(t *testing.T) {
	p := &fakeProvider{responses: []string{"No command needed, that flag just enables verbose mode."}}
	g := &fakeGateway{}
	c := newController(p, g)
	sess := session.NewSession("test")

	res, err := c.Run(context.Background(), sess, "what does -v do")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Disposition != DispositionCompleted {
		t.Errorf("disposition = %q", res.Disposition)
	}
	if len(g.calls) != 0 {
		t.Errorf("gateway calls = %v", g.calls)
	}
	if res.Reply == "" {
		t.Error("direct answer lost")
	}
}

func TestRun_AmbiguousInputKeepsSessionLanguage(t *testing.T) {
	p := &fakeProvider{responses: []string{"Fait."}}
	c := newController(p, &fakeGateway{})
	sess := session.NewSession("test")
	sess.SetLanguage("fr")

	res, err := c.Run(context.Background(), sess, "ls -la")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Language != language.French {
		t.Errorf("language = %v, want previous-turn French", res.Language)
	}
	if sess.Language() != "fr" {
		t.Errorf("session language = %q", sess.Language())
	}
}

func TestRun_LedgerAppendOnly(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"```\ndate\n```",
		"```\nuptime\n```",
		"All done.",
	}}
	g := &fakeGateway{}
	c := newController(p, g)
	sess := session.NewSession("test")

	before := sess.Commands().Len()
	if _, err := c.Run(context.Background(), sess, "date then uptime"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	after := sess.Commands().Len()
	if after < before {
		t.Errorf("ledger shrank: %d -> %d", before, after)
	}
	recs := sess.Commands().Records()
	if len(recs) != 2 {
		t.Fatalf("ledger records = %d, want 2", len(recs))
	}
	if recs[0].Seq >= recs[1].Seq {
		t.Errorf("sequence not increasing: %d, %d", recs[0].Seq, recs[1].Seq)
	}
}

func TestRun_ApprovalDeclinedSkipsCommand(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"```\nrm old.log\n```",
		"Left the file alone.",
	}}
	g := &fakeGateway{}
	c := newController(p, g)
	c.Approve = func(command, reason string) bool { return false }
	sess := session.NewSession("test")

	res, err := c.Run(context.Background(), sess, "delete the old log")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(g.calls) != 0 {
		t.Errorf("gateway calls = %v, declined command must not run", g.calls)
	}
	if res.Disposition != DispositionCompleted {
		t.Errorf("disposition = %q", res.Disposition)
	}
}

func TestRun_SameSignatureSiblingsRunOnce(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"Checking the history.\n```\ngit --no-pager log\n```\n```\ngit log\n```",
		"The last commit is from yesterday.",
	}}
	g := &fakeGateway{}
	c := newController(p, g)
	sess := session.NewSession("test")

	res, err := c.Run(context.Background(), sess, "show the recent commits")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Disposition != DispositionCompleted {
		t.Errorf("disposition = %q", res.Disposition)
	}
	if len(g.calls) != 1 || g.calls[0] != "git --no-pager log" {
		t.Errorf("gateway calls = %v, want one run of the first variant", g.calls)
	}
	counts := map[string]int{}
	for _, rec := range sess.Commands().Records() {
		if rec.Justification == "" {
			counts[rec.Signature]++
		}
	}
	for sig, n := range counts {
		if n > 1 {
			t.Errorf("%d unjustified records with signature %q", n, sig)
		}
	}
}

func TestRun_RetriesReportedOnDirectAnswer(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"```\nls\n```",
		"You already listed that directory; nothing changed.",
	}}
	g := &fakeGateway{}
	c := newController(p, g)
	sess := session.NewSession("test")
	sess.Commands().Append("ls", "", ledger.Result{ExitCode: 0})

	res, err := c.Run(context.Background(), sess, "list the files")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Disposition != DispositionCompleted {
		t.Errorf("disposition = %q", res.Disposition)
	}
	if res.Retries != 1 {
		t.Errorf("retries = %d, want the earlier rejection counted", res.Retries)
	}
	if len(g.calls) != 0 {
		t.Errorf("gateway calls = %v", g.calls)
	}
}
