package timeline

import (
	"path/filepath"
	"testing"

	"github.com/asksh/asksh/internal/ledger"
)

func newTestService(t *testing.T) *TimelineService {
	t.Helper()
	svc, err := NewTimelineService(filepath.Join(t.TempDir(), "timeline.db"))
	if err != nil {
		t.Fatalf("NewTimelineService: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestTurnLifecycle(t *testing.T) {
	svc := newTestService(t)

	turnID, err := svc.BeginTurn("default", "what time is it", "fr")
	if err != nil {
		t.Fatalf("BeginTurn: %v", err)
	}
	if turnID == "" {
		t.Fatal("empty turn ID")
	}

	if err := svc.CompleteTurn(turnID, DispositionCompleted, 0, "Il est midi."); err != nil {
		t.Fatalf("CompleteTurn: %v", err)
	}

	turns, err := svc.RecentTurns(10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(turns))
	}
	got := turns[0]
	if got.TurnID != turnID {
		t.Errorf("turn_id = %q", got.TurnID)
	}
	if got.Language != "fr" {
		t.Errorf("language = %q", got.Language)
	}
	if got.Disposition != DispositionCompleted {
		t.Errorf("disposition = %q", got.Disposition)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

func TestRecordCommand(t *testing.T) {
	svc := newTestService(t)

	turnID, err := svc.BeginTurn("default", "show date", "en")
	if err != nil {
		t.Fatalf("BeginTurn: %v", err)
	}

	rec := ledger.Record{
		Seq:       1,
		Raw:       "date",
		Signature: "date",
		Result:    ledger.Result{ExitCode: 0, Stdout: "Sat Aug 30\n"},
	}
	if err := svc.RecordCommand(turnID, rec, ""); err != nil {
		t.Fatalf("RecordCommand: %v", err)
	}
	rec2 := ledger.Record{
		Seq:           2,
		Raw:           "date -u",
		Signature:     "date -u",
		Justification: "UTC requested this time",
		Result:        ledger.Result{ExitCode: 1, Stderr: "bad flag", Failed: true},
	}
	if err := svc.RecordCommand(turnID, rec2, "touches system clock settings"); err != nil {
		t.Fatalf("RecordCommand: %v", err)
	}

	cmds, err := svc.CommandsForTurn(turnID)
	if err != nil {
		t.Fatalf("CommandsForTurn: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].Raw != "date" || cmds[1].Raw != "date -u" {
		t.Errorf("commands out of order: %q, %q", cmds[0].Raw, cmds[1].Raw)
	}
	if !cmds[1].Failed {
		t.Error("second command should be marked failed")
	}
	if cmds[1].Justification == "" {
		t.Error("justification not persisted")
	}
	if cmds[1].ApprovalReason == "" {
		t.Error("approval reason not persisted")
	}
}

func TestRecentCommandsOrder(t *testing.T) {
	svc := newTestService(t)

	turnID, _ := svc.BeginTurn("default", "x", "en")
	for i, raw := range []string{"ls", "pwd", "whoami"} {
		rec := ledger.Record{Seq: i + 1, Raw: raw, Signature: raw}
		if err := svc.RecordCommand(turnID, rec, ""); err != nil {
			t.Fatalf("RecordCommand(%s): %v", raw, err)
		}
	}

	cmds, err := svc.RecentCommands(2)
	if err != nil {
		t.Fatalf("RecentCommands: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].Raw != "whoami" {
		t.Errorf("newest first: got %q", cmds[0].Raw)
	}
}
