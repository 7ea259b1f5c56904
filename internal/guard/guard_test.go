package guard

import (
	"testing"

	"github.com/asksh/asksh/internal/ledger"
)

func TestCheck_FirstOccurrence(t *testing.T) {
	l := ledger.New(0)
	d := Check("ls -la", "", l)
	if d.Verdict != Allow {
		t.Errorf("first occurrence should be allowed, got %v (%s)", d.Verdict, d.Reason)
	}
}

func TestCheck_ImmediateRepeatRejected(t *testing.T) {
	l := ledger.New(0)
	l.Append("ls -la", "", ledger.Result{ExitCode: 0})

	d := Check("ls -la", "", l)
	if d.Verdict != Reject {
		t.Fatalf("immediate unjustified repeat must be rejected, got %v", d.Verdict)
	}
	if d.Reason == "" {
		t.Error("rejection must carry a reason for re-proposal feedback")
	}
	if d.PriorSeq != 0 {
		t.Errorf("PriorSeq = %d, want 0", d.PriorSeq)
	}
}

func TestCheck_ImmediateRepeatNormalizedMatch(t *testing.T) {
	l := ledger.New(0)
	l.Append("git --no-pager log", "", ledger.Result{ExitCode: 0})

	// Same signature after normalization.
	if d := Check("git log", "", l); d.Verdict != Reject {
		t.Errorf("normalized-equal immediate repeat must be rejected, got %v", d.Verdict)
	}
}

func TestCheck_ImmediateRepeatJustified(t *testing.T) {
	l := ledger.New(0)
	l.Append("git status", "", ledger.Result{ExitCode: 0})

	d := Check("git status", "files changed since last run", l)
	if d.Verdict != AllowWithJustification {
		t.Errorf("justified repeat should pass, got %v", d.Verdict)
	}
}

func TestCheck_OlderRepeatNeedsJustification(t *testing.T) {
	l := ledger.New(0)
	l.Append("git status", "", ledger.Result{ExitCode: 0})
	l.Append("git add .", "", ledger.Result{ExitCode: 0})

	if d := Check("git status", "", l); d.Verdict != Reject {
		t.Errorf("older repeat without justification must be rejected, got %v", d.Verdict)
	}

	d := Check("git status", "state changed since last run", l)
	if d.Verdict != AllowWithJustification {
		t.Fatalf("older justified repeat should pass, got %v", d.Verdict)
	}
	if d.PriorSeq != 0 {
		t.Errorf("PriorSeq = %d, want 0", d.PriorSeq)
	}
}

func TestCheck_DifferentCommandAllowed(t *testing.T) {
	l := ledger.New(0)
	l.Append("ls -la", "", ledger.Result{ExitCode: 0})

	if d := Check("ls -la /subdir", "", l); d.Verdict != Allow {
		t.Errorf("different arguments are a different command, got %v", d.Verdict)
	}
}
