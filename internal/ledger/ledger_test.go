package ledger

import (
	"testing"
)

func TestSignature_WhitespaceFolding(t *testing.T) {
	a := Signature("ls   -la    /tmp")
	b := Signature("ls -la /tmp")
	if a != b {
		t.Errorf("whitespace variance should fold: %q vs %q", a, b)
	}
}

func TestSignature_InertFlags(t *testing.T) {
	a := Signature("git --no-pager log")
	b := Signature("git log")
	if a != b {
		t.Errorf("--no-pager should fold: %q vs %q", a, b)
	}
}

func TestSignature_FlagOrderSignificant(t *testing.T) {
	a := Signature("ls -l -a")
	b := Signature("ls -a -l")
	if a == b {
		t.Error("flag order must remain a distinguishing feature")
	}
}

func TestSignature_FlagSetSignificant(t *testing.T) {
	a := Signature("ls -la")
	b := Signature("ls -la /subdir")
	if a == b {
		t.Error("different arguments must produce different signatures")
	}
}

func TestSignature_RelativePathFolding(t *testing.T) {
	a := Signature("cat ./notes.txt")
	b := Signature("cat notes.txt")
	if a != b {
		t.Errorf("leading ./ should fold: %q vs %q", a, b)
	}
}

func TestSignature_TrailingSemicolon(t *testing.T) {
	if Signature("date;") != Signature("date") {
		t.Error("trailing semicolon should fold")
	}
}

func TestAppend_SequenceAndImmutability(t *testing.T) {
	l := New(0)

	seq0 := l.Append("ls -la", "", Result{ExitCode: 0, Stdout: "a"})
	seq1 := l.Append("date", "", Result{ExitCode: 0, Stdout: "b"})
	if seq0 != 0 || seq1 != 1 {
		t.Fatalf("sequence indices = %d, %d, want 0, 1", seq0, seq1)
	}

	records := l.Records()
	records[0].Raw = "tampered"
	if got := l.Records()[0].Raw; got != "ls -la" {
		t.Errorf("Records() must return a copy, internal Raw = %q", got)
	}
}

func TestAppend_MonotonicLength(t *testing.T) {
	l := New(0)
	prev := 0
	for i := 0; i < 10; i++ {
		l.Append("echo hi", "", Result{})
		if l.Len() < prev {
			t.Fatal("ledger length must be monotonically non-decreasing")
		}
		prev = l.Len()
	}
}

func TestAppend_RetentionEviction(t *testing.T) {
	l := New(3)
	for i := 0; i < 5; i++ {
		l.Append("echo hi", "", Result{})
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want retention window 3", l.Len())
	}
	// Sequence indices keep counting past evictions.
	last, ok := l.Last()
	if !ok || last.Seq != 4 {
		t.Errorf("last Seq = %d, want 4", last.Seq)
	}
}

func TestFindSimilar(t *testing.T) {
	l := New(0)
	l.Append("ls -la", "", Result{})
	l.Append("date", "", Result{})
	l.Append("ls   -la", "", Result{})

	matches := l.FindSimilar(Signature("ls -la"))
	if len(matches) != 2 {
		t.Fatalf("FindSimilar returned %d records, want 2", len(matches))
	}
	if matches[0].Seq != 0 || matches[1].Seq != 2 {
		t.Errorf("matches out of order: %d, %d", matches[0].Seq, matches[1].Seq)
	}

	if got := l.FindSimilar(Signature("whoami")); got != nil {
		t.Errorf("unseen signature should return nil, got %v", got)
	}
}
