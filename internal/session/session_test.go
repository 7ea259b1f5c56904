package session

import (
	"testing"

	"github.com/asksh/asksh/internal/ledger"
)

func TestSession_AddAndHistory(t *testing.T) {
	s := NewSession("test")
	s.AddMessage("user", "hello")
	s.AddMessage("assistant", "hi")
	s.AddMessage("user", "bye")

	history := s.GetHistory(2)
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Content != "hi" || history[1].Content != "bye" {
		t.Errorf("history = %+v, want last two messages", history)
	}
}

func TestSession_Language(t *testing.T) {
	s := NewSession("test")
	if s.Language() != "" {
		t.Errorf("fresh session language = %q", s.Language())
	}
	s.SetLanguage("fr")
	if s.Language() != "fr" {
		t.Errorf("language = %q, want fr", s.Language())
	}
}

func TestManager_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	s := m.GetOrCreate("alpha")
	s.AddMessage("user", "list files")
	s.AddMessage("assistant", "```\nls\n```")
	s.SetLanguage("en")
	if err := m.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A fresh manager must read it back from disk.
	m2 := NewManager(dir)
	loaded := m2.GetOrCreate("alpha")
	if len(loaded.Messages) != 2 {
		t.Fatalf("loaded %d messages, want 2", len(loaded.Messages))
	}
	if loaded.Messages[0].Content != "list files" {
		t.Errorf("first message = %q", loaded.Messages[0].Content)
	}
	if loaded.Language() != "en" {
		t.Errorf("loaded language = %q, want en", loaded.Language())
	}
}

func TestManager_LedgerNotPersisted(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	s := m.GetOrCreate("beta")
	s.Commands().Append("ls", "", ledger.Result{ExitCode: 0})
	if err := m.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewManager(dir).GetOrCreate("beta")
	if loaded.Commands().Len() != 0 {
		t.Errorf("reloaded session carries %d ledger records, want 0", loaded.Commands().Len())
	}
}

func TestManager_List(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	for _, key := range []string{"one", "two"} {
		s := m.GetOrCreate(key)
		s.AddMessage("user", "hi")
		if err := m.Save(s); err != nil {
			t.Fatalf("Save(%s): %v", key, err)
		}
	}

	infos := m.List()
	if len(infos) != 2 {
		t.Fatalf("List returned %d sessions, want 2", len(infos))
	}
	for _, info := range infos {
		if info.UpdatedAt.IsZero() {
			t.Errorf("session %s has zero UpdatedAt", info.Key)
		}
	}
}

func TestManager_PathInjection(t *testing.T) {
	m := NewManager(t.TempDir())
	s := m.GetOrCreate("../../etc/passwd")
	if err := m.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	infos := m.List()
	if len(infos) != 1 {
		t.Fatalf("List returned %d sessions, want 1", len(infos))
	}
}
