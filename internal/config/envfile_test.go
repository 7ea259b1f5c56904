package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile_Parsing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env")
	content := `# comment
ASKSH_TEST_PLAIN=value
export ASKSH_TEST_EXPORT=exported
ASKSH_TEST_QUOTED="with spaces"
ASKSH_TEST_SINGLE='single'

not-a-pair
=nokey
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"ASKSH_TEST_PLAIN", "ASKSH_TEST_EXPORT", "ASKSH_TEST_QUOTED", "ASKSH_TEST_SINGLE"} {
		os.Unsetenv(key)
		t.Cleanup(func() { os.Unsetenv(key) })
	}

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}

	cases := map[string]string{
		"ASKSH_TEST_PLAIN":  "value",
		"ASKSH_TEST_EXPORT": "exported",
		"ASKSH_TEST_QUOTED": "with spaces",
		"ASKSH_TEST_SINGLE": "single",
	}
	for key, want := range cases {
		if got := os.Getenv(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestSplitEnvLine(t *testing.T) {
	cases := []struct {
		line     string
		key, val string
		ok       bool
	}{
		{"KEY=value", "KEY", "value", true},
		{"export KEY=value", "KEY", "value", true},
		{`KEY="a b"`, "KEY", "a b", true},
		{"KEY='a b'", "KEY", "a b", true},
		{"KEY=", "KEY", "", true},
		{"# comment", "", "", false},
		{"   ", "", "", false},
		{"no-equals", "", "", false},
		{"=nokey", "", "", false},
	}
	for _, c := range cases {
		key, val, ok := splitEnvLine(c.line)
		if key != c.key || val != c.val || ok != c.ok {
			t.Errorf("splitEnvLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.line, key, val, ok, c.key, c.val, c.ok)
		}
	}
}

func TestLoadEnvFile_NeverOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env")
	if err := os.WriteFile(path, []byte("ASKSH_TEST_KEEP=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASKSH_TEST_KEEP", "process")

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if got := os.Getenv("ASKSH_TEST_KEEP"); got != "process" {
		t.Errorf("ASKSH_TEST_KEEP = %q, process env must win", got)
	}
}
