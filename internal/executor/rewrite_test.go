package executor

import "testing"

func TestRewrite_GitPager(t *testing.T) {
	if got := Rewrite("git log"); got != "git --no-pager log" {
		t.Errorf("Rewrite('git log') = %q", got)
	}
}

func TestRewrite_AlreadyNonInteractive(t *testing.T) {
	cmd := "git --no-pager log"
	if got := Rewrite(cmd); got != cmd {
		t.Errorf("Rewrite(%q) = %q, want unchanged", cmd, got)
	}
}

func TestRewrite_StandalonePager(t *testing.T) {
	if got := Rewrite("less /var/log/syslog"); got != "cat /var/log/syslog" {
		t.Errorf("Rewrite('less ...') = %q", got)
	}
}

func TestRewrite_PipedPager(t *testing.T) {
	if got := Rewrite("dmesg | less"); got != "dmesg | cat" {
		t.Errorf("Rewrite('dmesg | less') = %q", got)
	}
}

func TestRewrite_PlainCommandUnchanged(t *testing.T) {
	for _, cmd := range []string{"date", "ls -la", "echo hello | wc -c"} {
		if got := Rewrite(cmd); got != cmd {
			t.Errorf("Rewrite(%q) = %q, want unchanged", cmd, got)
		}
	}
}
