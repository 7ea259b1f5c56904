// Package analyser classifies commands by the kind of approval they need.
package analyser

import (
	"strings"
)

var fileCommands = map[string]bool{
	"rm": true, "rmdir": true, "mv": true, "cp": true, "dd": true,
	"touch": true, "mkdir": true, "ln": true, "chmod": true, "chown": true,
	"chgrp": true, "shred": true, "nano": true, "vim": true, "vi": true,
	"emacs": true, "sed": true, "tee": true, "truncate": true, "split": true,
}

var packageManagers = map[string]bool{
	"brew": true, "apt": true, "apt-get": true, "yum": true, "dnf": true,
	"pacman": true, "npm": true, "yarn": true, "pnpm": true, "pip": true,
	"pip3": true, "cargo": true, "gem": true, "go": true, "composer": true,
	"mvn": true, "gradle": true, "snap": true, "flatpak": true, "apk": true,
	"zypper": true,
}

var networkCommands = map[string]bool{
	"curl": true, "wget": true, "fetch": true, "http": true, "scp": true,
	"rsync": true, "ssh": true, "sftp": true, "ftp": true, "nc": true,
	"netcat": true, "telnet": true,
}

var systemCommands = map[string]bool{
	"systemctl": true, "service": true, "launchctl": true, "export": true,
	"source": true, "chsh": true, "usermod": true, "useradd": true,
	"userdel": true, "groupadd": true, "groupdel": true, "passwd": true,
	"sudo": true, "su": true, "mount": true, "umount": true, "sysctl": true,
	"modprobe": true,
}

var dbCommands = map[string]bool{
	"mysql": true, "psql": true, "sqlite": true, "sqlite3": true,
	"mongo": true, "mongosh": true, "redis-cli": true, "influx": true,
	"cql": true, "cqlsh": true,
}

var sqlKeywords = []string{"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE"}

var dangerousPatterns = []string{
	"/dev/", "rm -rf", "rm -fr", ":(){ :|:& };:", "mkfs", "format",
}

var dangerousCommands = map[string]bool{
	"eval": true, "exec": true, "sh": true, "bash": true, "zsh": true,
	"python": true, "perl": true, "ruby": true, "kill": true,
	"killall": true, "pkill": true, "reboot": true, "shutdown": true,
	"halt": true, "crontab": true, "at": true, "batch": true,
}

var gitLocalModify = []string{
	"git add", "git commit", "git checkout", "git switch", "git restore",
	"git merge", "git rebase", "git cherry-pick", "git revert", "git stash",
	"git rm", "git mv", "git apply", "git am", "git reset", "git submodule",
}

var gitNetworkOps = []string{
	"git clone", "git fetch", "git pull", "git push",
	"git remote add", "git remote remove", "git remote set-url",
}

var gitDestructive = []string{
	"reset --hard", "clean -f", "clean -d", "clean -x", "branch -d",
	"branch -D", "push --force", "push -f", "push --mirror",
	"filter-branch", "reflog delete", "reflog expire", "prune", "gc --prune",
}

// RequiresApproval reports whether a command needs user approval before
// execution, with a short reason. Read-only commands return (false, "").
func RequiresApproval(command string) (bool, string) {
	cmd := strings.TrimSpace(command)
	base := BaseCommand(cmd)

	if base == "git" {
		return checkGit(cmd)
	}
	if fileCommands[base] || strings.Contains(cmd, ">>") || strings.Contains(cmd, " > ") {
		return true, "modifies files or system state"
	}
	if packageManagers[base] {
		return true, "installs or manages software"
	}
	if networkCommands[base] {
		return true, "performs network operations"
	}
	if isSystemConfig(cmd, base) {
		return true, "modifies system configuration"
	}
	if isDatabaseOp(cmd, base) {
		return true, "performs database operations"
	}
	if isRisky(cmd, base) {
		return true, "potentially risky operation"
	}
	return false, ""
}

// BaseCommand extracts the leading program name, skipping env var
// assignments and stopping at the first pipe segment.
func BaseCommand(cmd string) string {
	for _, word := range strings.Fields(cmd) {
		if strings.Contains(word, "=") {
			continue
		}
		if i := strings.IndexByte(word, '|'); i >= 0 {
			word = word[:i]
		}
		return strings.ToLower(word)
	}
	return ""
}

func isSystemConfig(cmd, base string) bool {
	if strings.Contains(cmd, "/etc/") || strings.Contains(cmd, "/sys/") {
		return true
	}
	return systemCommands[base]
}

func isDatabaseOp(cmd, base string) bool {
	if dbCommands[base] {
		return true
	}
	for _, kw := range sqlKeywords {
		if strings.Contains(cmd, kw) {
			return true
		}
	}
	return false
}

func isRisky(cmd, base string) bool {
	for _, p := range dangerousPatterns {
		if strings.Contains(cmd, p) {
			return true
		}
	}
	return dangerousCommands[base]
}

func checkGit(cmd string) (bool, string) {
	lower := strings.ToLower(cmd)

	for _, p := range gitLocalModify {
		if strings.HasPrefix(lower, p) {
			return true, "modifies git repository or remote"
		}
	}
	for _, p := range gitNetworkOps {
		if strings.HasPrefix(lower, p) {
			return true, "modifies git repository or remote"
		}
	}
	if strings.HasPrefix(lower, "git config") && !strings.Contains(lower, "--list") && !strings.Contains(lower, "--get") {
		return true, "modifies git repository or remote"
	}
	for _, p := range gitDestructive {
		if strings.Contains(lower, p) {
			return true, "destructive git operation"
		}
	}
	return false, ""
}
