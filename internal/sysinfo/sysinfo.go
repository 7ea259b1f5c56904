// Package sysinfo discovers the host environment used in prompt rendering.
package sysinfo

import (
	"os"
	"path/filepath"
	"runtime"
)

// Info describes the user's machine as seen by the proposal engine.
type Info struct {
	OS    string
	Arch  string
	Shell string
}

// Collect gathers os, architecture, and shell information.
func Collect() Info {
	return Info{
		OS:    runtime.GOOS,
		Arch:  runtime.GOARCH,
		Shell: detectShell(),
	}
}

// detectShell reads SHELL, falling back to version markers that bash and zsh
// export even when SHELL is unset (e.g. inside some containers).
func detectShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	if os.Getenv("BASH_VERSION") != "" {
		return "bash"
	}
	if os.Getenv("ZSH_VERSION") != "" {
		return "zsh"
	}
	return "unknown"
}
