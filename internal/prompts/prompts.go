// Package prompts renders the prompt templates sent to the LLM.
// Every template can be overridden through an environment variable so
// users can tune the assistant without rebuilding it.
package prompts

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/asksh/asksh/internal/sysinfo"
)

const defaultSystemPrompt = `You are a shell assistant running on the user's machine.

Environment:
- OS: {{.OS}}
- Architecture: {{.Arch}}
- Shell: {{.Shell}}

When the user asks for something that can be done with shell commands,
answer with a short explanation followed by the commands, each inside
its own fenced code block:

` + "```" + `
command here
` + "```" + `

Rules:
- Propose commands that run non-interactively and terminate on their own.
- Never propose a command you were just told was already run; change the
  approach. If a rerun is genuinely needed (e.g. state changed), put a
  comment line "# rerun: <reason>" inside the code block.
- If no command is needed, just answer the question.
- Reply in {{.Language}}.`

const defaultUserPrompt = `User's request:
{{.Input}}`

const defaultTerminalOutputPrompt = `Command result:
{{.Output}}`

// Vars carries the values available to the system prompt template.
type Vars struct {
	OS       string
	Arch     string
	Shell    string
	Language string
}

// System renders the system prompt for the given host and reply language.
// Language is a human-readable name, not a BCP-47 tag.
func System(info sysinfo.Info, language string) (string, error) {
	return render("ASKSH_SYSTEM_PROMPT", defaultSystemPrompt, Vars{
		OS:       info.OS,
		Arch:     info.Arch,
		Shell:    info.Shell,
		Language: language,
	})
}

// User renders the wrapper around the user's request.
func User(input string) (string, error) {
	return render("ASKSH_USER_PROMPT", defaultUserPrompt, struct{ Input string }{input})
}

// TerminalOutput renders the wrapper around captured command output.
func TerminalOutput(output string) (string, error) {
	return render("ASKSH_TERMINAL_OUTPUT_PROMPT", defaultTerminalOutputPrompt, struct{ Output string }{output})
}

func render(envVar, fallback string, data any) (string, error) {
	text := fallback
	if override := os.Getenv(envVar); strings.TrimSpace(override) != "" {
		text = override
	}
	tmpl, err := template.New(envVar).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", envVar, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", envVar, err)
	}
	return sb.String(), nil
}
