package turn

import (
	"strings"

	"github.com/asksh/asksh/internal/ledger"
)

// Candidate is one command lifted from a proposal, with an optional
// rerun justification.
type Candidate struct {
	Command       string
	Justification string
}

// Proposal is the parsed form of one assistant response.
type Proposal struct {
	Explanation string
	Candidates  []Candidate
}

// languageHints are fence info strings dropped from the first block line.
var languageHints = map[string]struct{}{
	"bash":    {},
	"sh":      {},
	"zsh":     {},
	"shell":   {},
	"console": {},
}

const rerunMarker = "# rerun:"

// ParseProposal splits an assistant response into explanation text and
// command candidates. Commands live in fenced code blocks; a block may
// carry a "# rerun: <reason>" line justifying a repeat. Multi-line
// blocks collapse into one "a; b" command. Duplicates are dropped,
// first occurrence wins.
func ParseProposal(text string) Proposal {
	var explanation []string
	var candidates []Candidate

	lines := strings.Split(text, "\n")
	inBlock := false
	var blockLines []string

	flush := func() {
		cmd, justification := parseBlock(blockLines)
		blockLines = nil
		if cmd != "" {
			candidates = append(candidates, Candidate{Command: cmd, Justification: justification})
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				flush()
				inBlock = false
				continue
			}
			rest := strings.TrimPrefix(trimmed, "```")
			// Whole block on one line: ```date```
			if idx := strings.Index(rest, "```"); idx >= 0 {
				blockLines = append(blockLines, rest[:idx])
				flush()
				continue
			}
			inBlock = true
			// Inline hint on the opening fence (```bash).
			if rest != "" {
				if _, ok := languageHints[strings.ToLower(rest)]; !ok {
					blockLines = append(blockLines, rest)
				}
			}
			continue
		}
		if inBlock {
			blockLines = append(blockLines, line)
			continue
		}
		explanation = append(explanation, line)
	}
	if inBlock {
		// Unterminated fence; treat the tail as a block anyway.
		flush()
	}

	return Proposal{
		Explanation: strings.TrimSpace(strings.Join(explanation, "\n")),
		Candidates:  dedupe(candidates),
	}
}

func parseBlock(lines []string) (cmd, justification string) {
	var parts []string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if i == 0 {
			if _, ok := languageHints[strings.ToLower(trimmed)]; ok {
				continue
			}
		}
		if strings.HasPrefix(strings.ToLower(trimmed), rerunMarker) {
			justification = strings.TrimSpace(trimmed[len(rerunMarker):])
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		parts = append(parts, trimmed)
	}
	cmd = strings.Join(parts, "; ")
	cmd = stripShellPrefix(cmd)
	return cmd, justification
}

// stripShellPrefix removes leading "bash;", "sh;", "zsh;" noise some
// models prepend when they mistake the fence hint for content.
func stripShellPrefix(cmd string) string {
	for _, prefix := range []string{"bash;", "sh;", "zsh;"} {
		if strings.HasPrefix(cmd, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(cmd, prefix))
		}
	}
	return cmd
}

// dedupe drops candidates that normalize to a signature already seen in
// the same proposal, so variants like "git log" and "git --no-pager log"
// collapse to one command. First occurrence wins.
func dedupe(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	var out []Candidate
	for _, c := range candidates {
		sig := ledger.Signature(c.Command)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, c)
	}
	return out
}
