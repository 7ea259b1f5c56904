package executor

import (
	"strings"
)

// pagerCommands invoke a pager by default and accept --no-pager.
var pagerCommands = map[string]bool{
	"git":        true,
	"systemctl":  true,
	"journalctl": true,
}

// interactivePagers are standalone pagers that block on a terminal.
var interactivePagers = map[string]string{
	"less": "cat",
	"more": "cat",
}

// Rewrite turns a proposed command into a non-interactive equivalent before
// dispatch. Paginated output is replaced by direct output; standalone pagers
// become cat. Commands with no interactive behavior pass through unchanged.
func Rewrite(command string) string {
	segments := strings.Split(command, "|")
	for i, seg := range segments {
		segments[i] = rewriteSegment(seg)
	}
	return strings.Join(segments, "|")
}

func rewriteSegment(segment string) string {
	fields := strings.Fields(segment)
	if len(fields) == 0 {
		return segment
	}

	if repl, ok := interactivePagers[fields[0]]; ok {
		fields[0] = repl
		return pad(segment, strings.Join(fields, " "))
	}

	if pagerCommands[fields[0]] && !hasFlag(fields, "--no-pager") {
		rewritten := append([]string{fields[0], "--no-pager"}, fields[1:]...)
		return pad(segment, strings.Join(rewritten, " "))
	}
	return segment
}

// pad restores the surrounding whitespace of the original pipe segment.
func pad(original, rewritten string) string {
	if strings.HasPrefix(original, " ") {
		rewritten = " " + rewritten
	}
	if strings.HasSuffix(original, " ") {
		rewritten += " "
	}
	return rewritten
}

func hasFlag(fields []string, flag string) bool {
	for _, f := range fields {
		if f == flag {
			return true
		}
	}
	return false
}
