package ledger

import (
	"strings"
)

// inertFlags are flags that change presentation, not effect. Their presence
// never distinguishes two commands for duplicate detection.
var inertFlags = map[string]bool{
	"--no-pager": true,
	"--color":    true,
	"--no-color": true,
}

// Signature normalizes a raw command into its comparison form. Folding is
// limited to substitutions that cannot change what the command does:
// whitespace runs, a trailing semicolon, inert presentation flags, and a
// leading "./" on path arguments. Flag order and flag set stay significant.
func Signature(raw string) string {
	fields := strings.Fields(strings.TrimSpace(raw))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if inertFlags[f] || strings.HasPrefix(f, "--color=") {
			continue
		}
		f = strings.TrimSuffix(f, ";")
		if f == "" {
			continue
		}
		out = append(out, foldRelativePath(f))
	}
	return strings.Join(out, " ")
}

// foldRelativePath strips a leading "./" so that "./a/b" and "a/b" compare
// equal. This is the only externally-resolvable path equivalence; absolute
// paths are left alone because the working directory is not part of the
// signature.
func foldRelativePath(field string) string {
	if strings.HasPrefix(field, "./") && len(field) > 2 {
		return field[2:]
	}
	return field
}
