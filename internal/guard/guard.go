// Package guard vetoes or approves re-proposal of previously seen commands.
package guard

import (
	"fmt"

	"github.com/asksh/asksh/internal/ledger"
)

// Verdict classifies a guard decision.
type Verdict int

const (
	// Allow means no prior record matches the candidate.
	Allow Verdict = iota
	// AllowWithJustification means a prior record matches and the caller
	// attached a justification. The justification is recorded alongside the
	// new record for audit.
	AllowWithJustification
	// Reject means the candidate must not run as proposed.
	Reject
)

// Decision is the result of a guard check.
type Decision struct {
	Verdict Verdict
	Reason  string
	// PriorSeq is the sequence index of the matching record, when any.
	PriorSeq int
}

// Check evaluates a proposed command against the session ledger. It is a
// pure function of (candidate, justification, ledger contents).
//
// Two tiers apply in order: an exact signature match against the last
// executed record signals a stalled loop and is rejected unless justified;
// a match against any earlier record is allowed only when a justification
// is attached, since re-checking state after an action can be legitimate.
func Check(candidate, justification string, l *ledger.Ledger) Decision {
	sig := ledger.Signature(candidate)

	if last, ok := l.Last(); ok && last.Signature == sig {
		if justification != "" {
			return Decision{
				Verdict:  AllowWithJustification,
				Reason:   "immediate repeat justified",
				PriorSeq: last.Seq,
			}
		}
		return Decision{
			Verdict:  Reject,
			Reason:   fmt.Sprintf("command %q was just executed; choose a different approach or justify re-running it", candidate),
			PriorSeq: last.Seq,
		}
	}

	matches := l.FindSimilar(sig)
	if len(matches) == 0 {
		return Decision{Verdict: Allow}
	}

	prior := matches[len(matches)-1]
	if justification == "" {
		return Decision{
			Verdict:  Reject,
			Reason:   fmt.Sprintf("command %q already ran earlier in this session (step %d); re-running needs a justification such as state having changed", candidate, prior.Seq),
			PriorSeq: prior.Seq,
		}
	}
	return Decision{
		Verdict:  AllowWithJustification,
		Reason:   "repeat of earlier command justified",
		PriorSeq: prior.Seq,
	}
}
