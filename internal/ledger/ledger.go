// Package ledger keeps the per-session history of executed commands.
package ledger

import (
	"log/slog"
	"time"
)

// DefaultRetention is the number of records kept before eviction starts.
const DefaultRetention = 512

// Result captures the outcome of one command execution.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Failed marks gateway-level failures (timeout, spawn error) that have
	// no meaningful exit code.
	Failed bool
}

// Record is one executed command. Immutable once appended.
type Record struct {
	Seq           int
	Raw           string
	Signature     string
	Justification string
	Result        Result
	At            time.Time
}

// Ledger is an append-only sequence of Records, owned by a single session.
// Not safe for concurrent use; the turn controller runs strictly
// sequentially.
type Ledger struct {
	records   []Record
	nextSeq   int
	retention int
}

// New creates a ledger with the given retention window. retention <= 0 uses
// DefaultRetention.
func New(retention int) *Ledger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Ledger{retention: retention}
}

// Append adds a record for an executed command and returns its sequence
// index. Appending never fails: when the retention window is exceeded the
// oldest records are evicted and the eviction is logged. Sequence indices
// keep counting across evictions.
func (l *Ledger) Append(raw, justification string, result Result) int {
	rec := Record{
		Seq:           l.nextSeq,
		Raw:           raw,
		Signature:     Signature(raw),
		Justification: justification,
		Result:        result,
		At:            time.Now(),
	}
	l.nextSeq++
	l.records = append(l.records, rec)

	if len(l.records) > l.retention {
		evicted := len(l.records) - l.retention
		l.records = append([]Record(nil), l.records[evicted:]...)
		slog.Warn("ledger retention exceeded, evicted oldest records",
			"evicted", evicted, "retention", l.retention)
	}
	return rec.Seq
}

// FindSimilar returns all prior records whose normalized signature exactly
// matches the candidate signature, oldest first.
func (l *Ledger) FindSimilar(signature string) []Record {
	var out []Record
	for _, rec := range l.records {
		if rec.Signature == signature {
			out = append(out, rec)
		}
	}
	return out
}

// Last returns the most recent record, or false when the ledger is empty.
func (l *Ledger) Last() (Record, bool) {
	if len(l.records) == 0 {
		return Record{}, false
	}
	return l.records[len(l.records)-1], true
}

// Len returns the number of retained records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of the retained records, oldest first.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
