package timeline

import (
	"time"
)

// TurnRecord represents one completed or in-flight conversational turn.
type TurnRecord struct {
	ID          int64      `json:"id"`
	TurnID      string     `json:"turn_id"`
	SessionKey  string     `json:"session_key"`
	UserInput   string     `json:"user_input"`
	Language    string     `json:"language"` // BCP-47 tag
	Disposition string     `json:"disposition"`
	Retries     int        `json:"retries"`
	Reply       string     `json:"reply,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Turn dispositions.
const (
	DispositionCompleted        = "completed"
	DispositionBlockedDuplicate = "blocked-duplicate"
	DispositionAwaitingOutput   = "awaiting-output"
)

// CommandRecord represents one executed command within a turn.
type CommandRecord struct {
	ID             int64     `json:"id"`
	TurnID         string    `json:"turn_id"`
	Seq            int       `json:"seq"`
	Raw            string    `json:"raw"`
	Signature      string    `json:"signature"`
	Justification  string    `json:"justification,omitempty"`
	ApprovalReason string    `json:"approval_reason,omitempty"`
	ExitCode       int       `json:"exit_code"`
	Stdout         string    `json:"stdout,omitempty"`
	Stderr         string    `json:"stderr,omitempty"`
	Failed         bool      `json:"failed"`
	CreatedAt      time.Time `json:"created_at"`
}

const Schema = `
CREATE TABLE IF NOT EXISTS turns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id TEXT UNIQUE NOT NULL,
	session_key TEXT NOT NULL,
	user_input TEXT NOT NULL,
	language TEXT DEFAULT '',
	disposition TEXT DEFAULT '',
	retries INTEGER NOT NULL DEFAULT 0,
	reply TEXT DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_key);
CREATE INDEX IF NOT EXISTS idx_turns_created ON turns(created_at);

CREATE TABLE IF NOT EXISTS commands (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	raw TEXT NOT NULL,
	signature TEXT NOT NULL,
	justification TEXT DEFAULT '',
	approval_reason TEXT DEFAULT '',
	exit_code INTEGER NOT NULL DEFAULT 0,
	stdout TEXT DEFAULT '',
	stderr TEXT DEFAULT '',
	failed BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_commands_turn ON commands(turn_id);
CREATE INDEX IF NOT EXISTS idx_commands_signature ON commands(signature);
CREATE INDEX IF NOT EXISTS idx_commands_created ON commands(created_at);
`
