// Package timeline persists an audit trail of turns and executed
// commands in sqlite.
package timeline

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/asksh/asksh/internal/ledger"
)

type TimelineService struct {
	db *sql.DB
}

func NewTimelineService(dbPath string) (*TimelineService, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open timeline db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	// Best-effort migration for existing dbs (no-op if column exists).
	_, _ = db.Exec(`ALTER TABLE commands ADD COLUMN approval_reason TEXT DEFAULT ''`)
	_, _ = db.Exec(`ALTER TABLE turns ADD COLUMN reply TEXT DEFAULT ''`)

	return &TimelineService{db: db}, nil
}

// Close closes the underlying database.
func (s *TimelineService) Close() error {
	return s.db.Close()
}

// BeginTurn records a new turn and returns its generated ID.
func (s *TimelineService) BeginTurn(sessionKey, userInput, language string) (string, error) {
	turnID := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO turns (turn_id, session_key, user_input, language) VALUES (?, ?, ?, ?)`,
		turnID, sessionKey, userInput, language,
	)
	if err != nil {
		return "", fmt.Errorf("insert turn: %w", err)
	}
	return turnID, nil
}

// CompleteTurn stamps the turn with its disposition and final reply.
func (s *TimelineService) CompleteTurn(turnID, disposition string, retries int, reply string) error {
	_, err := s.db.Exec(
		`UPDATE turns SET disposition = ?, retries = ?, reply = ?, completed_at = ? WHERE turn_id = ?`,
		disposition, retries, reply, time.Now().UTC(), turnID,
	)
	if err != nil {
		return fmt.Errorf("complete turn: %w", err)
	}
	return nil
}

// RecordCommand appends one executed command to the audit trail.
func (s *TimelineService) RecordCommand(turnID string, rec ledger.Record, approvalReason string) error {
	_, err := s.db.Exec(
		`INSERT INTO commands (turn_id, seq, raw, signature, justification, approval_reason, exit_code, stdout, stderr, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turnID, rec.Seq, rec.Raw, rec.Signature, rec.Justification, approvalReason,
		rec.Result.ExitCode, rec.Result.Stdout, rec.Result.Stderr, rec.Result.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert command: %w", err)
	}
	return nil
}

// RecentTurns returns the newest turns, most recent first.
func (s *TimelineService) RecentTurns(limit int) ([]TurnRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, turn_id, session_key, user_input, language, disposition, retries, reply, created_at, completed_at
		 FROM turns ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var result []TurnRecord
	for rows.Next() {
		var t TurnRecord
		var completed sql.NullTime
		if err := rows.Scan(&t.ID, &t.TurnID, &t.SessionKey, &t.UserInput, &t.Language,
			&t.Disposition, &t.Retries, &t.Reply, &t.CreatedAt, &completed); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if completed.Valid {
			t.CompletedAt = &completed.Time
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// RecentCommands returns the newest executed commands, most recent first.
func (s *TimelineService) RecentCommands(limit int) ([]CommandRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, turn_id, seq, raw, signature, justification, approval_reason, exit_code, stdout, stderr, failed, created_at
		 FROM commands ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	var result []CommandRecord
	for rows.Next() {
		var c CommandRecord
		if err := rows.Scan(&c.ID, &c.TurnID, &c.Seq, &c.Raw, &c.Signature, &c.Justification,
			&c.ApprovalReason, &c.ExitCode, &c.Stdout, &c.Stderr, &c.Failed, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// CommandsForTurn returns the commands of one turn in execution order.
func (s *TimelineService) CommandsForTurn(turnID string) ([]CommandRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, turn_id, seq, raw, signature, justification, approval_reason, exit_code, stdout, stderr, failed, created_at
		 FROM commands WHERE turn_id = ? ORDER BY seq ASC`, turnID)
	if err != nil {
		return nil, fmt.Errorf("query turn commands: %w", err)
	}
	defer rows.Close()

	var result []CommandRecord
	for rows.Next() {
		var c CommandRecord
		if err := rows.Scan(&c.ID, &c.TurnID, &c.Seq, &c.Raw, &c.Signature, &c.Justification,
			&c.ApprovalReason, &c.ExitCode, &c.Stdout, &c.Stderr, &c.Failed, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
