// ABOUTME: SQLite attempt journal recording session lifecycle for diagnosis
// ABOUTME: Audit trail of attempts and transitions using modernc.org/sqlite

package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Recorder receives session lifecycle notifications. Implementations must be
// safe for concurrent use; the supervise loop and supervisor both write.
type Recorder interface {
	AttemptStarted(ctx context.Context, attemptID string, startedAt time.Time) error
	Transition(ctx context.Context, attemptID, what, detail string) error
	AttemptEnded(ctx context.Context, attemptID, outcome string, eventsSeen int64) error
	Close() error
}

// Noop discards all records. Used when the journal is disabled.
type Noop struct{}

// NewNoop returns a recorder that discards everything.
func NewNoop() *Noop { return &Noop{} }

func (*Noop) AttemptStarted(context.Context, string, time.Time) error   { return nil }
func (*Noop) Transition(context.Context, string, string, string) error  { return nil }
func (*Noop) AttemptEnded(context.Context, string, string, int64) error { return nil }
func (*Noop) Close() error                                              { return nil }

// Journal persists attempt records to SQLite. It is written on lifecycle
// transitions only, never on the frame hot path.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a journal at the given path. The schema is created if it
// doesn't exist and parent directories are created as needed.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	// WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	j := &Journal{
		db:     db,
		logger: logger.With("component", "journal"),
	}

	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	j.logger.Info("attempt journal opened", "path", path)
	return j, nil
}

// createSchema creates the journal tables if they don't exist.
func (j *Journal) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			outcome TEXT,
			events_seen INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS transitions (
			attempt_id TEXT NOT NULL,
			at TEXT NOT NULL,
			what TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_transitions_attempt ON transitions(attempt_id);
	`
	_, err := j.db.Exec(schema)
	return err
}

// AttemptStarted records the beginning of a connection attempt.
func (j *Journal) AttemptStarted(ctx context.Context, attemptID string, startedAt time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO attempts (id, started_at) VALUES (?, ?)`,
		attemptID, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording attempt start: %w", err)
	}
	return nil
}

// Transition records a lifecycle transition within an attempt.
func (j *Journal) Transition(ctx context.Context, attemptID, what, detail string) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO transitions (attempt_id, at, what, detail) VALUES (?, ?, ?, ?)`,
		attemptID, time.Now().UTC().Format(time.RFC3339Nano), what, detail,
	)
	if err != nil {
		return fmt.Errorf("recording transition: %w", err)
	}
	return nil
}

// AttemptEnded records the outcome of a finished attempt.
func (j *Journal) AttemptEnded(ctx context.Context, attemptID, outcome string, eventsSeen int64) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE attempts SET ended_at = ?, outcome = ?, events_seen = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), outcome, eventsSeen, attemptID,
	)
	if err != nil {
		return fmt.Errorf("recording attempt end: %w", err)
	}
	return nil
}

// AttemptRecord is one row from the attempts table.
type AttemptRecord struct {
	ID         string
	StartedAt  time.Time
	EndedAt    *time.Time
	Outcome    string
	EventsSeen int64
}

// RecentAttempts returns the most recent attempts, newest first.
func (j *Journal) RecentAttempts(ctx context.Context, limit int) ([]AttemptRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, COALESCE(outcome, ''), events_seen
		 FROM attempts ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var records []AttemptRecord
	for rows.Next() {
		var rec AttemptRecord
		var started string
		var ended sql.NullString
		if err := rows.Scan(&rec.ID, &started, &ended, &rec.Outcome, &rec.EventsSeen); err != nil {
			return nil, fmt.Errorf("scanning attempt row: %w", err)
		}
		rec.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if ended.Valid {
			t, err := time.Parse(time.RFC3339Nano, ended.String)
			if err != nil {
				return nil, fmt.Errorf("parsing ended_at: %w", err)
			}
			rec.EndedAt = &t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
