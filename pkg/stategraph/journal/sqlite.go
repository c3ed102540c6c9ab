package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists journal entries to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite journal store.
// The path should be a file path (e.g., "./runs.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS journal (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			superstep INTEGER NOT NULL,
			node_id TEXT NOT NULL,
			duration_ns INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			timestamp TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_journal_run_id
		ON journal(run_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO journal (run_id, seq, superstep, node_id, duration_ns, error, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.RunID, entry.Seq, entry.Superstep, entry.NodeID,
		entry.Duration.Nanoseconds(), entry.Error, ts.Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(runID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT seq, superstep, node_id, duration_ns, error, timestamp
		FROM journal
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		var durationNs int64
		var timestamp string
		if err := rows.Scan(&entry.Seq, &entry.Superstep, &entry.NodeID,
			&durationNs, &entry.Error, &timestamp); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entry.RunID = runID
		entry.Duration = time.Duration(durationNs)
		entry.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}

	return entries, nil
}

// Runs implements Store.
func (s *SQLiteStore) Runs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT DISTINCT run_id FROM journal ORDER BY run_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return ids, nil
}

// DeleteRun implements Store.
func (s *SQLiteStore) DeleteRun(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM journal WHERE run_id = ?
	`, runID)
	if err != nil {
		return fmt.Errorf("delete run journal: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
