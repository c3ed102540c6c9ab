// Package journal provides append-only storage for run execution trails.
//
// A journal records one entry per node execution: which node ran, in
// which superstep, how long it took, and whether it failed. The journal
// is written during execution and read afterwards for inspection and
// debugging. It holds no state and is never used to resume a run.
package journal

import (
	"errors"
	"time"
)

// Entry records one node execution within a run.
type Entry struct {
	// RunID identifies the run this entry belongs to.
	RunID string

	// Seq is the entry's position within the run, starting at 1.
	// Entries within one superstep are numbered in spawn order.
	Seq int

	// Superstep is the frontier round the node executed in, starting at 1.
	Superstep int

	// NodeID is the node that executed.
	NodeID string

	// Duration is how long the node execution took.
	Duration time.Duration

	// Error is the node's error message, empty on success.
	Error string

	// Timestamp is when the entry was recorded (UTC).
	Timestamp time.Time
}

// Store persists run journal entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records an entry. Entries are immutable once written.
	Append(entry Entry) error

	// List returns all entries for a run, ordered by sequence.
	// Returns an empty slice (not an error) if the run has no entries.
	List(runID string) ([]Entry, error)

	// Runs returns the distinct run IDs present in the store.
	Runs() ([]string, error)

	// DeleteRun removes all entries for a run.
	// Returns nil if the run has no entries.
	DeleteRun(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for journal operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")
)
