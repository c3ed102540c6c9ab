package journal

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory journal store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry // runID -> entries in append order
	closed  bool
}

// NewMemoryStore creates a new in-memory journal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]Entry),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	m.entries[entry.RunID] = append(m.entries[entry.RunID], entry)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(runID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	run := m.entries[runID]
	out := make([]Entry, len(run))
	copy(out, run)

	sort.Slice(out, func(i, j int) bool {
		return out[i].Seq < out[j].Seq
	})

	return out, nil
}

// Runs implements Store.
func (m *MemoryStore) Runs() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteRun implements Store.
func (m *MemoryStore) DeleteRun(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.entries, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}

// Len returns the total number of entries across all runs.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, run := range m.entries {
		count += len(run)
	}
	return count
}
