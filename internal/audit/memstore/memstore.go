// Package memstore provides an in-memory implementation of audit.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/cityline/internal/audit"
)

// Store holds audit entries in memory, newest last. Suitable for dev and
// for consoles run without a database.
type Store struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{}
}

// Append stores a copy of the entry.
func (s *Store) Append(_ context.Context, e *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *e)
	return nil
}

// Recent returns up to limit entries, most recent first.
func (s *Store) Recent(_ context.Context, limit int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.entries)
	if limit > n {
		limit = n
	}
	out := make([]audit.Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
