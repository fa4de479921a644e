// Package registry holds the client-side synchronized cache of the
// upstream complaint log. Every refresh replaces the cache wholesale;
// there is no incremental merge.
package registry

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/linnemanlabs/cityline/internal/complaint"
)

// ErrStaleRefresh is returned when a refresh response arrives after a
// more recently initiated refresh has already been applied. The response
// is discarded and the cache is untouched.
var ErrStaleRefresh = errors.New("stale refresh discarded")

// Lister fetches the complaint log visible to the active session.
type Lister interface {
	List(ctx context.Context) ([]complaint.Complaint, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context) ([]complaint.Complaint, error)

// List implements Lister.
func (f ListerFunc) List(ctx context.Context) ([]complaint.Complaint, error) {
	return f(ctx)
}

// Registry is the cache for one active view. Methods are safe for
// concurrent use; the fetch itself happens outside the lock.
type Registry struct {
	lister Lister

	mu       sync.Mutex
	cache    []complaint.Complaint
	nextGen  uint64 // sequence handed to each initiated refresh
	applied  uint64 // generation of the refresh currently in the cache
	lastSync time.Time
}

// New creates an empty registry backed by lister.
func New(lister Lister) *Registry {
	return &Registry{lister: lister}
}

// Refresh fetches the complaint log and replaces the cache. Each call takes
// a monotonically increasing generation before the fetch; a response is
// applied only if no newer-initiated refresh has completed first, so the
// most recently initiated request always wins. On fetch failure the
// previous cache stays visible and the error is returned.
func (r *Registry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.nextGen++
	gen := r.nextGen
	r.mu.Unlock()

	list, err := r.lister.List(ctx)
	if err != nil {
		return err
	}

	// Default ordering is newest first regardless of upstream order.
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen < r.applied {
		return ErrStaleRefresh
	}
	r.applied = gen
	r.cache = list
	r.lastSync = time.Now()
	return nil
}

// Snapshot returns a copy of the cached sequence, newest first.
func (r *Registry) Snapshot() []complaint.Complaint {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]complaint.Complaint, len(r.cache))
	copy(out, r.cache)
	return out
}

// Lookup returns the cached record with the given ID.
func (r *Registry) Lookup(id string) (*complaint.Complaint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.cache {
		if r.cache[i].ID == id {
			cp := r.cache[i]
			return &cp, true
		}
	}
	return nil, false
}

// LastSync returns when the cache was last replaced, zero if never.
func (r *Registry) LastSync() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSync
}

// Generation returns the generation of the currently applied refresh.
func (r *Registry) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied
}
