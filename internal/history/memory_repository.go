package history

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Used when no database is configured.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []*Entry
	max     int
}

// NewInMemoryRepository creates a repository keeping at most max entries
// (oldest dropped first). A max of zero keeps 1000.
func NewInMemoryRepository(max int) *InMemoryRepository {
	if max <= 0 {
		max = 1000
	}
	return &InMemoryRepository{max: max}
}

// Record stores an entry.
func (r *InMemoryRepository) Record(_ context.Context, e *Entry) error {
	if err := e.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, e.clone())
	if len(r.entries) > r.max {
		r.entries = r.entries[len(r.entries)-r.max:]
	}
	return nil
}

// List returns entries newest first.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Entry
	for _, e := range r.entries {
		if opts.City != "" && !strings.EqualFold(e.City, opts.City) {
			continue
		}
		out = append(out, e.clone())
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit := opts.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
