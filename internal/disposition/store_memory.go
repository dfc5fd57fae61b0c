package disposition

import (
	"context"
	"maps"
	"sync"

	id "vigil/pkg/domain"
)

// InMemoryStore implements Store with a mutex-guarded map. Used in tests and
// when no database is configured.
type InMemoryStore struct {
	mu           sync.RWMutex
	dispositions map[id.SubjectID]*Disposition
}

// NewInMemoryStore creates an empty in-memory disposition store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		dispositions: make(map[id.SubjectID]*Disposition),
	}
}

func (s *InMemoryStore) Get(ctx context.Context, subjectID id.SubjectID) (*Disposition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.dispositions[subjectID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(d), nil
}

func (s *InMemoryStore) Upsert(ctx context.Context, d *Disposition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispositions[d.SubjectID] = clone(d)
	return nil
}

// clone keeps callers from aliasing the stored SourceHits map.
func clone(d *Disposition) *Disposition {
	copied := *d
	copied.SourceHits = maps.Clone(d.SourceHits)
	return &copied
}
