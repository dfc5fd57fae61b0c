package subject

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"vigil/internal/screening"
	id "vigil/pkg/domain"
)

// InMemoryStore implements Store with a mutex-guarded map.
type InMemoryStore struct {
	mu       sync.RWMutex
	subjects map[id.SubjectID]*screening.Subject
}

// NewInMemoryStore creates an empty in-memory subject store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		subjects: make(map[id.SubjectID]*screening.Subject),
	}
}

func (s *InMemoryStore) Get(ctx context.Context, subjectID id.SubjectID) (*screening.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subjects[subjectID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *sub
	return &copied, nil
}

func (s *InMemoryStore) Upsert(ctx context.Context, subject *screening.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *subject
	now := time.Now().UTC()
	if existing, ok := s.subjects[subject.ID]; ok {
		copied.CreatedAt = existing.CreatedAt
	} else if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now
	s.subjects[subject.ID] = &copied
	return nil
}

func (s *InMemoryStore) ListActive(ctx context.Context) ([]*screening.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]*screening.Subject, 0, len(s.subjects))
	for _, sub := range s.subjects {
		if sub.Active {
			copied := *sub
			active = append(active, &copied)
		}
	}
	// Stable order keeps batch runs reproducible.
	slices.SortFunc(active, func(a, b *screening.Subject) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return active, nil
}
