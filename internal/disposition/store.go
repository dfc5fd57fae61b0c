package disposition

import (
	"context"
	"errors"

	id "vigil/pkg/domain"
)

// ErrNotFound keeps store-specific 404s consistent across the in-memory and
// Postgres implementations. A missing disposition means the subject is still
// PENDING.
var ErrNotFound = errors.New("disposition not found")

// Store persists dispositions. Upsert must be idempotent per subject; no
// cross-subject locking is required.
type Store interface {
	Get(ctx context.Context, subjectID id.SubjectID) (*Disposition, error)
	Upsert(ctx context.Context, d *Disposition) error
}
