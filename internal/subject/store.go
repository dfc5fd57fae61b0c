// Package subject persists the identity records screened by the engine. It is
// the reference implementation of the persistence collaborator the pipeline
// assumes: an upsertable record per subject plus an "all active subjects"
// listing for batch rescreens.
package subject

import (
	"context"
	"errors"

	"vigil/internal/screening"
	id "vigil/pkg/domain"
)

// ErrNotFound is returned for unknown subjects.
var ErrNotFound = errors.New("subject not found")

// Store persists subjects. Deactivation is a flag flip, never a delete, so
// dispositions always have a subject to refer to.
type Store interface {
	Get(ctx context.Context, subjectID id.SubjectID) (*screening.Subject, error)
	Upsert(ctx context.Context, subject *screening.Subject) error
	ListActive(ctx context.Context) ([]*screening.Subject, error)
}
