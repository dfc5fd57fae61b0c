// Package domain holds typed identifiers shared across the service. Typed IDs
// keep subject and alert identifiers from being swapped silently at call
// sites.
package domain

import "github.com/google/uuid"

// SubjectID identifies a screened subject (person or legal entity).
type SubjectID uuid.UUID

// NewSubjectID returns a random SubjectID.
func NewSubjectID() SubjectID {
	return SubjectID(uuid.New())
}

// ParseSubjectID parses the canonical string form.
func ParseSubjectID(s string) (SubjectID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SubjectID{}, err
	}
	return SubjectID(u), nil
}

func (id SubjectID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero value.
func (id SubjectID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// AlertID identifies a single emitted alert.
type AlertID uuid.UUID

// NewAlertID returns a random AlertID.
func NewAlertID() AlertID {
	return AlertID(uuid.New())
}

func (id AlertID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero value.
func (id AlertID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}
