package handler

import (
	"fmt"
	"strings"

	"vigil/internal/screening"
	id "vigil/pkg/domain"
)

// EvaluateRequest is the body of POST /screening/evaluate. SubjectID is
// optional; a new subject is created when it is absent.
type EvaluateRequest struct {
	SubjectID string   `json:"subject_id,omitempty"`
	Kind      string   `json:"kind"`
	FullName  string   `json:"full_name"`
	NameParts []string `json:"name_parts,omitempty"`
	LegalID   string   `json:"legal_id,omitempty"`
}

// Validate checks the request shape; the engine still applies its own
// usable-name check.
func (r *EvaluateRequest) Validate() error {
	switch screening.IdentityKind(r.Kind) {
	case screening.KindPerson, screening.KindEntity:
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("kind must be %q or %q", screening.KindPerson, screening.KindEntity)
	}
	if strings.TrimSpace(r.FullName) == "" && len(r.NameParts) == 0 && strings.TrimSpace(r.LegalID) == "" {
		return fmt.Errorf("full_name, name_parts, or legal_id is required")
	}
	return nil
}

// Identity builds the domain identity from the request.
func (r *EvaluateRequest) Identity() screening.Identity {
	return screening.Identity{
		Kind:      screening.IdentityKind(r.Kind),
		FullName:  r.FullName,
		NameParts: r.NameParts,
		LegalID:   r.LegalID,
	}
}

// ParsedSubjectID returns the request's subject ID, or a fresh one when the
// field is empty.
func (r *EvaluateRequest) ParsedSubjectID() (id.SubjectID, error) {
	if r.SubjectID == "" {
		return id.NewSubjectID(), nil
	}
	return id.ParseSubjectID(r.SubjectID)
}
