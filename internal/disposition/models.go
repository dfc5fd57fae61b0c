// Package disposition owns the persisted per-subject screening state and the
// transition rules that decide when a rescreen outcome is worth alerting.
package disposition

import (
	"context"
	"time"

	"vigil/internal/screening"
	id "vigil/pkg/domain"
)

// Disposition is the current decision state for one subject. It is created on
// first screening, mutated only by screening runs, and never deleted: a new
// state supersedes the old one in place, with history owned by the alert/audit
// sink.
type Disposition struct {
	SubjectID      id.SubjectID
	Tier           screening.Tier
	Decision       screening.Decision
	Score          int
	SourceHits     map[screening.Source]bool
	AlertActive    bool
	LastScreenedAt time.Time
	UpdatedAt      time.Time
}

// Pending is the implicit state of a subject that has never been screened.
func Pending(subjectID id.SubjectID) *Disposition {
	return &Disposition{
		SubjectID:  subjectID,
		Decision:   screening.DecisionPending,
		SourceHits: map[screening.Source]bool{},
	}
}

// FromAssessment projects a completed assessment onto the disposition shape.
func FromAssessment(subjectID id.SubjectID, a *screening.Assessment) *Disposition {
	return &Disposition{
		SubjectID:      subjectID,
		Tier:           a.Tier,
		Decision:       a.Decision,
		Score:          a.Score,
		SourceHits:     a.SourceHits(),
		LastScreenedAt: a.EvaluatedAt,
	}
}

// Alert records one alert-worthy transition, before and after state included,
// so the audit trail never loses the superseded decision.
type Alert struct {
	ID               id.AlertID         `json:"id"`
	SubjectID        id.SubjectID       `json:"subject_id"`
	PreviousDecision screening.Decision `json:"previous_decision"`
	NewDecision      screening.Decision `json:"new_decision"`
	PreviousTier     screening.Tier     `json:"previous_tier,omitempty"`
	NewTier          screening.Tier     `json:"new_tier"`
	TriggeredBy      []screening.Source `json:"triggered_by,omitempty"`
	Message          string             `json:"message"`
	CreatedAt        time.Time          `json:"created_at"`
}

// AlertSink receives alert-worthy transitions. Implementations are
// append-only.
type AlertSink interface {
	Emit(ctx context.Context, alert Alert) error
}
