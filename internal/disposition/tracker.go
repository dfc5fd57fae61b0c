package disposition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vigil/internal/screening"
	id "vigil/pkg/domain"
)

// Tracker persists assessments as dispositions and emits alerts on
// alert-worthy transitions. Record is idempotent: an assessment identical in
// material state to the stored disposition causes no write and no alert.
type Tracker struct {
	store  Store
	alerts AlertSink
	logger *slog.Logger
}

// NewTracker constructs a Tracker.
func NewTracker(store Store, alerts AlertSink, logger *slog.Logger) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("disposition store is required")
	}
	if alerts == nil {
		return nil, fmt.Errorf("alert sink is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Tracker{store: store, alerts: alerts, logger: logger}, nil
}

// Record applies an assessment to the subject's stored disposition.
// Alert emission is fail-closed: when the sink rejects the alert the error is
// returned so the caller can retry, the disposition write itself having
// already succeeded.
func (t *Tracker) Record(ctx context.Context, subjectID id.SubjectID, assessment *screening.Assessment) (screening.RecordOutcome, error) {
	prev, err := t.store.Get(ctx, subjectID)
	if errors.Is(err, ErrNotFound) {
		prev = Pending(subjectID)
	} else if err != nil {
		return screening.RecordOutcome{}, fmt.Errorf("load disposition: %w", err)
	}

	next := FromAssessment(subjectID, assessment)
	outcome := screening.RecordOutcome{
		Previous: prev.Decision,
		Current:  next.Decision,
	}

	if !materiallyChanged(prev, next) {
		return outcome, nil
	}

	worthy := alertWorthy(prev, next)
	// AlertActive latches on an alert-worthy transition and clears once a
	// later material change moves the subject out of REJECTED.
	next.AlertActive = worthy || (prev.AlertActive && next.Decision == screening.DecisionRejected)
	next.UpdatedAt = time.Now().UTC()

	if err := t.store.Upsert(ctx, next); err != nil {
		return outcome, fmt.Errorf("upsert disposition: %w", err)
	}
	outcome.Changed = true

	t.logger.InfoContext(ctx, "disposition updated",
		"subject_id", subjectID,
		"previous_decision", prev.Decision,
		"decision", next.Decision,
		"score", next.Score,
	)

	if worthy {
		if err := t.emitAlert(ctx, prev, next); err != nil {
			return outcome, err
		}
		outcome.Alerted = true
	}
	return outcome, nil
}

func (t *Tracker) emitAlert(ctx context.Context, prev, next *Disposition) error {
	triggered := newHardBlockSources(prev, next)
	alert := Alert{
		ID:               id.NewAlertID(),
		SubjectID:        next.SubjectID,
		PreviousDecision: prev.Decision,
		NewDecision:      next.Decision,
		PreviousTier:     prev.Tier,
		NewTier:          next.Tier,
		TriggeredBy:      triggered,
		Message: fmt.Sprintf("subject %s moved %s -> %s (score %d)",
			next.SubjectID, prev.Decision, next.Decision, next.Score),
		CreatedAt: time.Now().UTC(),
	}
	if err := t.alerts.Emit(ctx, alert); err != nil {
		return fmt.Errorf("emit alert: %w", err)
	}
	return nil
}
