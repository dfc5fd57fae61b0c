package disposition_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vigil/internal/alert"
	"vigil/internal/disposition"
	"vigil/internal/screening"
	id "vigil/pkg/domain"
)

// assessmentWith builds an assessment with consistent score, tier and decision
// for the given source hits.
func assessmentWith(hits ...screening.Source) *screening.Assessment {
	perSource := make(map[screening.Source]screening.MatchResult, len(screening.Sources()))
	for _, source := range screening.Sources() {
		perSource[source] = screening.MatchResult{}
	}
	hardBlock := false
	for _, source := range hits {
		perSource[source] = screening.MatchResult{Found: true, Total: 1}
		if screening.IsHardBlock(source) {
			hardBlock = true
		}
	}
	a := &screening.Assessment{
		PerSource:   perSource,
		EvaluatedAt: time.Now().UTC(),
	}
	a.Score = screening.AggregateScore(perSource)
	a.Tier, a.Decision = screening.Classify(a.Score, hardBlock)
	return a
}

type failingSink struct{}

func (failingSink) Emit(ctx context.Context, alert disposition.Alert) error {
	return errors.New("broker unreachable")
}

type TrackerSuite struct {
	suite.Suite
	store   *disposition.InMemoryStore
	sink    *alert.MemorySink
	tracker *disposition.Tracker
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.store = disposition.NewInMemoryStore()
	s.sink = alert.NewMemorySink()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	s.tracker, err = disposition.NewTracker(s.store, s.sink, logger)
	s.Require().NoError(err)
}

func (s *TrackerSuite) TestRecord() {
	ctx := context.Background()

	s.Run("first screening creates the disposition from pending", func() {
		subjectID := id.NewSubjectID()

		outcome, err := s.tracker.Record(ctx, subjectID, assessmentWith())

		s.Require().NoError(err)
		s.Equal(screening.DecisionPending, outcome.Previous)
		s.Equal(screening.DecisionApproved, outcome.Current)
		s.True(outcome.Changed)
		s.False(outcome.Alerted)

		stored, err := s.store.Get(ctx, subjectID)
		s.Require().NoError(err)
		s.Equal(screening.DecisionApproved, stored.Decision)
		s.False(stored.AlertActive)
	})

	s.Run("identical assessment is a no-op", func() {
		subjectID := id.NewSubjectID()
		_, err := s.tracker.Record(ctx, subjectID, assessmentWith(screening.SourceSanctions))
		s.Require().NoError(err)
		before, err := s.store.Get(ctx, subjectID)
		s.Require().NoError(err)

		outcome, err := s.tracker.Record(ctx, subjectID, assessmentWith(screening.SourceSanctions))

		s.Require().NoError(err)
		s.False(outcome.Changed)
		s.False(outcome.Alerted)
		after, err := s.store.Get(ctx, subjectID)
		s.Require().NoError(err)
		s.Equal(before.UpdatedAt, after.UpdatedAt)
		s.Empty(s.sink.Alerts())
	})

	s.Run("move into rejected emits an alert with before and after state", func() {
		subjectID := id.NewSubjectID()
		_, err := s.tracker.Record(ctx, subjectID, assessmentWith())
		s.Require().NoError(err)

		outcome, err := s.tracker.Record(ctx, subjectID,
			assessmentWith(screening.SourceSanctions, screening.SourceDeregistered))

		s.Require().NoError(err)
		s.True(outcome.Changed)
		s.True(outcome.Alerted)

		alerts := s.sink.Alerts()
		s.Require().Len(alerts, 1)
		s.Equal(subjectID, alerts[0].SubjectID)
		s.Equal(screening.DecisionApproved, alerts[0].PreviousDecision)
		s.Equal(screening.DecisionRejected, alerts[0].NewDecision)
		s.False(alerts[0].ID.IsNil())

		stored, err := s.store.Get(ctx, subjectID)
		s.Require().NoError(err)
		s.True(stored.AlertActive)
	})

	s.Run("new hard block hit alerts even when already rejected", func() {
		subjectID := id.NewSubjectID()
		_, err := s.tracker.Record(ctx, subjectID,
			assessmentWith(screening.SourceSanctions, screening.SourceDeregistered))
		s.Require().NoError(err)
		before := len(s.sink.Alerts())

		outcome, err := s.tracker.Record(ctx, subjectID,
			assessmentWith(screening.SourceSanctions, screening.SourceDeregistered, screening.SourceBlockedPersons))

		s.Require().NoError(err)
		s.True(outcome.Alerted)

		alerts := s.sink.Alerts()
		s.Require().Len(alerts, before+1)
		s.Equal([]screening.Source{screening.SourceBlockedPersons}, alerts[len(alerts)-1].TriggeredBy)
	})

	s.Run("alert latch clears when the subject leaves rejected", func() {
		subjectID := id.NewSubjectID()
		_, err := s.tracker.Record(ctx, subjectID, assessmentWith(screening.SourceBlockedPersons))
		s.Require().NoError(err)

		outcome, err := s.tracker.Record(ctx, subjectID, assessmentWith(screening.SourcePEP))

		s.Require().NoError(err)
		s.True(outcome.Changed)
		s.False(outcome.Alerted)

		stored, err := s.store.Get(ctx, subjectID)
		s.Require().NoError(err)
		s.Equal(screening.DecisionManualReview, stored.Decision)
		s.False(stored.AlertActive)
	})

	s.Run("sink failure surfaces after the disposition is persisted", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		tracker, err := disposition.NewTracker(s.store, failingSink{}, logger)
		s.Require().NoError(err)

		subjectID := id.NewSubjectID()
		outcome, err := tracker.Record(ctx, subjectID, assessmentWith(screening.SourceBlockedPersons))

		s.Require().Error(err)
		s.True(outcome.Changed)
		s.False(outcome.Alerted)

		stored, err := s.store.Get(ctx, subjectID)
		s.Require().NoError(err)
		s.Equal(screening.DecisionRejected, stored.Decision)
	})
}
