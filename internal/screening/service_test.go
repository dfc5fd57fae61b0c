package screening

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "vigil/pkg/domain"
)

type stubProvider struct {
	set *Set
	err error
}

func (p *stubProvider) Load(ctx context.Context) (*Set, error) {
	return p.set, p.err
}

type stubSubjects struct {
	upserts []*Subject
	err     error
}

func (s *stubSubjects) Upsert(ctx context.Context, subject *Subject) error {
	if s.err != nil {
		return s.err
	}
	s.upserts = append(s.upserts, subject)
	return nil
}

type stubRecorder struct {
	outcome RecordOutcome
	err     error
	calls   int
}

func (r *stubRecorder) Record(ctx context.Context, subjectID id.SubjectID, assessment *Assessment) (RecordOutcome, error) {
	r.calls++
	return r.outcome, r.err
}

func newTestSet(sources map[Source]*SourceSnapshot) *Set {
	set := &Set{LoadedAt: time.Now().UTC(), Sources: map[Source]*SourceSnapshot{}}
	for _, source := range Sources() {
		if snap, ok := sources[source]; ok {
			set.Sources[source] = snap
			continue
		}
		set.Sources[source] = &SourceSnapshot{Source: source, Provenance: ProvenanceFile, Entries: []ListEntry{}}
	}
	return set
}

type ServiceSuite struct {
	suite.Suite
	provider *stubProvider
	subjects *stubSubjects
	recorder *stubRecorder
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.provider = &stubProvider{set: newTestSet(nil)}
	s.subjects = &stubSubjects{}
	s.recorder = &stubRecorder{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	s.service, err = NewService(s.provider, s.subjects, s.recorder, logger, nil)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestNewService() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.Run("nil snapshot provider returns error", func() {
		_, err := NewService(nil, s.subjects, s.recorder, logger, nil)
		s.Error(err)
	})

	s.Run("nil recorder returns error", func() {
		_, err := NewService(s.provider, s.subjects, nil, logger, nil)
		s.Error(err)
	})
}

func (s *ServiceSuite) TestEvaluate() {
	ctx := context.Background()

	s.Run("hit on one source scores its weight", func() {
		set := newTestSet(map[Source]*SourceSnapshot{
			SourceSanctions: snapshotWith(SourceSanctions, "Juan Perez Gomez", "Maria Lopez"),
		})

		a, err := s.service.Evaluate(ctx, Identity{Kind: KindPerson, FullName: "Juan Pérez"}, set)

		s.Require().NoError(err)
		s.Equal(60, a.Score)
		s.Equal(TierMedium, a.Tier)
		s.Equal(DecisionManualReview, a.Decision)
		s.True(a.PerSource[SourceSanctions].Found)
		s.False(a.PerSource[SourcePEP].Found)
		s.Contains(a.Alerts, "hit on sanctions: 1 candidate(s)")
	})

	s.Run("hard block with pep hit is critical not medium", func() {
		set := newTestSet(map[Source]*SourceSnapshot{
			SourceBlockedPersons: snapshotWith(SourceBlockedPersons, "Juan Perez Gomez"),
			SourcePEP:            snapshotWith(SourcePEP, "Juan Perez Gomez"),
		})

		a, err := s.service.Evaluate(ctx, Identity{Kind: KindPerson, FullName: "Juan Pérez"}, set)

		s.Require().NoError(err)
		s.Equal(TierCritical, a.Tier)
		s.Equal(DecisionRejected, a.Decision)
		s.True(a.HardBlockHit())
	})

	s.Run("degraded source never blocks siblings", func() {
		set := newTestSet(map[Source]*SourceSnapshot{
			SourceSanctions: {Source: SourceSanctions, Provenance: ProvenanceNone, Err: "decode snapshot: unexpected EOF"},
			SourcePEP:       snapshotWith(SourcePEP, "Juan Perez Gomez"),
		})

		a, err := s.service.Evaluate(ctx, Identity{Kind: KindPerson, FullName: "Juan Pérez"}, set)

		s.Require().NoError(err)
		s.True(a.PerSource[SourcePEP].Found)
		s.False(a.PerSource[SourceSanctions].Found)
		s.Equal("decode snapshot: unexpected EOF", a.PerSource[SourceSanctions].Error)
		s.Contains(a.Alerts, "source sanctions unavailable: decode snapshot: unexpected EOF")
	})

	s.Run("fallback provenance is surfaced", func() {
		set := newTestSet(map[Source]*SourceSnapshot{
			SourcePEP: {Source: SourcePEP, Provenance: ProvenanceBuiltin, Entries: []ListEntry{}},
		})

		a, err := s.service.Evaluate(ctx, Identity{Kind: KindPerson, FullName: "Juan Pérez"}, set)

		s.Require().NoError(err)
		s.Contains(a.Alerts, "fallback reference list used for pep")
	})

	s.Run("identity without usable name is rejected before matching", func() {
		_, err := s.service.Evaluate(ctx, Identity{Kind: KindPerson, FullName: "J. R."}, newTestSet(nil))
		s.ErrorIs(err, ErrInvalidIdentity)
	})

	s.Run("score stays within bounds and results are deterministic", func() {
		set := newTestSet(map[Source]*SourceSnapshot{
			SourceBlockedPersons: snapshotWith(SourceBlockedPersons, "Juan Perez Gomez"),
			SourceDeregistered:   snapshotWith(SourceDeregistered, "Juan Perez Gomez"),
			SourceSanctions:      snapshotWith(SourceSanctions, "Juan Perez Gomez"),
			SourcePEP:            snapshotWith(SourcePEP, "Juan Perez Gomez"),
		})
		identity := Identity{Kind: KindPerson, FullName: "Juan Pérez"}

		first, err := s.service.Evaluate(ctx, identity, set)
		s.Require().NoError(err)
		second, err := s.service.Evaluate(ctx, identity, set)
		s.Require().NoError(err)

		s.Equal(100, first.Score)
		s.Equal(first.Score, second.Score)
		s.Equal(first.Tier, second.Tier)
		s.Equal(first.Decision, second.Decision)
		s.Equal(first.PerSource, second.PerSource)
	})
}

func (s *ServiceSuite) TestScreen() {
	ctx := context.Background()
	subjectID := id.NewSubjectID()
	identity := Identity{Kind: KindPerson, FullName: "Juan Pérez"}

	s.Run("persists subject and records disposition", func() {
		s.provider.set = newTestSet(map[Source]*SourceSnapshot{
			SourceSanctions: snapshotWith(SourceSanctions, "Juan Perez Gomez"),
		})
		s.recorder.outcome = RecordOutcome{Previous: DecisionPending, Current: DecisionManualReview, Changed: true}

		a, outcome, err := s.service.Screen(ctx, subjectID, identity)

		s.Require().NoError(err)
		s.Equal(DecisionManualReview, a.Decision)
		s.True(outcome.Changed)
		s.Equal(1, s.recorder.calls)
		s.Require().Len(s.subjects.upserts, 1)
		s.True(s.subjects.upserts[0].Active)
	})

	s.Run("recorder failure still returns the assessment", func() {
		s.recorder.err = errors.New("connection refused")

		a, _, err := s.service.Screen(ctx, subjectID, identity)

		s.Require().Error(err)
		s.ErrorIs(err, ErrPersist)
		s.NotNil(a)
	})

	s.Run("subject store failure still returns the assessment", func() {
		s.subjects.err = errors.New("connection refused")
		s.recorder.err = nil

		a, _, err := s.service.Screen(ctx, subjectID, identity)

		s.Require().Error(err)
		s.ErrorIs(err, ErrPersist)
		s.NotNil(a)
	})
}
