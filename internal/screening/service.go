package screening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"vigil/internal/screening/metrics"
	id "vigil/pkg/domain"
)

var (
	// ErrInvalidIdentity is returned before any matching when the identity
	// carries no usable name tokens and no legal identifier.
	ErrInvalidIdentity = errors.New("identity has no usable name or identifier")

	// ErrPersist wraps disposition write failures. The computed assessment is
	// still returned alongside it so the caller can retry the persist step
	// without recomputation.
	ErrPersist = errors.New("assessment persistence failed")
)

// SnapshotProvider supplies a consistent snapshot set for an evaluation.
type SnapshotProvider interface {
	Load(ctx context.Context) (*Set, error)
}

// RecordOutcome summarizes what recording an assessment did to the subject's
// stored disposition.
type RecordOutcome struct {
	Previous Decision
	Current  Decision
	Changed  bool
	Alerted  bool
}

// Recorder persists an assessment as the subject's current disposition and
// emits alerts on alert-worthy transitions.
type Recorder interface {
	Record(ctx context.Context, subjectID id.SubjectID, assessment *Assessment) (RecordOutcome, error)
}

// SubjectStore persists the identity record of a screened subject.
type SubjectStore interface {
	Upsert(ctx context.Context, subject *Subject) error
}

// Service runs the screening pipeline: normalize, match every source,
// aggregate, classify. Screen additionally persists the outcome for one
// subject; batch callers use Evaluate directly so every subject in a run
// shares one snapshot set.
type Service struct {
	snapshots SnapshotProvider
	subjects  SubjectStore
	recorder  Recorder
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// NewService constructs the screening service. Metrics may be nil (tests).
func NewService(snapshots SnapshotProvider, subjects SubjectStore, recorder Recorder, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot provider is required")
	}
	if subjects == nil {
		return nil, fmt.Errorf("subject store is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("disposition recorder is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{
		snapshots: snapshots,
		subjects:  subjects,
		recorder:  recorder,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer("vigil/screening"),
	}, nil
}

// Screen evaluates one identity against a freshly loaded snapshot set,
// persists the subject and its disposition, and reports the transition.
// On a persistence failure the assessment is returned together with an
// ErrPersist-wrapped error so the caller can retry the write without
// re-running the pipeline.
func (s *Service) Screen(ctx context.Context, subjectID id.SubjectID, identity Identity) (*Assessment, RecordOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "screening.Screen",
		trace.WithAttributes(attribute.String("subject_id", subjectID.String())))
	defer span.End()

	set, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, RecordOutcome{}, fmt.Errorf("load snapshot set: %w", err)
	}

	assessment, err := s.Evaluate(ctx, identity, set)
	if err != nil {
		return nil, RecordOutcome{}, err
	}

	if err := s.subjects.Upsert(ctx, &Subject{ID: subjectID, Identity: identity, Active: true}); err != nil {
		return assessment, RecordOutcome{}, fmt.Errorf("%w: upsert subject: %w", ErrPersist, err)
	}

	outcome, err := s.recorder.Record(ctx, subjectID, assessment)
	if err != nil {
		return assessment, RecordOutcome{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return assessment, outcome, nil
}

// Evaluate runs the pure pipeline for one identity against one snapshot set.
// Sources are matched concurrently; a degraded source is reported in its own
// MatchResult and never aborts the siblings.
func (s *Service) Evaluate(ctx context.Context, identity Identity, set *Set) (*Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "screening.Evaluate")
	defer span.End()
	start := time.Now()

	query := Normalize(append([]string{identity.FullName}, identity.NameParts...)...)
	legalID := NormalizeLegalID(identity.LegalID)
	if len(query.Tokens) == 0 && legalID == "" {
		return nil, ErrInvalidIdentity
	}

	sources := Sources()
	results := make([]MatchResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = matchSource(query, legalID, set.Sources[source])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	perSource := make(map[Source]MatchResult, len(sources))
	for i, source := range sources {
		perSource[source] = results[i]
	}

	score := AggregateScore(perSource)
	assessment := &Assessment{
		Score:       score,
		PerSource:   perSource,
		EvaluatedAt: time.Now().UTC(),
	}
	assessment.Tier, assessment.Decision = Classify(score, assessment.HardBlockHit())
	assessment.Alerts = buildAlerts(assessment, set)

	s.observe(ctx, assessment, set, time.Since(start))
	span.SetAttributes(
		attribute.Int("screening.score", assessment.Score),
		attribute.String("screening.decision", string(assessment.Decision)),
	)
	return assessment, nil
}

// buildAlerts produces the human-readable alert strings exposed on the
// assessment. Every degraded or fallback path is named explicitly so
// consumers can tell authoritative hits from reduced-confidence ones.
func buildAlerts(a *Assessment, set *Set) []string {
	alerts := []string{}
	for _, source := range Sources() {
		result := a.PerSource[source]
		switch {
		case result.Error != "":
			alerts = append(alerts, fmt.Sprintf("source %s unavailable: %s", source, result.Error))
		case result.Found && IsHardBlock(source):
			alerts = append(alerts, fmt.Sprintf("hard-block hit on %s: %d candidate(s)", source, result.Total))
		case result.Found:
			alerts = append(alerts, fmt.Sprintf("hit on %s: %d candidate(s)", source, result.Total))
		}
		if snap := set.Sources[source]; snap != nil && snap.Provenance == ProvenanceBuiltin {
			alerts = append(alerts, fmt.Sprintf("fallback reference list used for %s", source))
		}
	}
	return alerts
}

func (s *Service) observe(ctx context.Context, a *Assessment, set *Set, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveScreening(string(a.Decision), elapsed)
		for source, result := range a.PerSource {
			if result.Error != "" {
				s.metrics.IncSourceError(string(source))
			}
			if result.Found {
				s.metrics.IncSourceHit(string(source))
			}
		}
	}
	s.logger.DebugContext(ctx, "screening evaluated",
		"score", a.Score,
		"tier", a.Tier,
		"decision", a.Decision,
		"snapshot_loaded_at", set.LoadedAt,
		"duration_ms", elapsed.Milliseconds(),
	)
}
