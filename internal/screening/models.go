package screening

import (
	"time"

	id "vigil/pkg/domain"
)

// IdentityKind distinguishes natural persons from legal entities.
type IdentityKind string

const (
	KindPerson IdentityKind = "person"
	KindEntity IdentityKind = "entity"
)

// Identity is the immutable input to a single screening run.
type Identity struct {
	Kind      IdentityKind
	FullName  string
	NameParts []string
	// LegalID is an optional national tax/legal identifier (exact-matched
	// against registry entries that carry one).
	LegalID string
}

// Subject is a persisted identity record. Inactive subjects are skipped by
// rescreen runs but never deleted.
type Subject struct {
	ID        id.SubjectID
	Identity  Identity
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Source names one watchlist. The set is fixed; adding a source means adding
// a weight and a snapshot, not new code paths.
type Source string

const (
	SourceSanctions      Source = "sanctions"
	SourceBlockedPersons Source = "blocked_persons"
	SourcePEP            Source = "pep"
	SourceDeregistered   Source = "deregistered"
)

// Sources returns all watchlist sources in a fixed evaluation order.
func Sources() []Source {
	return []Source{SourceSanctions, SourceBlockedPersons, SourcePEP, SourceDeregistered}
}

// sourceWeights are fixed, documented severity weights. Domestic blocked
// persons and deregistered entities weigh highest, sanctions next, PEP
// lowest. They must not vary run to run: the composite score is part of the
// regulatory audit trail.
var sourceWeights = map[Source]int{
	SourceBlockedPersons: 100,
	SourceDeregistered:   80,
	SourceSanctions:      60,
	SourcePEP:            30,
}

// hardBlockSources force rejection regardless of composite score.
var hardBlockSources = map[Source]bool{
	SourceBlockedPersons: true,
}

// Weight returns the fixed severity weight for a source.
func Weight(source Source) int {
	return sourceWeights[source]
}

// IsHardBlock reports whether a hit on the source forces rejection.
func IsHardBlock(source Source) bool {
	return hardBlockSources[source]
}

// ListEntry is one read-only entry of a source snapshot. NormalizedName is
// precomputed at load time so matching does not re-normalize per subject.
type ListEntry struct {
	EntryID        string    `json:"entry_id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"-"`
	LegalID        string    `json:"legal_id,omitempty"`
	Category       string    `json:"category,omitempty"`
	ListedAt       time.Time `json:"listed_at,omitempty"`
}

// Provenance marks where a source snapshot came from, so fallback data is
// always distinguishable from the authoritative list.
type Provenance string

const (
	ProvenanceFile    Provenance = "file"
	ProvenanceBuiltin Provenance = "builtin_fallback"
	ProvenanceNone    Provenance = "unavailable"
)

// SourceSnapshot is one loaded watchlist. Err is set when the snapshot could
// not be loaded; entries may still hold fallback data in that case, marked by
// Provenance.
type SourceSnapshot struct {
	Source     Source
	Provenance Provenance
	Entries    []ListEntry
	Err        string
}

// Unavailable reports whether the source must not be trusted as
// authoritative for this run.
func (s *SourceSnapshot) Unavailable() bool {
	return s == nil || s.Err != ""
}

// Set is one consistent snapshot version across all sources. A batch run
// uses a single Set for every subject it processes.
type Set struct {
	LoadedAt time.Time
	Sources  map[Source]*SourceSnapshot
}

// MatchedEntry is one candidate hit returned to the caller.
type MatchedEntry struct {
	EntryID  string    `json:"entry_id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	ListedAt time.Time `json:"listed_at,omitempty"`
}

// MatchResult is the tagged per-source outcome. All fields are always
// populated; Error marks a degraded lookup whose Found=false must not be
// read as a clean pass.
type MatchResult struct {
	Found   bool           `json:"found"`
	Total   int            `json:"total"`
	Entries []MatchedEntry `json:"entries"`
	Error   string         `json:"error,omitempty"`
}

// Tier is the ordinal risk classification.
type Tier string

const (
	TierLow      Tier = "LOW"
	TierMedium   Tier = "MEDIUM"
	TierHigh     Tier = "HIGH"
	TierCritical Tier = "CRITICAL"
)

// Decision is the automatic outcome of a screening run. DecisionPending is
// the stored state of a subject that has never been screened.
type Decision string

const (
	DecisionPending      Decision = "PENDING"
	DecisionApproved     Decision = "APPROVED"
	DecisionManualReview Decision = "MANUAL_REVIEW"
	DecisionRejected     Decision = "REJECTED"
)

// Assessment is the complete result of screening one identity against one
// snapshot set.
type Assessment struct {
	Score       int                    `json:"score"`
	Tier        Tier                   `json:"tier"`
	Decision    Decision               `json:"decision"`
	Alerts      []string               `json:"alerts"`
	PerSource   map[Source]MatchResult `json:"per_source"`
	EvaluatedAt time.Time              `json:"evaluated_at"`
}

// HardBlockHit reports whether any hard-block source matched.
func (a *Assessment) HardBlockHit() bool {
	for source, result := range a.PerSource {
		if result.Found && IsHardBlock(source) {
			return true
		}
	}
	return false
}

// SourceHits flattens the per-source results into the boolean flags persisted
// on the subject's disposition.
func (a *Assessment) SourceHits() map[Source]bool {
	hits := make(map[Source]bool, len(a.PerSource))
	for source, result := range a.PerSource {
		hits[source] = result.Found
	}
	return hits
}
