package screening

// Score thresholds. The review band is inclusive on both ends: a score of
// exactly 70 still routes to manual review, only 71 and above auto-rejects.
const (
	// highScoreThreshold: score strictly above it is HIGH/REJECTED.
	highScoreThreshold = 70
	// reviewScoreFloor: scores from here up to highScoreThreshold inclusive
	// are MEDIUM/MANUAL_REVIEW.
	reviewScoreFloor = 30
	maxScore         = 100
)

// AggregateScore combines per-source outcomes into a single bounded composite
// score: the sum of fixed source weights over sources that found a hit,
// saturating at 100. Deterministic by construction.
func AggregateScore(perSource map[Source]MatchResult) int {
	score := 0
	for source, result := range perSource {
		if result.Found {
			score += Weight(source)
		}
	}
	return min(score, maxScore)
}

// Classify maps a composite score and the hard-block flag to a risk tier and
// automatic decision. Rule priority (fail-fast):
//  1. Hard-block hit: CRITICAL/REJECTED, unconditionally.
//  2. Score above the high threshold: HIGH/REJECTED.
//  3. Score inside the review band: MEDIUM/MANUAL_REVIEW.
//  4. Otherwise: LOW/APPROVED.
//
// Pure function. Identical inputs always yield identical output; regulatory
// reproducibility depends on it.
func Classify(score int, hardBlockHit bool) (Tier, Decision) {
	if hardBlockHit {
		return TierCritical, DecisionRejected
	}
	if score > highScoreThreshold {
		return TierHigh, DecisionRejected
	}
	if score >= reviewScoreFloor {
		return TierMedium, DecisionManualReview
	}
	return TierLow, DecisionApproved
}
