package disposition

import "vigil/internal/screening"

// materiallyChanged reports whether the new state differs from the stored one
// in any field that matters: tier, decision, score, or a per-source hit flag.
// AlertActive and timestamps are bookkeeping, not material state; comparing
// them would break rescreen idempotence.
func materiallyChanged(prev, next *Disposition) bool {
	if prev.Tier != next.Tier || prev.Decision != next.Decision || prev.Score != next.Score {
		return true
	}
	for _, source := range screening.Sources() {
		if prev.SourceHits[source] != next.SourceHits[source] {
			return true
		}
	}
	return false
}

// newHardBlockSources lists hard-block sources hit now that were not hit in
// the stored state.
func newHardBlockSources(prev, next *Disposition) []screening.Source {
	var sources []screening.Source
	for _, source := range screening.Sources() {
		if screening.IsHardBlock(source) && next.SourceHits[source] && !prev.SourceHits[source] {
			sources = append(sources, source)
		}
	}
	return sources
}

// alertWorthy implements the two alerting conditions: the decision moved from
// non-REJECTED to REJECTED, or a previously absent hard-block hit appeared.
func alertWorthy(prev, next *Disposition) bool {
	if next.Decision == screening.DecisionRejected && prev.Decision != screening.DecisionRejected {
		return true
	}
	return len(newHardBlockSources(prev, next)) > 0
}
