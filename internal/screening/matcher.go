package screening

import "strings"

// maxMatchEntries caps the candidate list returned per source. Total still
// counts every match so reviewers can see when the cap truncated.
const maxMatchEntries = 10

// matchSource finds candidate entries for a normalized identity in one source
// snapshot. A candidate matches when every query token is a substring of its
// normalized name (AND over tokens, OR over candidates), or when the
// identity's legal identifier exactly matches the entry's. The heuristic is
// recall-biased on purpose: every hit still goes through human disposition.
//
// An unavailable snapshot yields Found=false with Error set; it never aborts
// sibling sources.
func matchSource(query Normalized, legalID string, snap *SourceSnapshot) MatchResult {
	result := MatchResult{Entries: []MatchedEntry{}}

	if snap.Unavailable() {
		if snap == nil {
			result.Error = "snapshot not loaded"
		} else {
			result.Error = snap.Err
		}
		return result
	}

	for _, entry := range snap.Entries {
		if !entryMatches(query, legalID, entry) {
			continue
		}
		result.Total++
		if len(result.Entries) < maxMatchEntries {
			result.Entries = append(result.Entries, MatchedEntry{
				EntryID:  entry.EntryID,
				Name:     entry.Name,
				Category: entry.Category,
				ListedAt: entry.ListedAt,
			})
		}
	}
	result.Found = result.Total > 0
	return result
}

func entryMatches(query Normalized, legalID string, entry ListEntry) bool {
	if legalID != "" && entry.LegalID == legalID {
		return true
	}
	// No usable tokens means the name cannot be matched at all.
	if len(query.Tokens) == 0 {
		return false
	}
	for _, token := range query.Tokens {
		if !strings.Contains(entry.NormalizedName, token) {
			return false
		}
	}
	return true
}

// NormalizeLegalID canonicalizes a national tax/legal identifier for exact
// comparison.
func NormalizeLegalID(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
