package screening

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTokenRunes excludes particles and initials ("de", "la", single letters)
// that would otherwise match almost any list entry.
const minTokenRunes = 2

// stripMarks decomposes characters and drops combining marks, so "Pérez" and
// "Perez" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalized is the canonical form of an identity's name. An empty Tokens
// slice means the name cannot be matched; matchers must treat it as "no
// match", never as "matches everything".
type Normalized struct {
	Full   string
	Tokens []string
}

// Normalize canonicalizes one or more raw name strings: lower-cased,
// diacritics stripped, whitespace collapsed. Pure and deterministic.
func Normalize(parts ...string) Normalized {
	full := normalizeString(strings.Join(parts, " "))

	var tokens []string
	for _, token := range strings.Fields(full) {
		if len([]rune(token)) > minTokenRunes {
			tokens = append(tokens, token)
		}
	}
	return Normalized{Full: full, Tokens: tokens}
}

// NormalizeName canonicalizes a single reference-list name. Snapshot loaders
// precompute this once per entry so matching never re-normalizes.
func NormalizeName(s string) string {
	return normalizeString(s)
}

// normalizeString applies the canonical transform to a single string.
func normalizeString(s string) string {
	s = strings.ToLower(s)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}
	return strings.Join(strings.Fields(s), " ")
}
