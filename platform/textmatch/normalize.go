// Package textmatch provides the text normalization and fuzzy scoring used
// by the catalog filters. This is part of the platform layer and contains no
// business logic.
package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold lowercases, trims and strips diacritics so that "Aïn Sebaâ" and
// "ain sebaa" compare equal. Falls back to plain lowercasing when the
// transform fails on malformed input.
func Fold(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	folded, _, err := transform.String(diacriticStripper, lowered)
	if err != nil {
		return lowered
	}
	return folded
}

// ContainsFold reports whether haystack contains needle after folding both.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
