package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func ParseInputString(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return normalized
}

func ParseInputStringPtr(input *string) *string {
	if input == nil {
		return nil
	}
	normalized := ParseInputString(*input)
	return &normalized
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents lowercases the input and strips combining diacritics, so that
// "publié" and "publie" or "Coopérative" and "cooperative" compare equal.
func FoldAccents(input string) string {
	folded, _, err := transform.String(accentStripper, input)
	if err != nil {
		return strings.ToLower(input)
	}
	return strings.ToLower(folded)
}
