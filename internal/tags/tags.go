// Package tags normalizes user-authored photo labels and assembles the
// combined text that feeds the text-only embedding space.
package tags

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Normalize turns freeform comma-separated labels into canonical form:
// lowercase, no diacritics, trimmed, deduplicated, comma-joined.
func Normalize(raw string) string {
	seen := make(map[string]bool)
	var out []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(strings.ToLower(RemoveDiacritics(tag)))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return strings.Join(out, ", ")
}

// JoinAllText combines tag text and OCR text into the string embedded
// into the text-only vector space. Tag text always comes first so that
// labels survive any truncation done by the embedding model.
func JoinAllText(tagText, ocrText string) string {
	tagText = strings.TrimSpace(tagText)
	ocrText = strings.TrimSpace(ocrText)
	switch {
	case tagText == "":
		return ocrText
	case ocrText == "":
		return tagText
	default:
		return tagText + ", " + ocrText
	}
}
