package speech

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Andréa" -> "Andrea").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// normalizeTranscript lowercases a transcript and strips diacritics so the
// phrase patterns match regardless of how the recognizer spells things.
func normalizeTranscript(s string) string {
	return strings.ToLower(RemoveDiacritics(s))
}

// titleCase uppercases the first letter of a word for display.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
