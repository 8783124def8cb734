// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes characters and strips combining marks, so that
// "Café" and "Cafe" produce the same join key. Transformers are stateful,
// build a fresh chain per call.
func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// CleanText trims surrounding whitespace, collapses internal whitespace runs
// to a single space, and drops null bytes. Some spreadsheet exports pad
// fields with stray tabs or embed NULs.
func CleanText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	space := false
	for _, r := range raw {
		switch {
		case r == 0:
			// drop
		case unicode.IsSpace(r):
			space = true
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TitleKey converts a book title to the canonical join key used to match
// meeting-log rows against rating rows. Matching is best-effort string
// equality: lowercase, whitespace-collapsed, diacritics folded. Titles that
// drift further apart than this (subtitles, translations) end up unmatched.
func TitleKey(raw string) string {
	s := CleanText(raw)
	if s == "" {
		return ""
	}

	folded, _, err := transform.String(foldTransformer(), s)
	if err == nil {
		s = folded
	}

	return strings.ToLower(s)
}

// MemberColumn converts a member name to its canonical column name in the
// pivoted report: cleaned, spaces replaced with underscores.
// "Koen v W" -> "Koen_v_W".
func MemberColumn(name string) string {
	return strings.ReplaceAll(CleanText(name), " ", "_")
}
