// Package slug normalizes raw, user-supplied strings into URL-safe slugs.
// Normalization is deterministic: the same input always yields the same slug.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Characters that do not decompose to ASCII via NFD.
var replacer = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"Æ", "ae",
	"œ", "oe",
	"Œ", "oe",
	"ø", "o",
	"Ø", "o",
	"đ", "d",
	"Đ", "d",
	"ł", "l",
	"Ł", "l",
	"þ", "th",
	"Þ", "th",
	"ð", "d",
	"Ð", "d",
)

// stripMarks decomposes to NFD and drops combining marks, so "žemė"
// becomes "zeme" and "café" becomes "cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize converts raw into a slug: ASCII transliteration, lowercase,
// whitespace and punctuation collapsed to single hyphens, hyphens trimmed.
// Returns "" when nothing slug-worthy remains.
func Normalize(raw string) string {
	s := replacer.Replace(strings.TrimSpace(raw))
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // leading separators are dropped
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// IsValid reports whether s is already in normalized form.
func IsValid(s string) bool {
	return s != "" && s == Normalize(s)
}
