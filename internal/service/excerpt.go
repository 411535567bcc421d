package service

import "strings"

// ComputeExcerpt returns the short text for a content view: the translation
// description when present, otherwise the body truncated to maxRunes at a
// word boundary. Pure function; callers invoke it explicitly at read time.
func ComputeExcerpt(description, body string, maxRunes int) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	text := strings.Join(strings.Fields(body), " ")
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	cut := string(runes[:maxRunes])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
