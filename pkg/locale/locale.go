// Package locale holds the locale vocabulary the content engine works with:
// which locales are active for the site and which one is the configured
// default that resolution falls back to.
package locale

import "strings"

// Locale is a lowercase language tag such as "en" or "lt".
type Locale string

const (
	LocaleEn Locale = "en"
	LocaleLt Locale = "lt"
	LocaleRu Locale = "ru"
)

// Set is the collection of active locales plus the configured default.
type Set struct {
	active map[Locale]bool
	def    Locale
}

// NewSet builds a locale set. The default locale is always active even when
// missing from the list.
func NewSet(def Locale, active []Locale) *Set {
	s := &Set{
		active: make(map[Locale]bool, len(active)+1),
		def:    def,
	}
	s.active[def] = true
	for _, l := range active {
		s.active[l] = true
	}
	return s
}

// Default returns the configured default locale.
func (s *Set) Default() Locale {
	return s.def
}

// IsActive reports whether l is an active site locale.
func (s *Set) IsActive(l Locale) bool {
	return s.active[l]
}

// Active returns the active locales in no particular order.
func (s *Set) Active() []Locale {
	out := make([]Locale, 0, len(s.active))
	for l := range s.active {
		out = append(out, l)
	}
	return out
}

// Normalize lowercases and trims a raw locale string, keeping only the
// language part of tags like "en-US".
func Normalize(raw string) Locale {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	return Locale(s)
}
