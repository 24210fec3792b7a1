// Package keyword implements the case-insensitive substring matcher used for
// track and mute filters.
//
// Matching is intentionally substring based, with no word boundaries: "hack"
// matches "hackathon". Keywords configured twice are reported twice.
package keyword

import "strings"

type entry struct {
	keyword string
	lower   string
}

// Matcher holds a keyword list lower-cased once at construction.
type Matcher struct {
	entries []entry
}

// NewMatcher builds a matcher over keywords. Blank entries are ignored.
func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{entries: make([]entry, 0, len(keywords))}
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		m.entries = append(m.entries, entry{keyword: k, lower: strings.ToLower(k)})
	}
	return m
}

// Keywords returns the configured keywords in configuration order.
func (m *Matcher) Keywords() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.keyword
	}
	return out
}

// Len returns the number of configured keywords.
func (m *Matcher) Len() int { return len(m.entries) }

// Match returns every configured keyword contained in text, in configuration
// order. The result is never nil.
func (m *Matcher) Match(text string) []string {
	out := []string{}
	if text == "" || m == nil {
		return out
	}
	lt := strings.ToLower(text)
	for _, e := range m.entries {
		if strings.Contains(lt, e.lower) {
			out = append(out, e.keyword)
		}
	}
	return out
}

// MatchAny runs Match over several texts and concatenates the results.
func (m *Matcher) MatchAny(texts []string) []string {
	out := []string{}
	for _, t := range texts {
		out = append(out, m.Match(t)...)
	}
	return out
}

// Match is a convenience for one-off matching without keeping a Matcher.
func Match(text string, keywords []string) []string {
	return NewMatcher(keywords).Match(text)
}
