package util

import (
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Tokenize lower-cases s and splits it on spaces and punctuation.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	repl := strings.NewReplacer(
		",", " ", ".", " ", "!", " ", "?", " ", ":", " ", ";", " ",
		"\n", " ", "\t", " ", "\r", " ", "(", " ", ")", " ", "[", " ", "]", " ",
		"\"", " ",
	)
	s = repl.Replace(s)
	return strings.Fields(s)
}

// Truncate shortens s to at most n user-perceived characters, appending an
// ellipsis when something was cut. Emoji sequences are never split.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	g := uniseg.NewGraphemes(s)
	var b strings.Builder
	count := 0
	for g.Next() {
		if count == n {
			return b.String() + "…"
		}
		b.WriteString(g.Str())
		count++
	}
	return s
}

// Preview renders text for a single log line.
func Preview(s string) string {
	return Truncate(NormalizeWhitespace(s), 80)
}
