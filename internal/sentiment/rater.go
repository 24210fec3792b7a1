// Package sentiment turns an opaque comparative sentiment score into a
// bounded rating and bar renderings used as quote commentary.
package sentiment

import (
	"math"
	"strings"

	"tweetgate/internal/model"
)

// Glyphs used to render bars.
type Glyphs struct {
	Positive string
	Negative string
	Neutral  string
}

var (
	DefaultSymbols = Glyphs{Positive: "🟩", Negative: "🟥", Neutral: "⬜"}
	DefaultText    = Glyphs{Positive: "+", Negative: "-", Neutral: "."}
)

// Rater maps comparative scores onto a scale of -Scale..Scale.
type Rater struct {
	Scale   int
	Symbols Glyphs
	Text    Glyphs
}

// NewRater returns a rater with the given scale; scale < 1 falls back to 5.
func NewRater(scale int, symbols Glyphs) Rater {
	if scale < 1 {
		scale = 5
	}
	if symbols == (Glyphs{}) {
		symbols = DefaultSymbols
	}
	return Rater{Scale: scale, Symbols: symbols, Text: DefaultText}
}

// Rate converts a comparative score, nominally in [-1,1], to a rating.
// Scores outside the nominal range produce ratings beyond the scale; only the
// bars are capped.
func (r Rater) Rate(comparative float64) model.Rating {
	scale := r.Scale
	if scale < 1 {
		scale = 5
	}
	step := 100 / float64(scale)
	value := int(roundHalfUp(comparative * 100 / step))
	return model.Rating{
		Comparative: comparative,
		Value:       value,
		SymbolicBar: bar(value, scale, r.Symbols),
		TextBar:     bar(value, scale, r.Text),
	}
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(x float64) float64 { return math.Floor(x + 0.5) }

func bar(value, scale int, g Glyphs) string {
	fill := value
	glyph := g.Positive
	if value < 0 {
		fill = -value
		glyph = g.Negative
	}
	if fill > scale {
		fill = scale
	}
	var b strings.Builder
	for i := 0; i < fill; i++ {
		b.WriteString(glyph)
	}
	for i := fill; i < scale; i++ {
		b.WriteString(g.Neutral)
	}
	return b.String()
}
