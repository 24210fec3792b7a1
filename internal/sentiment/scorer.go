package sentiment

import (
	"strings"

	"tweetgate/internal/util"
)

// Scorer produces a comparative sentiment score for a text: the summed word
// scores divided by the number of tokens.
type Scorer interface {
	Comparative(text string) float64
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(text string) float64

func (f ScorerFunc) Comparative(text string) float64 { return f(text) }

// DefaultLexicon is a small AFINN-style word list, scores in [-5,5].
var DefaultLexicon = map[string]float64{
	"amazing": 4, "awesome": 4, "best": 3, "excellent": 3, "good": 3,
	"great": 3, "happy": 3, "love": 3, "nice": 3, "win": 4,
	"useful": 2, "helpful": 2, "fixed": 2, "secure": 2, "thanks": 2,
	"bad": -3, "breach": -3, "hate": -3, "leak": -2, "terrible": -3,
	"worst": -3, "attack": -1, "vulnerable": -2, "scam": -2, "fail": -2,
}

// Lexicon scores text by looking up each token in a word list.
type Lexicon struct {
	words map[string]float64
}

// NewLexicon builds a scorer from words; nil or empty uses DefaultLexicon.
func NewLexicon(words map[string]float64) *Lexicon {
	if len(words) == 0 {
		words = DefaultLexicon
	}
	l := &Lexicon{words: make(map[string]float64, len(words))}
	for w, s := range words {
		l.words[strings.ToLower(w)] = s
	}
	return l
}

func (l *Lexicon) Comparative(text string) float64 {
	tokens := util.Tokenize(text)
	if len(tokens) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range tokens {
		sum += l.words[strings.TrimPrefix(t, "#")]
	}
	return sum / float64(len(tokens))
}
