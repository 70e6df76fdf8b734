package sentiment

import "strings"

// Scorer maps a piece of text to a polarity score in [-1, 1].
// Implementations must be total: any input yields a score.
type Scorer interface {
	Score(text string) float64
}

// LexiconScorer scores text by counting polarity keywords in a fixed
// lexicon. It is deterministic and does no I/O.
type LexiconScorer struct{}

func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{}
}

var positiveWords = wordSet(
	"high", "gain", "gains", "surge", "surges", "soar", "soars", "rally",
	"rallies", "record", "bull", "bullish", "rise", "rises", "rising",
	"jump", "jumps", "boom", "breakout", "adoption", "growth", "recover",
	"recovers", "recovery", "profit", "profits", "win", "wins", "strong",
	"up", "optimism", "milestone",
)

var negativeWords = wordSet(
	"drop", "drops", "fall", "falls", "falling", "crash", "crashes",
	"plunge", "plunges", "struggle", "struggles", "bear", "bearish",
	"dump", "hack", "hacked", "scam", "ban", "bans", "lawsuit", "loss",
	"losses", "decline", "declines", "slump", "fear", "liquidation",
	"fraud", "selloff", "down", "weak", "collapse", "tumbles",
)

// Score returns (pos-neg)/(pos+neg) over lexicon hits, or 0 when no
// token of the text is in either list.
func (s *LexiconScorer) Score(text string) float64 {
	var pos, neg int
	for _, token := range tokenize(text) {
		if positiveWords[token] {
			pos++
		}
		if negativeWords[token] {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
