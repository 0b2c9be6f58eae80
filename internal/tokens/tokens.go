// Package tokens provides per-page token estimation for chunk planning.
package tokens

import (
	"regexp"
)

// Estimation method names, recorded in TokenAnalysis.EstimationMethod.
const (
	MethodWord     = "word"
	MethodTiktoken = "tiktoken"
)

// Estimator turns page text into a token estimate. Implementations must be
// deterministic for identical input; aggregation math in tests depends on it.
type Estimator interface {
	// Estimate returns the estimated token count for text.
	// Malformed or empty input estimates to zero, never an error.
	Estimate(text string) int

	// Method returns the estimation method name.
	Method() string
}

// wordRe matches word runs; anything that isn't alphanumeric splits words.
var wordRe = regexp.MustCompile(`\b\w+\b`)

// wordMultiplier converts a word count into a conservative token estimate.
// ~1.3 tokens per word overestimates slightly for English text, which is the
// safe direction when deciding whether a document fits in a model context.
const wordMultiplier = 1.3

// WordEstimator estimates tokens from a word count heuristic. It trades
// ~10-15% accuracy for being orders of magnitude faster than tokenizing.
type WordEstimator struct{}

// NewWordEstimator returns the default word-count estimator.
func NewWordEstimator() *WordEstimator { return &WordEstimator{} }

// Estimate implements Estimator.
func (e *WordEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	words := wordRe.FindAllStringIndex(text, -1)
	return int(float64(len(words)) * wordMultiplier)
}

// Method implements Estimator.
func (e *WordEstimator) Method() string { return MethodWord }

// New returns the estimator for the given method name. Unknown or empty
// method names fall back to the word heuristic, as does a tiktoken encoder
// that fails to initialize.
func New(method string) Estimator {
	if method == MethodTiktoken {
		if est, err := NewTiktokenEstimator(""); err == nil {
			return est
		}
	}
	return NewWordEstimator()
}
