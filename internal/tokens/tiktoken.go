package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// defaultEncoding is used when no encoding is specified. cl100k_base covers
// the GPT-4 family and is a close proxy for other modern BPE tokenizers.
const defaultEncoding = "cl100k_base"

// TiktokenEstimator counts tokens exactly with a BPE encoding. Slower than
// the word heuristic but exact, which matters for documents that sit right
// at a token threshold.
type TiktokenEstimator struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenEstimator creates an estimator for the given encoding or model
// name. Empty selects the default encoding.
func NewTiktokenEstimator(modelOrEncoding string) (*TiktokenEstimator, error) {
	if modelOrEncoding == "" {
		modelOrEncoding = defaultEncoding
	}

	enc, err := tiktoken.GetEncoding(modelOrEncoding)
	if err != nil {
		// Not an encoding name; try as a model name before giving up.
		enc, err = tiktoken.EncodingForModel(modelOrEncoding)
		if err != nil {
			return nil, fmt.Errorf("no tiktoken encoding for %q: %w", modelOrEncoding, err)
		}
	}

	return &TiktokenEstimator{enc: enc}, nil
}

// Estimate implements Estimator.
func (e *TiktokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	return len(e.enc.Encode(text, nil, nil))
}

// Method implements Estimator.
func (e *TiktokenEstimator) Method() string { return MethodTiktoken }
