package chunking

import (
	"github.com/jackzampolin/docshard/internal/pdfinfo"
	"github.com/jackzampolin/docshard/internal/tokens"
	"github.com/jackzampolin/docshard/internal/types"
)

// Analyze builds the whole-document token profile from extracted page text.
// Pages without a text layer estimate to zero tokens.
func Analyze(doc *pdfinfo.Document, est tokens.Estimator) types.TokenAnalysis {
	perPage := make([]int, doc.PageCount)
	total := 0
	for i := range perPage {
		var text string
		if i < len(doc.PageText) {
			text = doc.PageText[i]
		}
		perPage[i] = est.Estimate(text)
		total += perPage[i]
	}

	avg := 0.0
	if doc.PageCount > 0 {
		avg = float64(total) / float64(doc.PageCount)
	}

	return types.TokenAnalysis{
		TotalPages:       doc.PageCount,
		TotalTokens:      total,
		AvgTokensPerPage: avg,
		TokensPerPage:    perPage,
		EstimationMethod: est.Method(),
	}
}
