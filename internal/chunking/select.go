package chunking

import (
	"fmt"

	"github.com/jackzampolin/docshard/internal/types"
)

// Decision is the outcome of the threshold check for one document.
type Decision struct {
	RequiresChunking       bool
	Reason                 string
	PageThresholdExceeded  bool
	TokenThresholdExceeded bool
}

// Decide checks the document profile against the strategy's thresholds.
//
//   - fixed-pages looks at page count only
//   - token-based looks at token count only
//   - hybrid chunks when either threshold is exceeded
func Decide(analysis types.TokenAnalysis, cfg types.ChunkingConfig) Decision {
	pages := analysis.TotalPages
	toks := analysis.TotalTokens

	switch cfg.Strategy {
	case types.StrategyFixedPages:
		exceeded := pages > cfg.PageThreshold
		return Decision{
			RequiresChunking:      exceeded,
			PageThresholdExceeded: exceeded,
			Reason:                fixedPagesReason(pages, cfg.PageThreshold, exceeded),
		}

	case types.StrategyTokenBased:
		exceeded := toks > cfg.TokenThreshold
		return Decision{
			RequiresChunking:       exceeded,
			TokenThresholdExceeded: exceeded,
			Reason:                 tokenBasedReason(toks, cfg.TokenThreshold, exceeded),
		}

	default: // hybrid
		pageExceeded := pages > cfg.PageThreshold
		tokenExceeded := toks > cfg.TokenThreshold
		return Decision{
			RequiresChunking:       pageExceeded || tokenExceeded,
			PageThresholdExceeded:  pageExceeded,
			TokenThresholdExceeded: tokenExceeded,
			Reason: hybridReason(pages, toks, cfg.PageThreshold, cfg.TokenThreshold,
				pageExceeded, tokenExceeded),
		}
	}
}

func fixedPagesReason(pages, threshold int, exceeded bool) string {
	rel := "below"
	if exceeded {
		rel = "exceeding"
	}
	return fmt.Sprintf("Document has %d pages, %s threshold of %d pages (fixed-pages strategy)",
		pages, rel, threshold)
}

func tokenBasedReason(toks, threshold int, exceeded bool) string {
	rel := "below"
	if exceeded {
		rel = "exceeding"
	}
	return fmt.Sprintf("Document has %d tokens, %s threshold of %d tokens (token-based strategy)",
		toks, rel, threshold)
}

func hybridReason(pages, toks, pageThreshold, tokenThreshold int, pageExceeded, tokenExceeded bool) string {
	switch {
	case pageExceeded && tokenExceeded:
		return fmt.Sprintf(
			"Document has %d pages (threshold: %d) and %d tokens (threshold: %d), both thresholds exceeded (hybrid strategy)",
			pages, pageThreshold, toks, tokenThreshold)
	case pageExceeded:
		return fmt.Sprintf(
			"Document has %d pages, exceeding threshold of %d pages; %d tokens below threshold of %d (hybrid strategy)",
			pages, pageThreshold, toks, tokenThreshold)
	case tokenExceeded:
		return fmt.Sprintf(
			"Document has %d tokens, exceeding threshold of %d tokens; %d pages below threshold of %d (hybrid strategy)",
			toks, tokenThreshold, pages, pageThreshold)
	default:
		return fmt.Sprintf(
			"Document has %d pages and %d tokens, below thresholds of %d pages and %d tokens (hybrid strategy)",
			pages, toks, pageThreshold, tokenThreshold)
	}
}
