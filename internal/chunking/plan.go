// Package chunking decides whether a document needs splitting and computes
// chunk boundaries under the configured strategy. Boundaries are pure data;
// materialization happens elsewhere.
package chunking

import (
	"github.com/jackzampolin/docshard/internal/types"
)

// Finalize reasons recorded on hybrid boundaries.
const (
	FinalizeTokenLimit = "token_limit"
	FinalizePageLimit  = "page_limit"
	FinalizeFinalChunk = "final_chunk"
)

// Boundary is one planned chunk: a zero-based inclusive page range plus its
// token estimate. Consecutive boundaries overlap by the configured amount;
// together they cover every page of the document exactly once or more.
type Boundary struct {
	ChunkIndex int
	StartPage  int
	EndPage    int
	PageCount  int
	TokenCount int

	// FinalizeReason records why the hybrid strategy closed this chunk.
	// Empty for the other strategies.
	FinalizeReason string
}

// Plan computes chunk boundaries for a document that the threshold check has
// already marked as requiring chunking. cfg must be resolved and valid.
func Plan(analysis types.TokenAnalysis, cfg types.ChunkingConfig) ([]Boundary, error) {
	if analysis.TotalPages <= 0 {
		return nil, planningErrorf("document has no pages (totalPages=%d)", analysis.TotalPages)
	}

	switch cfg.Strategy {
	case types.StrategyFixedPages:
		return planFixedPages(analysis, cfg), nil

	case types.StrategyTokenBased:
		if len(analysis.TokensPerPage) != analysis.TotalPages {
			return nil, planningErrorf(
				"token-based planning needs per-page estimates: have %d for %d pages",
				len(analysis.TokensPerPage), analysis.TotalPages)
		}
		return planTokenBased(analysis.TokensPerPage, cfg.MaxTokensPerChunk, cfg.OverlapTokens), nil

	case types.StrategyHybrid:
		if len(analysis.TokensPerPage) != analysis.TotalPages {
			return nil, planningErrorf(
				"hybrid planning needs per-page estimates: have %d for %d pages",
				len(analysis.TokensPerPage), analysis.TotalPages)
		}
		return planHybrid(analysis.TokensPerPage, cfg.TargetTokensPerChunk,
			cfg.MaxPagesPerChunk, cfg.OverlapTokens), nil

	default:
		return nil, planningErrorf("unknown chunking strategy %q", cfg.Strategy)
	}
}

// planFixedPages splits by page count alone. Every chunk spans chunkSize
// pages; chunks after the first start overlapPages before the previous
// chunk's end so boundary context is not lost. The last chunk may be short.
func planFixedPages(analysis types.TokenAnalysis, cfg types.ChunkingConfig) []Boundary {
	totalPages := analysis.TotalPages
	var chunks []Boundary

	start := 0
	for idx := 0; start < totalPages; idx++ {
		end := start + cfg.ChunkSize - 1
		if end > totalPages-1 {
			end = totalPages - 1
		}
		chunks = append(chunks, Boundary{
			ChunkIndex: idx,
			StartPage:  start,
			EndPage:    end,
			PageCount:  end - start + 1,
			TokenCount: sumTokens(analysis.TokensPerPage, start, end),
		})
		if end == totalPages-1 {
			break
		}
		start = end + 1 - cfg.OverlapPages
	}
	return chunks
}

// planTokenBased accumulates pages until adding the next one would exceed
// maxTokens, then closes the chunk and re-includes trailing pages worth
// roughly overlapTokens of context in the next one. A single page above
// maxTokens still gets its own chunk.
func planTokenBased(perPage []int, maxTokens, overlapTokens int) []Boundary {
	var chunks []Boundary
	start := 0
	curTokens := 0
	idx := 0

	for pageNum, pageTokens := range perPage {
		if curTokens+pageTokens > maxTokens && curTokens > 0 {
			chunks = append(chunks, Boundary{
				ChunkIndex: idx,
				StartPage:  start,
				EndPage:    pageNum - 1,
				PageCount:  pageNum - start,
				TokenCount: curTokens,
			})

			// Walk backward until the overlap budget is met.
			overlapStart := pageNum - 1
			accumulated := 0
			for overlapStart >= start && accumulated < overlapTokens {
				accumulated += perPage[overlapStart]
				overlapStart--
			}

			start = overlapStart + 1
			if start < 0 {
				start = 0
			}
			curTokens = accumulated + pageTokens
			idx++
		} else {
			curTokens += pageTokens
		}
	}

	if start < len(perPage) {
		chunks = append(chunks, Boundary{
			ChunkIndex: idx,
			StartPage:  start,
			EndPage:    len(perPage) - 1,
			PageCount:  len(perPage) - start,
			TokenCount: curTokens,
		})
	}
	return chunks
}

// planHybrid targets targetTokens per chunk as a soft limit while never
// letting a chunk exceed maxPages. Overlap is token-budgeted like the
// token-based strategy but capped at hybridOverlapPageCap pages so sparse
// pages cannot drag most of the previous chunk along.
func planHybrid(perPage []int, targetTokens, maxPages, overlapTokens int) []Boundary {
	var chunks []Boundary
	start := 0
	curTokens := 0
	curPages := 0
	idx := 0

	for pageNum, pageTokens := range perPage {
		hitTokenTarget := curTokens+pageTokens > targetTokens && curTokens > 0
		hitPageLimit := curPages >= maxPages && curPages > 0

		if hitTokenTarget || hitPageLimit {
			reason := FinalizeTokenLimit
			if hitPageLimit {
				reason = FinalizePageLimit
			}
			chunks = append(chunks, Boundary{
				ChunkIndex:     idx,
				StartPage:      start,
				EndPage:        pageNum - 1,
				PageCount:      curPages,
				TokenCount:     curTokens,
				FinalizeReason: reason,
			})

			overlapStart, overlapPages, accumulated := walkOverlap(perPage, start, pageNum-1, overlapTokens)
			start = overlapStart
			curTokens = accumulated + pageTokens
			curPages = overlapPages + 1
			idx++
		} else {
			curTokens += pageTokens
			curPages++
		}
	}

	if curPages == 0 {
		return chunks
	}

	// The trailing pages may still exceed the page cap when the loop above
	// never hit the token target. Split them at maxPages until they fit.
	for curPages > maxPages {
		splitEnd := start + maxPages - 1
		chunks = append(chunks, Boundary{
			ChunkIndex:     idx,
			StartPage:      start,
			EndPage:        splitEnd,
			PageCount:      maxPages,
			TokenCount:     sumTokens(perPage, start, splitEnd),
			FinalizeReason: FinalizePageLimit,
		})

		overlapStart, _, _ := walkOverlap(perPage, start, splitEnd, overlapTokens)
		start = overlapStart
		curPages = len(perPage) - start
		idx++
	}

	chunks = append(chunks, Boundary{
		ChunkIndex:     idx,
		StartPage:      start,
		EndPage:        len(perPage) - 1,
		PageCount:      curPages,
		TokenCount:     sumTokens(perPage, start, len(perPage)-1),
		FinalizeReason: FinalizeFinalChunk,
	})
	return chunks
}

// walkOverlap walks backward from endPage (not below floor) accumulating
// tokens until the overlap budget or the page cap is met. It returns the
// first page of the next chunk, the number of re-included pages, and their
// token total.
func walkOverlap(perPage []int, floor, endPage, overlapTokens int) (nextStart, pages, accumulated int) {
	p := endPage
	for p >= floor && accumulated < overlapTokens && pages < hybridOverlapPageCap {
		accumulated += perPage[p]
		pages++
		p--
	}
	nextStart = p + 1
	if nextStart < 0 {
		nextStart = 0
	}
	return nextStart, pages, accumulated
}

func sumTokens(perPage []int, start, end int) int {
	if len(perPage) == 0 {
		return 0
	}
	if end > len(perPage)-1 {
		end = len(perPage) - 1
	}
	total := 0
	for i := start; i <= end; i++ {
		total += perPage[i]
	}
	return total
}
