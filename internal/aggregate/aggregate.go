// Package aggregate merges per-chunk classification and extraction results
// into one document-level result. Aggregation is a pure function of its
// inputs: results are reordered by chunk index, so output does not depend
// on completion order.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/jackzampolin/docshard/internal/chunking"
	"github.com/jackzampolin/docshard/internal/types"
)

// Aggregate merges chunk results for one document.
//
// Failed chunks (non-empty Error) are excluded from voting and entity
// collection but counted in the summary. When the success ratio falls below
// the threshold the result is flagged partial, never rejected.
func Aggregate(req types.AggregationRequest) (*types.AggregatedResult, error) {
	if req.DocumentID == "" {
		return nil, fmt.Errorf("missing required field: documentId")
	}
	if len(req.ChunkResults) == 0 {
		return nil, fmt.Errorf("missing required field: chunkResults")
	}

	strategy := req.AggregationStrategy
	if strategy == "" {
		strategy = types.AggregationMajorityVote
	}
	switch strategy {
	case types.AggregationMajorityVote, types.AggregationWeightedVote, types.AggregationFirstChunk:
	default:
		return nil, fmt.Errorf("unknown aggregation strategy %q", strategy)
	}

	threshold := req.MinSuccessThreshold
	if threshold == 0 {
		threshold = chunking.DefaultMinSuccessThreshold
	}

	// Fix the processing order up front so aggregation is deterministic
	// regardless of arrival order.
	results := make([]types.ChunkResult, len(req.ChunkResults))
	copy(results, req.ChunkResults)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ChunkIndex < results[j].ChunkIndex
	})

	summary := summarize(results)
	partial := float64(summary.SuccessfulChunks)/float64(summary.TotalChunks) < threshold

	classification, confidence := aggregateClassifications(results, strategy, summary.TotalChunks)
	if summary.SuccessfulChunks == 0 {
		partial = true
	}

	return &types.AggregatedResult{
		DocumentID:               req.DocumentID,
		Classification:           classification,
		ClassificationConfidence: confidence,
		Entities:                 dedupeEntities(results),
		ChunksSummary:            summary,
		PartialResult:            partial,
	}, nil
}

func summarize(results []types.ChunkResult) types.ChunksSummary {
	summary := types.ChunksSummary{TotalChunks: len(results)}
	for _, r := range results {
		if r.Failed() {
			summary.FailedChunks++
			continue
		}
		summary.SuccessfulChunks++
		if r.ProcessingResult != nil {
			summary.TotalTokensProcessed += r.ProcessingResult.TokensProcessed
		}
	}
	return summary
}

// aggregateClassifications picks the document classification. results must
// already be sorted by chunk index.
func aggregateClassifications(results []types.ChunkResult, strategy string, totalChunks int) (string, float64) {
	type vote struct {
		label      string
		chunkIndex int
		confidence float64
	}

	var votes []vote
	for _, r := range results {
		if r.Failed() || r.ClassificationResult == nil {
			continue
		}
		label := r.ClassificationResult.DocumentClassification
		if label == "" {
			continue
		}
		votes = append(votes, vote{
			label:      label,
			chunkIndex: r.ChunkIndex,
			confidence: r.ClassificationResult.Confidence,
		})
	}
	if len(votes) == 0 {
		return "", 0
	}

	switch strategy {
	case types.AggregationFirstChunk:
		first := votes[0]
		if first.confidence > 0 {
			return first.label, first.confidence
		}
		return first.label, 1.0

	case types.AggregationWeightedVote:
		// Earlier chunks carry more signal (title pages, letterheads),
		// so weight decays with chunk index.
		weights := make(map[string]float64)
		totalWeight := 0.0
		for _, v := range votes {
			w := 1.0 / float64(v.chunkIndex+1)
			weights[v.label] += w
			totalWeight += w
		}
		winner := pickWinner(weights)
		return winner, weights[winner] / totalWeight

	default: // majority-vote
		counts := make(map[string]float64)
		for _, v := range votes {
			counts[v.label]++
		}
		winner := pickWinner(counts)
		return winner, counts[winner] / float64(totalChunks)
	}
}

// pickWinner returns the label with the highest tally. Ties break to the
// lexicographically smallest label so repeated aggregations of the same
// input always agree.
func pickWinner(tally map[string]float64) string {
	winner := ""
	best := -1.0
	for label, n := range tally {
		if n > best || (n == best && label < winner) {
			winner = label
			best = n
		}
	}
	return winner
}

// dedupeEntities concatenates entities across successful chunks. Entities
// without a page are deduplicated by (type, value); entities with a page are
// kept unconditionally since each represents a distinct physical occurrence.
// results must already be sorted by chunk index.
func dedupeEntities(results []types.ChunkResult) []types.Entity {
	entities := make([]types.Entity, 0)
	type key struct{ typ, value string }
	seen := make(map[key]struct{})

	for _, r := range results {
		if r.Failed() || r.ProcessingResult == nil {
			continue
		}
		chunkIndex := r.ChunkIndex
		for _, e := range r.ProcessingResult.Entities {
			if e.Type == "" || e.Value == "" {
				continue
			}
			idx := chunkIndex
			e.ChunkIndex = &idx

			if e.Page == nil {
				k := key{e.Type, e.Value}
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
			}
			entities = append(entities, e)
		}
	}

	sort.SliceStable(entities, func(i, j int) bool {
		ci, cj := *entities[i].ChunkIndex, *entities[j].ChunkIndex
		if ci != cj {
			return ci < cj
		}
		return pageOf(entities[i]) < pageOf(entities[j])
	})
	return entities
}

func pageOf(e types.Entity) int {
	if e.Page == nil {
		return 0
	}
	return *e.Page
}
