package chunking

import (
	"errors"
	"testing"

	"github.com/jackzampolin/docshard/internal/types"
)

func uniformPages(pages, tokensPerPage int) types.TokenAnalysis {
	per := make([]int, pages)
	total := 0
	for i := range per {
		per[i] = tokensPerPage
		total += tokensPerPage
	}
	return types.TokenAnalysis{
		TotalPages:       pages,
		TotalTokens:      total,
		AvgTokensPerPage: float64(tokensPerPage),
		TokensPerPage:    per,
	}
}

// checkCoverage verifies the planning invariants: ascending chunk indices,
// contiguity modulo overlap, and full coverage of [0, totalPages).
func checkCoverage(t *testing.T, chunks []Boundary, totalPages int) {
	t.Helper()

	if len(chunks) == 0 {
		t.Fatal("no chunks planned")
	}
	if chunks[0].StartPage != 0 {
		t.Errorf("first chunk starts at %d, want 0", chunks[0].StartPage)
	}
	if last := chunks[len(chunks)-1]; last.EndPage != totalPages-1 {
		t.Errorf("last chunk ends at %d, want %d", last.EndPage, totalPages-1)
	}
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if c.StartPage > c.EndPage {
			t.Errorf("chunk %d has inverted range [%d,%d]", i, c.StartPage, c.EndPage)
		}
		if c.PageCount != c.EndPage-c.StartPage+1 {
			t.Errorf("chunk %d pageCount %d does not match range [%d,%d]",
				i, c.PageCount, c.StartPage, c.EndPage)
		}
		if i > 0 {
			prev := chunks[i-1]
			if c.StartPage > prev.EndPage+1 {
				t.Errorf("gap between chunk %d (ends %d) and chunk %d (starts %d)",
					i-1, prev.EndPage, i, c.StartPage)
			}
		}
	}
}

func TestPlanFixedPages(t *testing.T) {
	cfg := Resolve(&types.ChunkingConfig{Strategy: types.StrategyFixedPages})

	t.Run("120 pages with defaults", func(t *testing.T) {
		chunks, err := Plan(types.TokenAnalysis{TotalPages: 120}, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []Boundary{
			{ChunkIndex: 0, StartPage: 0, EndPage: 49, PageCount: 50},
			{ChunkIndex: 1, StartPage: 45, EndPage: 94, PageCount: 50},
			{ChunkIndex: 2, StartPage: 90, EndPage: 119, PageCount: 30},
		}
		if len(chunks) != len(want) {
			t.Fatalf("expected %d chunks, got %d: %+v", len(want), len(chunks), chunks)
		}
		for i, w := range want {
			got := chunks[i]
			if got.StartPage != w.StartPage || got.EndPage != w.EndPage || got.PageCount != w.PageCount {
				t.Errorf("chunk %d: got [%d,%d] (%d pages), want [%d,%d] (%d pages)",
					i, got.StartPage, got.EndPage, got.PageCount, w.StartPage, w.EndPage, w.PageCount)
			}
		}
		checkCoverage(t, chunks, 120)
	})

	t.Run("exact multiple of chunk size", func(t *testing.T) {
		chunks, err := Plan(types.TokenAnalysis{TotalPages: 50}, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(chunks))
		}
		checkCoverage(t, chunks, 50)
	})

	t.Run("token counts carried when estimates present", func(t *testing.T) {
		analysis := uniformPages(120, 100)
		chunks, err := Plan(analysis, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chunks[0].TokenCount != 50*100 {
			t.Errorf("chunk 0 tokens = %d, want %d", chunks[0].TokenCount, 50*100)
		}
	})

	t.Run("overlap stays below chunk size", func(t *testing.T) {
		chunks, _ := Plan(types.TokenAnalysis{TotalPages: 500}, cfg)
		for i := 1; i < len(chunks); i++ {
			overlap := chunks[i-1].EndPage - chunks[i].StartPage + 1
			if overlap >= cfg.ChunkSize {
				t.Errorf("chunk %d overlap %d >= chunkSize %d", i, overlap, cfg.ChunkSize)
			}
		}
	})
}

func TestPlanTokenBased(t *testing.T) {
	cfg := Resolve(&types.ChunkingConfig{Strategy: types.StrategyTokenBased})

	t.Run("respects max tokens per chunk", func(t *testing.T) {
		analysis := uniformPages(100, 1500)
		chunks, err := Plan(analysis, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, c := range chunks {
			if c.TokenCount > cfg.MaxTokensPerChunk {
				t.Errorf("chunk %d has %d tokens, above limit %d",
					c.ChunkIndex, c.TokenCount, cfg.MaxTokensPerChunk)
			}
		}
		checkCoverage(t, chunks, 100)
	})

	t.Run("overlap re-includes trailing pages", func(t *testing.T) {
		analysis := uniformPages(100, 1500)
		chunks, _ := Plan(analysis, cfg)
		if len(chunks) < 2 {
			t.Fatalf("expected multiple chunks, got %d", len(chunks))
		}
		// 5000 token budget at 1500 tokens/page means 4 pages re-included.
		if got := chunks[0].EndPage - chunks[1].StartPage + 1; got != 4 {
			t.Errorf("overlap pages = %d, want 4", got)
		}
	})

	t.Run("oversized single page gets its own chunk", func(t *testing.T) {
		analysis := types.TokenAnalysis{
			TotalPages:    3,
			TotalTokens:   200000 + 200,
			TokensPerPage: []int{100, 200000, 100},
		}
		chunks, err := Plan(analysis, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		checkCoverage(t, chunks, 3)
	})

	t.Run("missing per-page estimates fails planning", func(t *testing.T) {
		_, err := Plan(types.TokenAnalysis{TotalPages: 10, TotalTokens: 200000}, cfg)
		var perr *PlanningError
		if !errors.As(err, &perr) {
			t.Fatalf("expected PlanningError, got %v", err)
		}
	})
}

func TestPlanHybrid(t *testing.T) {
	cfg := Resolve(&types.ChunkingConfig{Strategy: types.StrategyHybrid})

	t.Run("page cap enforced for sparse documents", func(t *testing.T) {
		analysis := uniformPages(200, 100)
		chunks, err := Plan(analysis, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, c := range chunks {
			if c.PageCount > cfg.MaxPagesPerChunk {
				t.Errorf("chunk %d spans %d pages, above cap %d",
					c.ChunkIndex, c.PageCount, cfg.MaxPagesPerChunk)
			}
		}
		checkCoverage(t, chunks, 200)
		if chunks[0].FinalizeReason != FinalizePageLimit {
			t.Errorf("chunk 0 finalize reason = %q, want %q",
				chunks[0].FinalizeReason, FinalizePageLimit)
		}
		if last := chunks[len(chunks)-1]; last.FinalizeReason != FinalizeFinalChunk {
			t.Errorf("last finalize reason = %q, want %q", last.FinalizeReason, FinalizeFinalChunk)
		}
	})

	t.Run("token target closes dense chunks early", func(t *testing.T) {
		analysis := uniformPages(200, 2000)
		chunks, err := Plan(analysis, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chunks[0].FinalizeReason != FinalizeTokenLimit {
			t.Errorf("chunk 0 finalize reason = %q, want %q",
				chunks[0].FinalizeReason, FinalizeTokenLimit)
		}
		// 80000 target at 2000 tokens/page closes after 40 pages.
		if chunks[0].PageCount != 40 {
			t.Errorf("chunk 0 spans %d pages, want 40", chunks[0].PageCount)
		}
		checkCoverage(t, chunks, 200)
	})

	t.Run("overlap walk capped at ten pages", func(t *testing.T) {
		// Near-empty pages would satisfy the token budget only after
		// dozens of pages; the cap keeps the overlap bounded.
		analysis := uniformPages(200, 100)
		chunks, _ := Plan(analysis, cfg)
		if len(chunks) < 2 {
			t.Fatalf("expected multiple chunks, got %d", len(chunks))
		}
		overlap := chunks[0].EndPage - chunks[1].StartPage + 1
		if overlap != 10 {
			t.Errorf("overlap pages = %d, want 10", overlap)
		}
	})

	t.Run("zero pages fails planning", func(t *testing.T) {
		_, err := Plan(types.TokenAnalysis{TotalPages: 0}, cfg)
		var perr *PlanningError
		if !errors.As(err, &perr) {
			t.Fatalf("expected PlanningError, got %v", err)
		}
	})
}
