package chunking

import (
	"strings"
	"testing"

	"github.com/jackzampolin/docshard/internal/types"
)

func TestDecide(t *testing.T) {
	t.Run("hybrid chunks on page threshold", func(t *testing.T) {
		cfg := Resolve(nil)
		d := Decide(types.TokenAnalysis{TotalPages: 120, TotalTokens: 50000}, cfg)
		if !d.RequiresChunking {
			t.Error("expected chunking required")
		}
		if !d.PageThresholdExceeded || d.TokenThresholdExceeded {
			t.Errorf("exceeded flags: pages=%v tokens=%v", d.PageThresholdExceeded, d.TokenThresholdExceeded)
		}
	})

	t.Run("hybrid chunks on token threshold", func(t *testing.T) {
		cfg := Resolve(nil)
		d := Decide(types.TokenAnalysis{TotalPages: 50, TotalTokens: 200000}, cfg)
		if !d.RequiresChunking {
			t.Error("expected chunking required")
		}
		if d.PageThresholdExceeded || !d.TokenThresholdExceeded {
			t.Errorf("exceeded flags: pages=%v tokens=%v", d.PageThresholdExceeded, d.TokenThresholdExceeded)
		}
	})

	t.Run("hybrid below both thresholds", func(t *testing.T) {
		cfg := Resolve(nil)
		d := Decide(types.TokenAnalysis{TotalPages: 50, TotalTokens: 100000}, cfg)
		if d.RequiresChunking {
			t.Errorf("expected no chunking, reason: %s", d.Reason)
		}
		if !strings.Contains(d.Reason, "below thresholds") {
			t.Errorf("unexpected reason: %s", d.Reason)
		}
	})

	t.Run("threshold boundary is exclusive", func(t *testing.T) {
		cfg := Resolve(nil)
		d := Decide(types.TokenAnalysis{TotalPages: 100, TotalTokens: 150000}, cfg)
		if d.RequiresChunking {
			t.Error("documents exactly at threshold should not chunk")
		}
	})

	t.Run("fixed-pages ignores tokens", func(t *testing.T) {
		cfg := Resolve(&types.ChunkingConfig{Strategy: types.StrategyFixedPages})
		d := Decide(types.TokenAnalysis{TotalPages: 50, TotalTokens: 900000}, cfg)
		if d.RequiresChunking {
			t.Error("fixed-pages should not chunk on token count")
		}
	})

	t.Run("token-based ignores pages", func(t *testing.T) {
		cfg := Resolve(&types.ChunkingConfig{Strategy: types.StrategyTokenBased})
		d := Decide(types.TokenAnalysis{TotalPages: 500, TotalTokens: 1000}, cfg)
		if d.RequiresChunking {
			t.Error("token-based should not chunk on page count")
		}
	})

	t.Run("reason is deterministic", func(t *testing.T) {
		cfg := Resolve(nil)
		analysis := types.TokenAnalysis{TotalPages: 120, TotalTokens: 200000}
		first := Decide(analysis, cfg).Reason
		if second := Decide(analysis, cfg).Reason; second != first {
			t.Errorf("reason changed between calls:\n%s\n%s", first, second)
		}
	})
}
