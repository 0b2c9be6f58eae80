package chunking

import (
	"testing"

	"github.com/jackzampolin/docshard/internal/types"
)

func TestResolve(t *testing.T) {
	t.Run("nil resolves to full defaults", func(t *testing.T) {
		cfg := Resolve(nil)
		if cfg.Strategy != types.StrategyHybrid {
			t.Errorf("strategy = %q, want hybrid", cfg.Strategy)
		}
		if cfg.PageThreshold != 100 || cfg.TokenThreshold != 150000 {
			t.Errorf("thresholds = %d/%d", cfg.PageThreshold, cfg.TokenThreshold)
		}
		if cfg.MaxPagesPerChunk != 99 {
			t.Errorf("maxPagesPerChunk = %d, want 99", cfg.MaxPagesPerChunk)
		}
		if cfg.ProcessingMode != types.ProcessingModeParallel || cfg.MaxConcurrency != 10 {
			t.Errorf("processing = %s/%d", cfg.ProcessingMode, cfg.MaxConcurrency)
		}
		if cfg.MinSuccessThreshold != 0.5 {
			t.Errorf("minSuccessThreshold = %v, want 0.5", cfg.MinSuccessThreshold)
		}
	})

	t.Run("explicit values survive", func(t *testing.T) {
		cfg := Resolve(&types.ChunkingConfig{Strategy: types.StrategyFixedPages, ChunkSize: 25})
		if cfg.Strategy != types.StrategyFixedPages || cfg.ChunkSize != 25 {
			t.Errorf("got %s/%d", cfg.Strategy, cfg.ChunkSize)
		}
		if cfg.OverlapPages != 5 {
			t.Errorf("overlapPages = %d, want default 5", cfg.OverlapPages)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := Resolve(nil)
	if err := Validate(valid); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*types.ChunkingConfig)
	}{
		{"unknown strategy", func(c *types.ChunkingConfig) { c.Strategy = "adaptive" }},
		{"unknown processing mode", func(c *types.ChunkingConfig) { c.ProcessingMode = "batch" }},
		{"unknown aggregation strategy", func(c *types.ChunkingConfig) { c.AggregationStrategy = "average" }},
		{"overlap not below chunk size", func(c *types.ChunkingConfig) { c.OverlapPages = 50 }},
		{"negative page overlap", func(c *types.ChunkingConfig) { c.OverlapPages = -1 }},
		{"overlap tokens above max", func(c *types.ChunkingConfig) { c.OverlapTokens = 200000 }},
		{"zero concurrency", func(c *types.ChunkingConfig) { c.MaxConcurrency = -1 }},
		{"success threshold above one", func(c *types.ChunkingConfig) { c.MinSuccessThreshold = 1.5 }},
		{"negative success threshold", func(c *types.ChunkingConfig) { c.MinSuccessThreshold = -0.2 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Resolve(nil)
			tc.mutate(&cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
