package chunking

import (
	"github.com/jackzampolin/docshard/internal/tokens"
	"github.com/jackzampolin/docshard/internal/types"
)

// Default planning parameters. MaxPagesPerChunk is 99 rather than 100
// because downstream model backends commonly enforce a hard 100-page cap
// per PDF; staying one page under leaves a safety margin.
const (
	DefaultPageThreshold        = 100
	DefaultTokenThreshold       = 150000
	DefaultChunkSize            = 50
	DefaultOverlapPages         = 5
	DefaultMaxTokensPerChunk    = 100000
	DefaultOverlapTokens        = 5000
	DefaultTargetTokensPerChunk = 80000
	DefaultMaxPagesPerChunk     = 99
	DefaultMaxConcurrency       = 10
	DefaultMinSuccessThreshold  = 0.5
)

// hybridOverlapPageCap bounds the backward overlap walk in the hybrid
// strategy so sparse pages cannot drag the whole previous chunk along.
const hybridOverlapPageCap = 10

// Resolve returns cfg with every unset field filled from the defaults.
// A nil cfg resolves to the full default configuration.
func Resolve(cfg *types.ChunkingConfig) types.ChunkingConfig {
	var out types.ChunkingConfig
	if cfg != nil {
		out = *cfg
	}
	if out.Strategy == "" {
		out.Strategy = types.StrategyHybrid
	}
	if out.PageThreshold == 0 {
		out.PageThreshold = DefaultPageThreshold
	}
	if out.TokenThreshold == 0 {
		out.TokenThreshold = DefaultTokenThreshold
	}
	if out.ChunkSize == 0 {
		out.ChunkSize = DefaultChunkSize
	}
	if out.MaxTokensPerChunk == 0 {
		out.MaxTokensPerChunk = DefaultMaxTokensPerChunk
	}
	if out.TargetTokensPerChunk == 0 {
		out.TargetTokensPerChunk = DefaultTargetTokensPerChunk
	}
	if out.MaxPagesPerChunk == 0 {
		out.MaxPagesPerChunk = DefaultMaxPagesPerChunk
	}
	if out.ProcessingMode == "" {
		out.ProcessingMode = types.ProcessingModeParallel
	}
	if out.MaxConcurrency == 0 {
		out.MaxConcurrency = DefaultMaxConcurrency
	}
	if out.AggregationStrategy == "" {
		out.AggregationStrategy = types.AggregationMajorityVote
	}
	if out.MinSuccessThreshold == 0 {
		out.MinSuccessThreshold = DefaultMinSuccessThreshold
	}
	if out.EstimationMethod == "" {
		out.EstimationMethod = tokens.MethodWord
	}
	if out.OverlapPages == 0 {
		out.OverlapPages = DefaultOverlapPages
	}
	if out.OverlapTokens == 0 {
		out.OverlapTokens = DefaultOverlapTokens
	}
	return out
}

// Validate checks a resolved configuration. It returns a *PlanningError so
// callers can treat bad configuration the same as malformed document input.
func Validate(cfg types.ChunkingConfig) error {
	switch cfg.Strategy {
	case types.StrategyFixedPages, types.StrategyTokenBased, types.StrategyHybrid:
	default:
		return planningErrorf("unknown chunking strategy %q", cfg.Strategy)
	}
	switch cfg.ProcessingMode {
	case types.ProcessingModeParallel, types.ProcessingModeSequential:
	default:
		return planningErrorf("unknown processing mode %q", cfg.ProcessingMode)
	}
	switch cfg.AggregationStrategy {
	case types.AggregationMajorityVote, types.AggregationWeightedVote, types.AggregationFirstChunk:
	default:
		return planningErrorf("unknown aggregation strategy %q", cfg.AggregationStrategy)
	}

	if cfg.PageThreshold <= 0 {
		return planningErrorf("pageThreshold must be positive, got %d", cfg.PageThreshold)
	}
	if cfg.TokenThreshold <= 0 {
		return planningErrorf("tokenThreshold must be positive, got %d", cfg.TokenThreshold)
	}
	if cfg.ChunkSize <= 0 {
		return planningErrorf("chunkSize must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.OverlapPages < 0 {
		return planningErrorf("overlapPages must be non-negative, got %d", cfg.OverlapPages)
	}
	if cfg.OverlapPages >= cfg.ChunkSize {
		return planningErrorf("overlapPages (%d) must be less than chunkSize (%d)",
			cfg.OverlapPages, cfg.ChunkSize)
	}
	if cfg.MaxTokensPerChunk <= 0 {
		return planningErrorf("maxTokensPerChunk must be positive, got %d", cfg.MaxTokensPerChunk)
	}
	if cfg.OverlapTokens < 0 {
		return planningErrorf("overlapTokens must be non-negative, got %d", cfg.OverlapTokens)
	}
	if cfg.OverlapTokens >= cfg.MaxTokensPerChunk {
		return planningErrorf("overlapTokens (%d) must be less than maxTokensPerChunk (%d)",
			cfg.OverlapTokens, cfg.MaxTokensPerChunk)
	}
	if cfg.TargetTokensPerChunk <= 0 {
		return planningErrorf("targetTokensPerChunk must be positive, got %d", cfg.TargetTokensPerChunk)
	}
	if cfg.MaxPagesPerChunk <= 0 {
		return planningErrorf("maxPagesPerChunk must be positive, got %d", cfg.MaxPagesPerChunk)
	}
	if cfg.MaxConcurrency <= 0 {
		return planningErrorf("maxConcurrency must be positive, got %d", cfg.MaxConcurrency)
	}
	if cfg.MinSuccessThreshold <= 0 || cfg.MinSuccessThreshold > 1 {
		return planningErrorf("minSuccessThreshold must be in (0,1], got %v", cfg.MinSuccessThreshold)
	}
	return nil
}
