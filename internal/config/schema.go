package config

import (
	"time"

	"github.com/jackzampolin/docshard/internal/types"
)

// Config holds docshard configuration.
// Stored at: ~/.docshard/config.yaml
type Config struct {
	Provider ProviderCfg          `mapstructure:"provider" yaml:"provider"`
	Chunking types.ChunkingConfig `mapstructure:"chunking" yaml:"chunking"`
	Server   ServerCfg            `mapstructure:"server" yaml:"server"`
}

// ProviderCfg configures the chunk-processing LLM provider.
type ProviderCfg struct {
	Type              string `mapstructure:"type" yaml:"type"`     // "openai", "mock"
	Model             string `mapstructure:"model" yaml:"model"`   // Model name
	APIKey            string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	MaxRetries        int    `mapstructure:"max_retries" yaml:"max_retries"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the provider HTTP timeout as a duration.
func (p ProviderCfg) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Addr string `mapstructure:"addr" yaml:"addr"` // Listen address (default :8583)
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderCfg{
			Type:              "openai",
			Model:             "gpt-4o-mini",
			APIKey:            "${OPENAI_API_KEY}",
			RequestsPerMinute: 150,
			MaxRetries:        3,
			TimeoutSeconds:    300,
		},
		Chunking: types.ChunkingConfig{
			Strategy:             types.StrategyHybrid,
			PageThreshold:        100,
			TokenThreshold:       150000,
			ChunkSize:            50,
			OverlapPages:         5,
			MaxTokensPerChunk:    100000,
			OverlapTokens:        5000,
			TargetTokensPerChunk: 80000,
			MaxPagesPerChunk:     99,
			ProcessingMode:       types.ProcessingModeParallel,
			MaxConcurrency:       10,
			AggregationStrategy:  types.AggregationMajorityVote,
			MinSuccessThreshold:  0.5,
			EstimationMethod:     "word",
		},
		Server: ServerCfg{
			Addr: ":8583",
		},
	}
}
