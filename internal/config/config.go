// Package config loads docshard configuration from defaults, an optional
// YAML file, and DOCSHARD_-prefixed environment variables, with hot reload
// of the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	// Defaults are registered per leaf key so environment overrides of
	// nested values are visible to Unmarshal.
	defaults := DefaultConfig()
	cm.v.SetDefault("provider.type", defaults.Provider.Type)
	cm.v.SetDefault("provider.model", defaults.Provider.Model)
	cm.v.SetDefault("provider.api_key", defaults.Provider.APIKey)
	cm.v.SetDefault("provider.requests_per_minute", defaults.Provider.RequestsPerMinute)
	cm.v.SetDefault("provider.max_retries", defaults.Provider.MaxRetries)
	cm.v.SetDefault("provider.timeout_seconds", defaults.Provider.TimeoutSeconds)
	cm.v.SetDefault("chunking.strategy", defaults.Chunking.Strategy)
	cm.v.SetDefault("chunking.page_threshold", defaults.Chunking.PageThreshold)
	cm.v.SetDefault("chunking.token_threshold", defaults.Chunking.TokenThreshold)
	cm.v.SetDefault("chunking.chunk_size", defaults.Chunking.ChunkSize)
	cm.v.SetDefault("chunking.overlap_pages", defaults.Chunking.OverlapPages)
	cm.v.SetDefault("chunking.max_tokens_per_chunk", defaults.Chunking.MaxTokensPerChunk)
	cm.v.SetDefault("chunking.overlap_tokens", defaults.Chunking.OverlapTokens)
	cm.v.SetDefault("chunking.target_tokens_per_chunk", defaults.Chunking.TargetTokensPerChunk)
	cm.v.SetDefault("chunking.max_pages_per_chunk", defaults.Chunking.MaxPagesPerChunk)
	cm.v.SetDefault("chunking.processing_mode", defaults.Chunking.ProcessingMode)
	cm.v.SetDefault("chunking.max_concurrency", defaults.Chunking.MaxConcurrency)
	cm.v.SetDefault("chunking.aggregation_strategy", defaults.Chunking.AggregationStrategy)
	cm.v.SetDefault("chunking.min_success_threshold", defaults.Chunking.MinSuccessThreshold)
	cm.v.SetDefault("chunking.estimation_method", defaults.Chunking.EstimationMethod)
	cm.v.SetDefault("server.addr", defaults.Server.Addr)

	// Environment variables with DOCSHARD_ prefix; nested keys use
	// underscores (DOCSHARD_CHUNKING_STRATEGY).
	cm.v.SetEnvPrefix("DOCSHARD")
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("config")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		cm.v.AddConfigPath("$HOME/.docshard")
	}

	// Try to read config file (not required)
	if err := cm.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !os.IsNotExist(err) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# docshard configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export OPENAI_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
