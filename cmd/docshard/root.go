package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docshard/internal/api"
	"github.com/jackzampolin/docshard/internal/config"
	"github.com/jackzampolin/docshard/internal/dispatch"
	"github.com/jackzampolin/docshard/internal/home"
	"github.com/jackzampolin/docshard/internal/providers"
	"github.com/jackzampolin/docshard/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "docshard",
	Short: "Document chunking and result aggregation for large-PDF extraction",
	Long: `Docshard splits large PDFs into processable chunks, fans them out to an
LLM for classification and entity extraction, and merges the per-chunk
results back into one document-level result.

The pipeline includes:
  - Page- and token-aware chunk planning with overlap
  - Chunk materialization as standalone PDF artifacts
  - Parallel or sequential chunk processing
  - Vote-based result aggregation with partial-result handling`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.docshard/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "docshard home directory (default: ~/.docshard)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the CLI logger.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// loadHome resolves and creates the home directory.
func loadHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, err
	}
	return h, nil
}

// loadConfig builds the config manager, preferring the --config flag and
// falling back to the home directory config file when present.
func loadConfig(h *home.Dir) (*config.Manager, error) {
	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	return config.NewManager(path)
}

// buildProcessor constructs the chunk processor named by the config.
func buildProcessor(cfg *config.Config, logger *slog.Logger) dispatch.Processor {
	switch cfg.Provider.Type {
	case "mock":
		return &providers.MockProcessor{}
	default:
		return providers.NewOpenAIProcessor(providers.OpenAIConfig{
			APIKey:            config.ResolveEnvVars(cfg.Provider.APIKey),
			Model:             cfg.Provider.Model,
			RequestsPerMinute: cfg.Provider.RequestsPerMinute,
			MaxRetries:        cfg.Provider.MaxRetries,
			Timeout:           cfg.Provider.Timeout(),
		}, logger)
	}
}
