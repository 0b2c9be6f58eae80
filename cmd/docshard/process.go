package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/docshard/internal/api"
	"github.com/jackzampolin/docshard/internal/engine"
	"github.com/jackzampolin/docshard/internal/types"
)

var (
	processDocumentID string
	processMock       bool
)

var processCmd = &cobra.Command{
	Use:   "process [pdf-file]",
	Short: "Run the full pipeline on a PDF and print the aggregated result",
	Long: `Run the full pipeline on a PDF: plan chunks, process each chunk with
the configured provider, aggregate the per-chunk results, and remove the
chunk artifacts. Prints the aggregated document result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		h, err := loadHome()
		if err != nil {
			return err
		}
		cm, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := *cm.Get()
		if processMock {
			cfg.Provider.Type = "mock"
		}

		docID := processDocumentID
		if docID == "" {
			docID = uuid.NewString()
		}

		eng := engine.New(h, buildProcessor(&cfg, logger), logger)
		result, err := eng.ProcessDocument(cmd.Context(), types.ChunkingRequest{
			DocumentID:  docID,
			ContentType: "application/pdf",
			Content:     types.ContentRef{Location: args[0]},
			Config:      &cfg.Chunking,
		})
		if err != nil {
			return err
		}
		return api.Output(result)
	},
}

func init() {
	processCmd.Flags().StringVar(&processDocumentID, "id", "", "document ID (default: random UUID)")
	processCmd.Flags().BoolVar(&processMock, "mock", false, "use the mock provider instead of the configured one")
	rootCmd.AddCommand(processCmd)
}
