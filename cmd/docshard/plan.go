package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/docshard/internal/api"
	"github.com/jackzampolin/docshard/internal/engine"
	"github.com/jackzampolin/docshard/internal/types"
)

var planDocumentID string

var planCmd = &cobra.Command{
	Use:   "plan [pdf-file]",
	Short: "Analyze a PDF and materialize chunks if it needs splitting",
	Long: `Analyze a PDF against the configured page and token thresholds.
When the document exceeds a threshold the chunk artifacts are written under
the home directory and the plan lists their locations. Small documents
return a plan with requiresChunking: false and no artifacts.`,
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

		docID := planDocumentID
		if docID == "" {
			docID = uuid.NewString()
		}

		eng := engine.New(h, nil, logger)
		resp, err := eng.Plan(cmd.Context(), types.ChunkingRequest{
			DocumentID:  docID,
			ContentType: "application/pdf",
			Content:     types.ContentRef{Location: args[0]},
			Config:      &cm.Get().Chunking,
		})
		if err != nil {
			return err
		}
		return api.Output(resp)
	},
}

func init() {
	planCmd.Flags().StringVar(&planDocumentID, "id", "", "document ID (default: random UUID)")
	rootCmd.AddCommand(planCmd)
}
