// Package cleanup removes chunk artifacts after aggregation. Deletion is
// best effort: a chunk that cannot be removed is reported, not fatal, since
// leaked artifacts only cost disk space.
package cleanup

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jackzampolin/docshard/internal/types"
)

// Remove deletes the artifact files for the given chunks. Chunks without a
// location (never materialized) are skipped silently. A missing file counts
// as deleted so retried cleanups converge.
func Remove(logger *slog.Logger, req types.CleanupRequest) *types.CleanupResponse {
	resp := &types.CleanupResponse{
		DocumentID: req.DocumentID,
		Errors:     make([]string, 0),
	}

	for _, chunk := range req.Chunks {
		if chunk.Location == "" {
			continue
		}
		if err := os.Remove(chunk.Location); err != nil {
			if os.IsNotExist(err) {
				resp.DeletedChunks++
				continue
			}
			logger.Warn("failed to remove chunk artifact",
				"documentId", req.DocumentID,
				"chunkId", chunk.ChunkID,
				"location", chunk.Location,
				"error", err)
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", chunk.ChunkID, err))
			continue
		}
		resp.DeletedChunks++
	}

	logger.Info("chunk cleanup complete",
		"documentId", req.DocumentID,
		"deleted", resp.DeletedChunks,
		"errors", len(resp.Errors))
	return resp
}
