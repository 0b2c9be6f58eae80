// Package materialize turns planned chunk boundaries into standalone PDF
// artifacts on disk. Any failure here is fatal for the document: a missing
// artifact would silently drop pages from downstream processing.
package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/docshard/internal/chunking"
	"github.com/jackzampolin/docshard/internal/home"
	"github.com/jackzampolin/docshard/internal/pdfinfo"
	"github.com/jackzampolin/docshard/internal/types"
)

const (
	extractAttempts = 3
	extractDelay    = 200 * time.Millisecond
)

// Error marks a materialization failure. It is fatal and not retryable by
// callers; transient write errors are already retried internally.
type Error struct {
	msg string
	err error
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.err }

func wrapErrorf(err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &Error{msg: msg, err: err}
}

// PageExtractor writes an inclusive zero-based page range of src to dst as a
// standalone PDF.
type PageExtractor interface {
	ExtractPages(ctx context.Context, src, dst string, startPage, endPage int) error
}

// pdfcpuExtractor extracts pages with pdfcpu's trim operation.
type pdfcpuExtractor struct{}

func (pdfcpuExtractor) ExtractPages(_ context.Context, src, dst string, startPage, endPage int) error {
	// pdfcpu page selectors are one-based and inclusive.
	selector := []string{fmt.Sprintf("%d-%d", startPage+1, endPage+1)}
	return api.TrimFile(src, dst, selector, nil)
}

// Materializer writes chunk artifacts under the home directory at
// chunks/{documentId}/{chunkId}.pdf.
type Materializer struct {
	home      *home.Dir
	extractor PageExtractor
	logger    *slog.Logger
}

func New(homeDir *home.Dir, logger *slog.Logger) *Materializer {
	return &Materializer{
		home:      homeDir,
		extractor: pdfcpuExtractor{},
		logger:    logger,
	}
}

// ChunkID formats the stable chunk identifier for a document and index.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// Materialize extracts every planned boundary of src into its own PDF and
// returns the chunk metadata in boundary order. On failure the artifacts
// written so far are left in place for cleanup to collect.
func (m *Materializer) Materialize(ctx context.Context, documentID, src string, boundaries []chunking.Boundary) ([]types.ChunkMetadata, error) {
	if len(boundaries) == 0 {
		return nil, wrapErrorf(nil, "no chunk boundaries for document %s", documentID)
	}
	if err := pdfinfo.ValidateMagic(src); err != nil {
		return nil, wrapErrorf(err, "source for document %s is not a readable PDF", documentID)
	}
	if err := m.home.EnsureDocumentChunksDir(documentID); err != nil {
		return nil, wrapErrorf(err, "failed to create chunk directory for document %s", documentID)
	}

	chunks := make([]types.ChunkMetadata, 0, len(boundaries))
	for _, b := range boundaries {
		chunkID := ChunkID(documentID, b.ChunkIndex)
		dst := m.home.ChunkPath(documentID, chunkID)

		err := retry.Do(
			func() error {
				return m.extractor.ExtractPages(ctx, src, dst, b.StartPage, b.EndPage)
			},
			retry.Context(ctx),
			retry.Attempts(extractAttempts),
			retry.Delay(extractDelay),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			return nil, wrapErrorf(err, "failed to extract pages %d-%d for chunk %s",
				b.StartPage, b.EndPage, chunkID)
		}

		m.logger.Debug("materialized chunk",
			"documentId", documentID,
			"chunkId", chunkID,
			"startPage", b.StartPage,
			"endPage", b.EndPage,
			"location", dst)

		chunks = append(chunks, types.ChunkMetadata{
			ChunkID:         chunkID,
			ChunkIndex:      b.ChunkIndex,
			TotalChunks:     len(boundaries),
			StartPage:       b.StartPage,
			EndPage:         b.EndPage,
			PageCount:       b.PageCount,
			EstimatedTokens: b.TokenCount,
			Location:        dst,
		})
	}

	m.logger.Info("materialized document chunks",
		"documentId", documentID,
		"chunks", len(chunks))
	return chunks, nil
}
