// Package dispatch fans chunk processing out to a per-chunk collaborator.
// A chunk that fails still yields a result slot; only dispatcher-level
// problems (context cancellation, empty input) surface as errors.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackzampolin/docshard/internal/types"
)

// Processor handles one chunk. Implementations must be safe for concurrent
// use; parallel dispatch calls Process from multiple goroutines.
type Processor interface {
	Process(ctx context.Context, chunk types.ChunkMetadata) (*types.ChunkResult, error)
}

// Dispatcher runs a Processor over a document's chunks.
type Dispatcher struct {
	processor Processor
	logger    *slog.Logger
}

func New(processor Processor, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{processor: processor, logger: logger}
}

// Dispatch processes every chunk and returns results indexed by chunk
// position. Processor errors become failed ChunkResults so one bad chunk
// never sinks the document. mode and maxConcurrency must already be
// validated.
func (d *Dispatcher) Dispatch(ctx context.Context, chunks []types.ChunkMetadata, mode string, maxConcurrency int) ([]types.ChunkResult, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to dispatch")
	}

	results := make([]types.ChunkResult, len(chunks))

	switch mode {
	case types.ProcessingModeSequential:
		for i, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("dispatch canceled after %d of %d chunks: %w", i, len(chunks), err)
			}
			results[i] = d.processOne(ctx, chunk)
		}

	case types.ProcessingModeParallel:
		if maxConcurrency <= 0 {
			maxConcurrency = 1
		}
		sem := make(chan struct{}, maxConcurrency)
		var wg sync.WaitGroup

		for i, chunk := range chunks {
			wg.Add(1)
			go func(slot int, chunk types.ChunkMetadata) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results[slot] = d.processOne(ctx, chunk)
			}(i, chunk)
		}
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("dispatch canceled: %w", err)
		}

	default:
		return nil, fmt.Errorf("unknown processing mode %q", mode)
	}

	return results, nil
}

// processOne folds processor errors into the result so aggregation can count
// them as failed chunks.
func (d *Dispatcher) processOne(ctx context.Context, chunk types.ChunkMetadata) types.ChunkResult {
	result, err := d.processor.Process(ctx, chunk)
	if err != nil {
		d.logger.Warn("chunk processing failed",
			"chunkId", chunk.ChunkID,
			"chunkIndex", chunk.ChunkIndex,
			"error", err)
		return types.ChunkResult{
			ChunkID:    chunk.ChunkID,
			ChunkIndex: chunk.ChunkIndex,
			Error:      err.Error(),
		}
	}
	if result == nil {
		return types.ChunkResult{
			ChunkID:    chunk.ChunkID,
			ChunkIndex: chunk.ChunkIndex,
			Error:      "processor returned no result",
		}
	}

	// Pin identity fields so aggregation can trust them even when the
	// processor leaves them blank.
	result.ChunkID = chunk.ChunkID
	result.ChunkIndex = chunk.ChunkIndex
	return *result
}
