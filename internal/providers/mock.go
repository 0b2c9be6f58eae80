package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackzampolin/docshard/internal/dispatch"
	"github.com/jackzampolin/docshard/internal/types"
)

// MockProcessor is a deterministic Processor for tests and dry runs. It
// classifies every chunk with the configured label and emits one entity per
// chunk so aggregation paths are exercised end to end.
type MockProcessor struct {
	Label      string                    // classification for every chunk, default "document"
	Confidence float64                   // per-chunk confidence, default 0.9
	Delay      time.Duration             // simulated processing time
	FailIDs    map[string]bool           // chunk IDs that fail
	OnProcess  func(types.ChunkMetadata) // optional call hook

	mu    sync.Mutex
	calls []types.ChunkMetadata
}

func (m *MockProcessor) Process(ctx context.Context, chunk types.ChunkMetadata) (*types.ChunkResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, chunk)
	m.mu.Unlock()
	if m.OnProcess != nil {
		m.OnProcess(chunk)
	}

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.FailIDs[chunk.ChunkID] {
		return nil, fmt.Errorf("mock failure for chunk %s", chunk.ChunkID)
	}

	label := m.Label
	if label == "" {
		label = "document"
	}
	confidence := m.Confidence
	if confidence == 0 {
		confidence = 0.9
	}

	page := chunk.StartPage
	return &types.ChunkResult{
		ChunkID:    chunk.ChunkID,
		ChunkIndex: chunk.ChunkIndex,
		ClassificationResult: &types.ClassificationResult{
			DocumentClassification: label,
			Confidence:             confidence,
		},
		ProcessingResult: &types.ProcessingResult{
			Entities: []types.Entity{
				{Type: "mock", Value: fmt.Sprintf("chunk %d content", chunk.ChunkIndex), Page: &page},
			},
			TokensProcessed: chunk.EstimatedTokens,
		},
	}, nil
}

// Calls returns a copy of the chunks processed so far.
func (m *MockProcessor) Calls() []types.ChunkMetadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.ChunkMetadata, len(m.calls))
	copy(out, m.calls)
	return out
}

var _ dispatch.Processor = (*MockProcessor)(nil)
