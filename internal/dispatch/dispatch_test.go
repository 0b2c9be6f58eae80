package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackzampolin/docshard/internal/types"
)

type stubProcessor struct {
	mu       sync.Mutex
	order    []int
	inFlight int32
	maxSeen  int32

	delay   time.Duration
	failIdx map[int]bool
}

func (p *stubProcessor) Process(ctx context.Context, chunk types.ChunkMetadata) (*types.ChunkResult, error) {
	cur := atomic.AddInt32(&p.inFlight, 1)
	defer atomic.AddInt32(&p.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&p.maxSeen)
		if cur <= seen || atomic.CompareAndSwapInt32(&p.maxSeen, seen, cur) {
			break
		}
	}

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	p.order = append(p.order, chunk.ChunkIndex)
	p.mu.Unlock()

	if p.failIdx[chunk.ChunkIndex] {
		return nil, errors.New("model refused")
	}
	return &types.ChunkResult{
		ClassificationResult: &types.ClassificationResult{DocumentClassification: "invoice"},
	}, nil
}

func chunksOf(n int) []types.ChunkMetadata {
	chunks := make([]types.ChunkMetadata, n)
	for i := range chunks {
		chunks[i] = types.ChunkMetadata{
			ChunkID:     fmt.Sprintf("doc-1_chunk_%d", i),
			ChunkIndex:  i,
			TotalChunks: n,
		}
	}
	return chunks
}

func newDispatcher(p Processor) *Dispatcher {
	return New(p, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDispatchParallel(t *testing.T) {
	t.Run("results land in chunk order", func(t *testing.T) {
		proc := &stubProcessor{delay: time.Millisecond}
		d := newDispatcher(proc)

		results, err := d.Dispatch(context.Background(), chunksOf(8), types.ProcessingModeParallel, 4)
		if err != nil {
			t.Fatal(err)
		}
		for i, r := range results {
			if r.ChunkIndex != i {
				t.Errorf("slot %d holds chunk %d", i, r.ChunkIndex)
			}
			if r.ChunkID != fmt.Sprintf("doc-1_chunk_%d", i) {
				t.Errorf("slot %d chunkId = %q", i, r.ChunkID)
			}
		}
	})

	t.Run("concurrency stays within the limit", func(t *testing.T) {
		proc := &stubProcessor{delay: 5 * time.Millisecond}
		d := newDispatcher(proc)

		if _, err := d.Dispatch(context.Background(), chunksOf(12), types.ProcessingModeParallel, 3); err != nil {
			t.Fatal(err)
		}
		if max := atomic.LoadInt32(&proc.maxSeen); max > 3 {
			t.Errorf("maxSeen = %d, limit was 3", max)
		} else if max < 2 {
			t.Errorf("maxSeen = %d, expected concurrent processing", max)
		}
	})

	t.Run("per-chunk failures do not fail the batch", func(t *testing.T) {
		proc := &stubProcessor{failIdx: map[int]bool{1: true, 3: true}}
		d := newDispatcher(proc)

		results, err := d.Dispatch(context.Background(), chunksOf(5), types.ProcessingModeParallel, 10)
		if err != nil {
			t.Fatal(err)
		}
		failed := 0
		for _, r := range results {
			if r.Failed() {
				failed++
				if r.ClassificationResult != nil {
					t.Error("failed chunk should carry no classification")
				}
			}
		}
		if failed != 2 {
			t.Errorf("failed = %d, want 2", failed)
		}
		if !results[1].Failed() || !results[3].Failed() {
			t.Error("wrong chunks marked failed")
		}
	})
}

func TestDispatchSequential(t *testing.T) {
	t.Run("processes in order one at a time", func(t *testing.T) {
		proc := &stubProcessor{}
		d := newDispatcher(proc)

		results, err := d.Dispatch(context.Background(), chunksOf(5), types.ProcessingModeSequential, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 5 {
			t.Fatalf("got %d results", len(results))
		}
		for i, idx := range proc.order {
			if idx != i {
				t.Errorf("processed chunk %d at position %d", idx, i)
			}
		}
		if atomic.LoadInt32(&proc.maxSeen) != 1 {
			t.Errorf("maxSeen = %d, want 1", proc.maxSeen)
		}
	})

	t.Run("stops on canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		d := newDispatcher(&stubProcessor{})

		if _, err := d.Dispatch(ctx, chunksOf(3), types.ProcessingModeSequential, 1); err == nil {
			t.Error("expected cancellation error")
		}
	})
}

func TestDispatchValidation(t *testing.T) {
	d := newDispatcher(&stubProcessor{})

	if _, err := d.Dispatch(context.Background(), nil, types.ProcessingModeParallel, 1); err == nil {
		t.Error("expected error for empty chunk list")
	}
	if _, err := d.Dispatch(context.Background(), chunksOf(1), "batch", 1); err == nil {
		t.Error("expected error for unknown mode")
	}
}
