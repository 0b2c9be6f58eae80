// Package engine wires the chunking pipeline together: analyze, plan,
// materialize, dispatch, aggregate, clean up. One Engine serves many
// documents; each call is stateless.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/docshard/internal/aggregate"
	"github.com/jackzampolin/docshard/internal/chunking"
	"github.com/jackzampolin/docshard/internal/cleanup"
	"github.com/jackzampolin/docshard/internal/dispatch"
	"github.com/jackzampolin/docshard/internal/home"
	"github.com/jackzampolin/docshard/internal/materialize"
	"github.com/jackzampolin/docshard/internal/pdfinfo"
	"github.com/jackzampolin/docshard/internal/tokens"
	"github.com/jackzampolin/docshard/internal/types"
)

// ChunkWriter materializes planned boundaries into artifacts.
type ChunkWriter interface {
	Materialize(ctx context.Context, documentID, src string, boundaries []chunking.Boundary) ([]types.ChunkMetadata, error)
}

// DocumentReader introspects a source document.
type DocumentReader interface {
	Read(path string) (*pdfinfo.Document, error)
}

type pdfReader struct{}

func (pdfReader) Read(path string) (*pdfinfo.Document, error) { return pdfinfo.Read(path) }

// Engine runs the chunking pipeline for one document at a time.
type Engine struct {
	home      *home.Dir
	reader    DocumentReader
	writer    ChunkWriter
	processor dispatch.Processor
	logger    *slog.Logger
}

// New builds an Engine backed by pdfcpu introspection and materialization.
// processor may be nil for planning-only use; ProcessDocument then fails fast.
func New(homeDir *home.Dir, processor dispatch.Processor, logger *slog.Logger) *Engine {
	return &Engine{
		home:      homeDir,
		reader:    pdfReader{},
		writer:    materialize.New(homeDir, logger),
		processor: processor,
		logger:    logger,
	}
}

// Plan analyzes the document and, when chunking is required, materializes the
// chunk artifacts. The response carries the full token analysis either way.
func (e *Engine) Plan(ctx context.Context, req types.ChunkingRequest) (*types.ChunkingResponse, error) {
	if req.DocumentID == "" {
		return nil, fmt.Errorf("missing required field: documentId")
	}
	src := req.Content.Location
	if src == "" {
		return nil, fmt.Errorf("document %s has no content location", req.DocumentID)
	}

	cfg := chunking.Resolve(req.Config)
	if err := chunking.Validate(cfg); err != nil {
		return nil, err
	}

	doc, err := e.reader.Read(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", req.DocumentID, err)
	}

	analysis := chunking.Analyze(doc, tokens.New(cfg.EstimationMethod))
	decision := chunking.Decide(analysis, cfg)

	resp := &types.ChunkingResponse{
		DocumentID:       req.DocumentID,
		RequiresChunking: decision.RequiresChunking,
		Reason:           decision.Reason,
		TokenAnalysis:    analysis,
	}
	if !decision.RequiresChunking {
		e.logger.Info("document fits in one pass",
			"documentId", req.DocumentID,
			"pages", analysis.TotalPages,
			"tokens", analysis.TotalTokens)
		return resp, nil
	}

	boundaries, err := chunking.Plan(analysis, cfg)
	if err != nil {
		return nil, err
	}
	chunks, err := e.writer.Materialize(ctx, req.DocumentID, src, boundaries)
	if err != nil {
		return nil, err
	}

	e.logger.Info("planned chunks",
		"documentId", req.DocumentID,
		"strategy", cfg.Strategy,
		"chunks", len(chunks),
		"pages", analysis.TotalPages,
		"tokens", analysis.TotalTokens)

	resp.Strategy = cfg.Strategy
	resp.Chunks = chunks
	resp.Config = &cfg
	return resp, nil
}

// ProcessDocument runs the full pipeline. Chunk artifacts are removed after
// aggregation whether processing succeeded, degraded, or was canceled.
func (e *Engine) ProcessDocument(ctx context.Context, req types.ChunkingRequest) (*types.AggregatedResult, error) {
	if e.processor == nil {
		return nil, fmt.Errorf("engine has no chunk processor configured")
	}

	plan, err := e.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	cfg := chunking.Resolve(req.Config)

	if !plan.RequiresChunking {
		return e.processWhole(ctx, req, plan, cfg)
	}

	defer func() {
		cleanup.Remove(e.logger, types.CleanupRequest{
			DocumentID: req.DocumentID,
			Chunks:     plan.Chunks,
		})
	}()

	dispatcher := dispatch.New(e.processor, e.logger)
	results, err := dispatcher.Dispatch(ctx, plan.Chunks, cfg.ProcessingMode, cfg.MaxConcurrency)
	if err != nil {
		return nil, err
	}

	return aggregate.Aggregate(types.AggregationRequest{
		DocumentID:          req.DocumentID,
		ChunkResults:        results,
		AggregationStrategy: cfg.AggregationStrategy,
		MinSuccessThreshold: cfg.MinSuccessThreshold,
	})
}

// processWhole handles documents below the chunking thresholds: the source
// itself is processed as a single chunk and no artifacts are written.
func (e *Engine) processWhole(ctx context.Context, req types.ChunkingRequest, plan *types.ChunkingResponse, cfg types.ChunkingConfig) (*types.AggregatedResult, error) {
	chunk := types.ChunkMetadata{
		ChunkID:         materialize.ChunkID(req.DocumentID, 0),
		ChunkIndex:      0,
		TotalChunks:     1,
		StartPage:       0,
		EndPage:         plan.TokenAnalysis.TotalPages - 1,
		PageCount:       plan.TokenAnalysis.TotalPages,
		EstimatedTokens: plan.TokenAnalysis.TotalTokens,
		Location:        req.Content.Location,
	}

	dispatcher := dispatch.New(e.processor, e.logger)
	results, err := dispatcher.Dispatch(ctx, []types.ChunkMetadata{chunk}, types.ProcessingModeSequential, 1)
	if err != nil {
		return nil, err
	}

	return aggregate.Aggregate(types.AggregationRequest{
		DocumentID:          req.DocumentID,
		ChunkResults:        results,
		AggregationStrategy: cfg.AggregationStrategy,
		MinSuccessThreshold: cfg.MinSuccessThreshold,
	})
}
