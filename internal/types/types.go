// Package types defines the wire contracts between the chunking engine,
// its orchestrator, and the per-chunk processing collaborator. All payloads
// are JSON-serializable records.
package types

// Chunking strategy literals. Case-sensitive on the wire.
const (
	StrategyFixedPages = "fixed-pages"
	StrategyTokenBased = "token-based"
	StrategyHybrid     = "hybrid"
)

// Processing mode literals for chunk dispatch.
const (
	ProcessingModeParallel   = "parallel"
	ProcessingModeSequential = "sequential"
)

// Aggregation strategy literals.
const (
	AggregationMajorityVote = "majority-vote"
	AggregationWeightedVote = "weighted-vote"
	AggregationFirstChunk   = "first-chunk"
)

// ChunkingConfig holds the planning and processing parameters for one
// document. Zero values mean "use the default"; Resolve in the chunking
// package fills them in.
type ChunkingConfig struct {
	Strategy             string  `json:"strategy,omitempty" mapstructure:"strategy" yaml:"strategy"`
	PageThreshold        int     `json:"pageThreshold,omitempty" mapstructure:"page_threshold" yaml:"page_threshold"`
	TokenThreshold       int     `json:"tokenThreshold,omitempty" mapstructure:"token_threshold" yaml:"token_threshold"`
	ChunkSize            int     `json:"chunkSize,omitempty" mapstructure:"chunk_size" yaml:"chunk_size"`
	OverlapPages         int     `json:"overlapPages,omitempty" mapstructure:"overlap_pages" yaml:"overlap_pages"`
	MaxTokensPerChunk    int     `json:"maxTokensPerChunk,omitempty" mapstructure:"max_tokens_per_chunk" yaml:"max_tokens_per_chunk"`
	OverlapTokens        int     `json:"overlapTokens,omitempty" mapstructure:"overlap_tokens" yaml:"overlap_tokens"`
	TargetTokensPerChunk int     `json:"targetTokensPerChunk,omitempty" mapstructure:"target_tokens_per_chunk" yaml:"target_tokens_per_chunk"`
	MaxPagesPerChunk     int     `json:"maxPagesPerChunk,omitempty" mapstructure:"max_pages_per_chunk" yaml:"max_pages_per_chunk"`
	ProcessingMode       string  `json:"processingMode,omitempty" mapstructure:"processing_mode" yaml:"processing_mode"`
	MaxConcurrency       int     `json:"maxConcurrency,omitempty" mapstructure:"max_concurrency" yaml:"max_concurrency"`
	AggregationStrategy  string  `json:"aggregationStrategy,omitempty" mapstructure:"aggregation_strategy" yaml:"aggregation_strategy"`
	MinSuccessThreshold  float64 `json:"minSuccessThreshold,omitempty" mapstructure:"min_success_threshold" yaml:"min_success_threshold"`
	EstimationMethod     string  `json:"estimationMethod,omitempty" mapstructure:"estimation_method" yaml:"estimation_method"`
}

// ContentRef points at the source document.
type ContentRef struct {
	Location string `json:"location,omitempty"`
	Bucket   string `json:"bucket,omitempty"`
	Key      string `json:"key,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// ChunkingRequest asks the planner to analyze (and if needed, split) a
// document.
type ChunkingRequest struct {
	DocumentID  string          `json:"documentId"`
	ContentType string          `json:"contentType,omitempty"`
	Content     ContentRef      `json:"content"`
	Config      *ChunkingConfig `json:"config,omitempty"`
}

// TokenAnalysis is the whole-document size profile.
type TokenAnalysis struct {
	TotalPages       int     `json:"totalPages"`
	TotalTokens      int     `json:"totalTokens"`
	AvgTokensPerPage float64 `json:"avgTokensPerPage"`
	TokensPerPage    []int   `json:"tokensPerPage,omitempty"`
	EstimationMethod string  `json:"estimationMethod,omitempty"`
}

// ChunkMetadata describes one materialized chunk. Page numbers are zero-based
// and inclusive on both ends.
type ChunkMetadata struct {
	ChunkID         string `json:"chunkId"`
	ChunkIndex      int    `json:"chunkIndex"`
	TotalChunks     int    `json:"totalChunks"`
	StartPage       int    `json:"startPage"`
	EndPage         int    `json:"endPage"`
	PageCount       int    `json:"pageCount"`
	EstimatedTokens int    `json:"estimatedTokens"`
	Location        string `json:"location,omitempty"`
}

// ChunkingResponse is the planner's answer. When RequiresChunking is false
// only Reason and TokenAnalysis are populated alongside the document ID.
type ChunkingResponse struct {
	DocumentID       string          `json:"documentId"`
	RequiresChunking bool            `json:"requiresChunking"`
	Reason           string          `json:"reason,omitempty"`
	Strategy         string          `json:"strategy,omitempty"`
	Chunks           []ChunkMetadata `json:"chunks,omitempty"`
	Config           *ChunkingConfig `json:"config,omitempty"`
	TokenAnalysis    TokenAnalysis   `json:"tokenAnalysis"`
}

// ClassificationResult is the collaborator's per-chunk classification.
type ClassificationResult struct {
	DocumentClassification string  `json:"documentClassification"`
	Confidence             float64 `json:"confidence,omitempty"`
}

// Entity is one extracted fact. Page is a pointer because "no page" and
// "page 0" are different things: entities without a page are deduplicated,
// entities with a page never are.
type Entity struct {
	Type       string `json:"type"`
	Value      string `json:"value"`
	Page       *int   `json:"page,omitempty"`
	ChunkIndex *int   `json:"chunkIndex,omitempty"`
}

// ProcessingResult carries the entities extracted from one chunk.
type ProcessingResult struct {
	Entities        []Entity `json:"entities,omitempty"`
	TokensProcessed int      `json:"tokensProcessed,omitempty"`
}

// ChunkResult is the outcome of processing one chunk. A non-empty Error marks
// the chunk failed; classification and processing data are then absent.
type ChunkResult struct {
	ChunkID              string                `json:"chunkId"`
	ChunkIndex           int                   `json:"chunkIndex"`
	ClassificationResult *ClassificationResult `json:"classificationResult,omitempty"`
	ProcessingResult     *ProcessingResult     `json:"processingResult,omitempty"`
	Error                string                `json:"error,omitempty"`
}

// Failed reports whether this chunk's processing failed.
func (r ChunkResult) Failed() bool { return r.Error != "" }

// ChunksSummary tallies chunk processing outcomes.
type ChunksSummary struct {
	TotalChunks          int `json:"totalChunks"`
	SuccessfulChunks     int `json:"successfulChunks"`
	FailedChunks         int `json:"failedChunks"`
	TotalTokensProcessed int `json:"totalTokensProcessed,omitempty"`
}

// AggregationRequest asks the aggregator to merge per-chunk results.
type AggregationRequest struct {
	DocumentID          string        `json:"documentId"`
	ChunkResults        []ChunkResult `json:"chunkResults"`
	AggregationStrategy string        `json:"aggregationStrategy,omitempty"`
	MinSuccessThreshold float64       `json:"minSuccessThreshold,omitempty"`
}

// AggregatedResult is the merged document-level result.
type AggregatedResult struct {
	DocumentID               string        `json:"documentId"`
	Classification           string        `json:"classification,omitempty"`
	ClassificationConfidence float64       `json:"classificationConfidence"`
	Entities                 []Entity      `json:"entities"`
	ChunksSummary            ChunksSummary `json:"chunksSummary"`
	PartialResult            bool          `json:"partialResult"`
}

// CleanupRequest asks for the chunk artifacts of a document to be removed.
type CleanupRequest struct {
	DocumentID string          `json:"documentId"`
	Chunks     []ChunkMetadata `json:"chunks"`
}

// CleanupResponse reports best-effort deletion results.
type CleanupResponse struct {
	DocumentID    string   `json:"documentId"`
	DeletedChunks int      `json:"deletedChunks"`
	Errors        []string `json:"errors"`
}
