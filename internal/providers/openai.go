// Package providers implements chunk processors backed by LLM providers,
// plus the rate limiting and structured-output plumbing they share.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/jackzampolin/docshard/internal/dispatch"
	"github.com/jackzampolin/docshard/internal/pdfinfo"
	"github.com/jackzampolin/docshard/internal/types"
)

const (
	OpenAIName               = "openai"
	openAIDefaultModel       = openai.ChatModelGPT4oMini
	defaultRequestsPerMinute = 150

	// maxChunkChars bounds the text sent per request. Chunk planning already
	// keeps token counts near the target, so this only guards against
	// pathological extraction output.
	maxChunkChars = 400_000
)

const classifySystemPrompt = `You classify business documents and extract entities from them.
You see one chunk of a larger document. Classify the document type
(for example: invoice, contract, report, letter) based on what the chunk shows,
and extract notable entities (vendors, people, dates, amounts, identifiers).
Report page numbers relative to the full document when the text makes them
clear, otherwise use null. Respond with JSON only.`

// OpenAIConfig holds configuration for the OpenAI chunk processor.
type OpenAIConfig struct {
	APIKey            string
	Model             string        // "gpt-4o-mini" (default)
	RequestsPerMinute int           // Rate limit, default 150
	MaxRetries        int           // Retry attempts for SDK transport
	Timeout           time.Duration // HTTP timeout
	BaseURL           string        // Optional (tests)
	HTTPClient        *http.Client  // Optional (tests)
}

// OpenAIProcessor classifies and extracts entities from one chunk per call
// using the official OpenAI SDK with structured output.
type OpenAIProcessor struct {
	model   string
	client  openai.Client
	limiter *RateLimiter
	logger  *slog.Logger

	// extractText is swappable for tests.
	extractText func(path string) (string, error)
}

// NewOpenAIProcessor creates an OpenAI-backed chunk processor.
func NewOpenAIProcessor(cfg OpenAIConfig, logger *slog.Logger) *OpenAIProcessor {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIProcessor{
		model:       cfg.Model,
		client:      openai.NewClient(opts...),
		limiter:     NewRateLimiter(cfg.RequestsPerMinute),
		logger:      logger,
		extractText: extractChunkText,
	}
}

// Name returns the provider identifier.
func (p *OpenAIProcessor) Name() string { return OpenAIName }

// Status reports the rate limiter state.
func (p *OpenAIProcessor) Status() RateLimiterStatus { return p.limiter.Status() }

// Process classifies one chunk and extracts its entities. Returned errors are
// per-chunk; the dispatcher folds them into failed chunk results.
func (p *OpenAIProcessor) Process(ctx context.Context, chunk types.ChunkMetadata) (*types.ChunkResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	text, err := p.extractText(chunk.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text for chunk %s: %w", chunk.ChunkID, err)
	}
	if len(text) > maxChunkChars {
		text = text[:maxChunkChars]
	}

	userPrompt := fmt.Sprintf("Chunk %d of %d, covering pages %d-%d of the document.\n\n%s",
		chunk.ChunkIndex+1, chunk.TotalChunks, chunk.StartPage+1, chunk.EndPage+1, text)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifySystemPrompt),
			openai.UserMessage(userPrompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "chunk_result",
					Schema: chunkResultSchemaDoc(),
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return nil, p.mapError(chunk.ChunkID, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion for chunk %s", chunk.ChunkID)
	}

	parsed, err := parseStructuredJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", chunk.ChunkID, err)
	}
	if err := validateChunkResult(parsed); err != nil {
		return nil, fmt.Errorf("chunk %s: %w", chunk.ChunkID, err)
	}

	var payload chunkResultPayload
	if err := json.Unmarshal(parsed, &payload); err != nil {
		return nil, fmt.Errorf("chunk %s: failed to decode chunk result: %w", chunk.ChunkID, err)
	}

	entities := make([]types.Entity, 0, len(payload.Entities))
	for _, e := range payload.Entities {
		entities = append(entities, types.Entity{Type: e.Type, Value: e.Value, Page: e.Page})
	}

	p.logger.Debug("processed chunk",
		"chunkId", chunk.ChunkID,
		"classification", payload.DocumentClassification,
		"entities", len(entities),
		"tokens", resp.Usage.TotalTokens)

	return &types.ChunkResult{
		ChunkID:    chunk.ChunkID,
		ChunkIndex: chunk.ChunkIndex,
		ClassificationResult: &types.ClassificationResult{
			DocumentClassification: payload.DocumentClassification,
			Confidence:             payload.Confidence,
		},
		ProcessingResult: &types.ProcessingResult{
			Entities:        entities,
			TokensProcessed: int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (p *OpenAIProcessor) mapError(chunkID string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			retryAfter := time.Duration(0)
			if apiErr.Response != nil {
				retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
			}
			p.limiter.Record429(retryAfter)
			return fmt.Errorf("OpenAI rate limited on chunk %s: %s", chunkID, apiErr.Message)
		}
		return fmt.Errorf("OpenAI error on chunk %s (status %d): %s", chunkID, apiErr.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("chunk %s: %w", chunkID, err)
}

// parseRetryAfter parses a Retry-After header value in seconds.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v + "s")
	if err != nil {
		return 0
	}
	return d
}

// extractChunkText pulls the plain text of a chunk artifact, joining pages
// with blank lines.
func extractChunkText(path string) (string, error) {
	doc, err := pdfinfo.Read(path)
	if err != nil {
		return "", err
	}
	return strings.Join(doc.PageText, "\n\n"), nil
}

var _ dispatch.Processor = (*OpenAIProcessor)(nil)
