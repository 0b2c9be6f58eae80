package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// chunkResultSchema is the contract the collaborator's structured output must
// satisfy. The page field is nullable rather than optional so the schema
// works under strict structured-output modes, which require every property
// to be listed in required.
const chunkResultSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["documentClassification", "confidence", "entities"],
  "properties": {
    "documentClassification": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["type", "value", "page"],
        "properties": {
          "type": {"type": "string"},
          "value": {"type": "string"},
          "page": {"type": ["integer", "null"]}
        }
      }
    }
  }
}`

// chunkResultPayload mirrors chunkResultSchema for decoding.
type chunkResultPayload struct {
	DocumentClassification string  `json:"documentClassification"`
	Confidence             float64 `json:"confidence"`
	Entities               []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
		Page  *int   `json:"page"`
	} `json:"entities"`
}

// compiledChunkResultSchema compiles the schema once for validation reuse.
var compiledChunkResultSchema = jsonschema.MustCompileString("chunk_result.json", chunkResultSchema)

// chunkResultSchemaDoc returns the schema as a decoded document for SDKs that
// take schemas as any.
func chunkResultSchemaDoc() map[string]any {
	var doc map[string]any
	if err := json.Unmarshal([]byte(chunkResultSchema), &doc); err != nil {
		panic(fmt.Sprintf("chunk result schema: %v", err))
	}
	return doc
}

// parseStructuredJSON parses JSON from model output, with lightweight recovery
// for markdown code fences and surrounding text.
func parseStructuredJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty structured output")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			normalized, mErr := json.Marshal(parsed)
			if mErr != nil {
				return nil, fmt.Errorf("failed to normalize structured output: %w", mErr)
			}
			return normalized, nil
		}
	}

	return nil, fmt.Errorf("failed to parse structured JSON")
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop first fence line.
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractJSONCandidate(content string) string {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(trimmed, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}

// validateChunkResult checks parsed JSON against the chunk result schema.
func validateChunkResult(parsed json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(parsed, &doc); err != nil {
		return fmt.Errorf("failed to decode structured JSON for validation: %w", err)
	}
	if err := compiledChunkResultSchema.Validate(doc); err != nil {
		return fmt.Errorf("structured output does not match schema: %w", err)
	}
	return nil
}
