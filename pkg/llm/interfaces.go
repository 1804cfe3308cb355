// Package llm provides the completion clients used for assumption extraction.
package llm

import (
	"context"
)

// CompletionResult is the outcome of a single completion exchange.
type CompletionResult struct {
	Content          string
	FinishReason     string // provider finish/stop reason, "length"/"max_tokens" signals truncation
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Truncated reports whether the provider cut the response at the output
// token cap.
func (r *CompletionResult) Truncated() bool {
	return r.FinishReason == "length" || r.FinishReason == "max_tokens"
}

// CompletionClient defines the single exchange the extraction pipeline
// needs: system instructions plus user payload in, one JSON document out.
// Use this interface for dependency injection to enable mocking in tests.
type CompletionClient interface {
	// GenerateJSON requests a completion constrained to a JSON object.
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (*CompletionResult, error)

	// Model returns the configured model name, for logging.
	Model() string
}

// Config holds configuration shared by the client implementations.
type Config struct {
	Endpoint            string  // base URL, e.g. "https://api.openai.com/v1"
	Model               string  // model name
	APIKey              string  // optional for local endpoints
	MaxCompletionTokens int     // output-size cap, defaults to 8192
	Temperature         float64 // sampling temperature
}

const defaultMaxCompletionTokens = 8192
