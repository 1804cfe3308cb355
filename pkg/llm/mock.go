package llm

import (
	"context"
)

// MockCompletionClient is a configurable mock for testing extraction
// behavior. Set GenerateJSONFunc to control responses in tests.
type MockCompletionClient struct {
	// GenerateJSONFunc is called when GenerateJSON is invoked.
	// If nil, returns an empty result and nil error.
	GenerateJSONFunc func(ctx context.Context, systemPrompt, userPrompt string) (*CompletionResult, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// GenerateJSONCalls counts invocations for verification.
	GenerateJSONCalls int
}

// NewMockCompletionClient creates a new mock with sensible defaults.
func NewMockCompletionClient() *MockCompletionClient {
	return &MockCompletionClient{ModelName: "mock-model"}
}

// GenerateJSON implements CompletionClient.
func (m *MockCompletionClient) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (*CompletionResult, error) {
	m.GenerateJSONCalls++
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, systemPrompt, userPrompt)
	}
	return &CompletionResult{}, nil
}

// Model implements CompletionClient.
func (m *MockCompletionClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Reset clears call tracking.
func (m *MockCompletionClient) Reset() {
	m.GenerateJSONCalls = 0
}

// Ensure MockCompletionClient implements CompletionClient at compile time.
var _ CompletionClient = (*MockCompletionClient)(nil)
