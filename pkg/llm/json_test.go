package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "bare object",
			response: `{"assumptions": []}`,
			want:     `{"assumptions": []}`,
		},
		{
			name:     "markdown fenced",
			response: "```json\n{\"assumptions\": [{\"text\": \"a\"}]}\n```",
			want:     `{"assumptions": [{"text": "a"}]}`,
		},
		{
			name:     "leading think block",
			response: "<think>the deck claims a $10B TAM</think>\n{\"assumptions\": []}",
			want:     `{"assumptions": []}`,
		},
		{
			name:     "surrounding prose",
			response: "Here is the analysis you asked for:\n{\"assumptions\": []}\nLet me know if you need more.",
			want:     `{"assumptions": []}`,
		},
		{
			name:     "bare array",
			response: `[{"text": "a"}]`,
			want:     `[{"text": "a"}]`,
		},
		{
			name:     "nested braces in strings",
			response: `{"assumptions": [{"text": "uses {curly} braces"}]}`,
			want:     `{"assumptions": [{"text": "uses {curly} braces"}]}`,
		},
		{
			name:     "no json at all",
			response: "I could not find any assumptions.",
			wantErr:  true,
		},
		{
			name:     "unbalanced",
			response: `{"assumptions": [`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompletionResult_Truncated(t *testing.T) {
	assert.True(t, (&CompletionResult{FinishReason: "length"}).Truncated())
	assert.True(t, (&CompletionResult{FinishReason: "max_tokens"}).Truncated())
	assert.False(t, (&CompletionResult{FinishReason: "stop"}).Truncated())
	assert.False(t, (&CompletionResult{FinishReason: "end_turn"}).Truncated())
}
