package llm

import (
	"context"
	"errors"
	"testing"

	"symptom-checker-go/internal/config"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	resp  openai.ChatCompletionResponse
	err   error
	req   openai.ChatCompletionRequest
	calls int
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.req = request
	return f.resp, f.err
}

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}}}}
}

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	fc := &fakeCompleter{resp: chatResponse(" {\"possibleDiagnoses\":\"1. Cold\",\"disclaimer\":\"x\"}\n")}
	c := newOpenAIClient(fc, config.LLMConfig{Generation: config.LLMGenerationConfig{Temperature: 0.3, MaxTokens: 512}})

	raw, err := c.GenerateJSON(context.Background(), "the prompt", testSchema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"possibleDiagnoses":"1. Cold","disclaimer":"x"}`, string(raw))

	assert.Equal(t, 1, fc.calls)
	assert.Equal(t, "gpt-4o-mini", fc.req.Model)
	require.Len(t, fc.req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, fc.req.Messages[0].Role)
	assert.Contains(t, fc.req.Messages[0].Content, "- possibleDiagnoses: list")
	assert.Contains(t, fc.req.Messages[0].Content, "- disclaimer: note")
	assert.Equal(t, "the prompt", fc.req.Messages[1].Content)
	require.NotNil(t, fc.req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, fc.req.ResponseFormat.Type)
	assert.Equal(t, 512, fc.req.MaxTokens)
}

func TestOpenAIClient_Errors(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: 500, Message: "server error"}
	tests := []struct {
		name string
		fc   *fakeCompleter
	}{
		{"api error", &fakeCompleter{err: apiErr}},
		{"no choices", &fakeCompleter{}},
		{"blank content", &fakeCompleter{resp: chatResponse("   ")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newOpenAIClient(tt.fc, config.LLMConfig{Model: "gpt-test"})
			_, err := c.GenerateJSON(context.Background(), "p", testSchema)
			require.Error(t, err)
			assert.True(t, IsProviderFault(err))
			assert.Equal(t, 1, tt.fc.calls)

			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "openai", pe.Provider)
		})
	}
}
