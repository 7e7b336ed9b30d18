package llm

import (
	"context"
	"encoding/json"
	"strings"
	"symptom-checker-go/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

// chatCompleter is the subset of *openai.Client used here.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient calls any OpenAI-compatible chat completion endpoint in JSON mode.
type OpenAIClient struct {
	client chatCompleter
	model  string
	gen    config.LLMGenerationConfig
}

// NewOpenAIClient honours cfg.BaseURL so DeepSeek-style endpoints work too.
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return newOpenAIClient(openai.NewClientWithConfig(oaCfg), cfg)
}

func newOpenAIClient(client chatCompleter, cfg config.LLMConfig) *OpenAIClient {
	model := cfg.Model
	if model == "" {
		model = config.DefaultOpenAIModel
	}
	return &OpenAIClient{client: client, model: model, gen: cfg.Generation}
}

func (c *OpenAIClient) Name() string { return "openai:" + c.model }

// GenerateJSON sends the prompt as a single user message. JSON mode only
// guarantees an object, so the schema is restated in the system message.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: schemaInstruction(schema)},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    float32(c.gen.Temperature),
		TopP:           float32(c.gen.TopP),
		MaxTokens:      c.gen.MaxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{Provider: "openai", Op: "chat completion", Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &ProviderError{Provider: "openai", Op: "chat completion", Err: ErrEmptyResponse}
	}
	return json.RawMessage(strings.TrimSpace(resp.Choices[0].Message.Content)), nil
}

func schemaInstruction(s Schema) string {
	var sb strings.Builder
	sb.WriteString("Respond with a single JSON object containing exactly these string fields and nothing else:\n")
	for _, f := range s.Fields {
		sb.WriteString("- ")
		sb.WriteString(f.Name)
		if f.Description != "" {
			sb.WriteString(": ")
			sb.WriteString(f.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
