package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"symptom-checker-go/internal/config"

	genai "google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	models contentGenerator
	model  string
	gen    config.LLMGenerationConfig
}

// NewGeminiClient builds a Gemini API client. The key is passed explicitly so a
// missing GOOGLE_API_KEY in the environment does not matter.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}
	return newGeminiClient(cli.Models, cfg), nil
}

func newGeminiClient(models contentGenerator, cfg config.LLMConfig) *GeminiClient {
	model := cfg.Model
	if model == "" {
		model = config.DefaultGeminiModel
	}
	return &GeminiClient{models: models, model: model, gen: cfg.Generation}
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }

// GenerateJSON asks for application/json constrained by the response schema.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		g.contentConfig(schema),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{Provider: "gemini", Op: "generate", Err: err}
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &ProviderError{Provider: "gemini", Op: "generate", Err: ErrEmptyResponse}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	txt := strings.TrimSpace(sb.String())
	if txt == "" {
		return nil, &ProviderError{Provider: "gemini", Op: "generate", Err: ErrEmptyResponse}
	}
	return json.RawMessage(txt), nil
}

func (g *GeminiClient) contentConfig(schema Schema) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(schema),
	}
	if g.gen.Temperature != 0 {
		cfg.Temperature = genai.Ptr(float32(g.gen.Temperature))
	}
	if g.gen.TopP != 0 {
		cfg.TopP = genai.Ptr(float32(g.gen.TopP))
	}
	return cfg
}

func toGenaiSchema(s Schema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = &genai.Schema{Type: genai.TypeString, Description: f.Description}
	}
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: s.Name,
		Properties:  props,
		Required:    s.FieldNames(),
	}
}
