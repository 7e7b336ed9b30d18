// Package llm provides clients for hosted Large Language Models that return
// structured JSON output.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"symptom-checker-go/internal/config"
	"symptom-checker-go/pkg/log"
)

// Client defines the interface for an LLM client that answers with JSON.
type Client interface {
	// Name identifies the provider and model, e.g. "gemini:gemini-2.5-flash".
	Name() string
	// GenerateJSON sends one prompt and asks the provider for a JSON object
	// following schema. The raw JSON is returned unchecked; callers own the
	// structural validation.
	GenerateJSON(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error)
}

// Field describes one string property of the expected output object.
type Field struct {
	Name        string
	Description string
}

// Schema declares the output object the provider must produce. All fields are
// required strings.
type Schema struct {
	Name   string
	Fields []Field
}

// FieldNames returns the property names in declaration order.
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// NewClient creates a new LLM client based on the provider in the config.
// It fails when credentials are missing or the SDK cannot be constructed.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: api key for provider %q is not configured: %w", cfg.Provider, ErrClientUnavailable)
	}
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiClient(ctx, cfg)
	case "openai":
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// MustClient returns a working client, or an unavailable one when construction
// fails. The process keeps serving and every inference fails fast.
func MustClient(ctx context.Context, cfg config.LLMConfig) Client {
	c, err := NewClient(ctx, cfg)
	if err != nil {
		log.Errorw("LLM 客户端初始化失败，症状检查将不可用", "provider", cfg.Provider, "error", err)
		return Unavailable(cfg.Provider, err)
	}
	log.Infof("LLM 客户端初始化成功: %s", c.Name())
	return c
}

type unavailableClient struct {
	provider string
	cause    error
}

// Unavailable returns a Client whose every call fails immediately with
// ErrClientUnavailable, without touching the network.
func Unavailable(provider string, cause error) Client {
	return &unavailableClient{provider: provider, cause: cause}
}

func (u *unavailableClient) Name() string { return u.provider + ":unavailable" }

func (u *unavailableClient) GenerateJSON(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	return nil, &ProviderError{Provider: u.provider, Op: "init", Err: fmt.Errorf("%w: %v", ErrClientUnavailable, u.cause)}
}

// Available reports whether c can reach a provider at all.
func Available(c Client) bool {
	_, unavailable := c.(*unavailableClient)
	return c != nil && !unavailable
}
