package symptom

import (
	"context"

	"symptom-checker-go/internal/model"
	"symptom-checker-go/pkg/llm"
)

// Checker performs one inference call per validated input. It never retries.
type Checker struct {
	client llm.Client
}

// NewChecker wraps an LLM client. Use llm.Unavailable when the provider could
// not be initialized so calls fail closed.
func NewChecker(client llm.Client) *Checker {
	return &Checker{client: client}
}

// Model returns the provider/model label used for audit records.
func (c *Checker) Model() string { return c.client.Name() }

// Diagnose sends the prompt and parses the response. A structurally invalid
// response is reported as a provider fault wrapping *SchemaError.
func (c *Checker) Diagnose(ctx context.Context, in model.SymptomInput) (model.DiagnosisResult, error) {
	raw, err := c.client.GenerateJSON(ctx, BuildPrompt(in.Symptoms), OutputSchema)
	if err != nil {
		return model.DiagnosisResult{}, err
	}
	result, err := ParseDiagnosis(raw)
	if err != nil {
		return model.DiagnosisResult{}, &llm.ProviderError{Provider: c.client.Name(), Op: "parse", Err: err}
	}
	return result, nil
}
