package llm

import (
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
	genai "google.golang.org/genai"
)

var (
	// ErrClientUnavailable is returned when the provider client could not be
	// initialized at startup.
	ErrClientUnavailable = errors.New("llm: client not initialized")
	// ErrEmptyResponse is returned when the provider answered without content.
	ErrEmptyResponse = errors.New("llm: empty response from model")
)

// ProviderError marks a failure on the provider side of the boundary:
// transport, API status, empty or malformed output, or a missing client.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm %s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderFault reports whether err originates from the inference provider
// rather than from this process.
func IsProviderFault(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return true
	}
	if errors.Is(err, ErrClientUnavailable) {
		return true
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return true
	}
	var oaAPIErr *openai.APIError
	if errors.As(err, &oaAPIErr) {
		return true
	}
	var oaReqErr *openai.RequestError
	if errors.As(err, &oaReqErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
