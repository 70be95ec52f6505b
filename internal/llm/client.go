// Package llm provides completion provider clients and the model fallback chain.
package llm

import (
	"context"
	"errors"
)

// ErrRateLimited is returned by clients when the provider rejects a request
// for rate-limiting reasons. The fallback chain advances to the next
// candidate model on this error.
var ErrRateLimited = errors.New("provider rate limited")

// ChatMessage is a chat message in provider format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a request for a single text completion.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	Messages     []ChatMessage
	MaxTokens    int
}

// CompletionResponse is the result of a completion request.
type CompletionResponse struct {
	Content   string
	Model     string
	TokensIn  int
	TokensOut int
	LatencyMs int64
}

// Client is the interface for completion providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns the provider's candidate models, in fallback order.
	Models() []string
}

// Provider is the type of completion provider.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderAnthropic  Provider = "anthropic"
)

// NewClient creates a completion client for the given provider.
func NewClient(provider Provider, apiKey, baseURL string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	case ProviderOpenRouter:
		return NewOpenRouterClient(apiKey, baseURL)
	default:
		return NewOpenRouterClient(apiKey, baseURL)
	}
}
