package llm

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/wavechat-ai/wavechat-server/pkg/logger"
	"github.com/wavechat-ai/wavechat-server/pkg/metrics"
)

// ApologyReply is returned in place of a completion when every candidate
// model is exhausted or the provider fails. It is delivered to the caller as
// a successful reply; provider instability is never surfaced as an error.
const ApologyReply = "I'm sorry, but I'm experiencing technical difficulties " +
	"at the moment. Please try again later."

// FallbackCompleter wraps a Client with a candidate-model fallback chain.
// The preferred model is tried first, then each remaining candidate in order
// whenever the provider reports rate limiting. Exhaustion or any other
// provider failure degrades to ApologyReply.
type FallbackCompleter struct {
	client Client
	logger *logger.Logger
}

// NewFallbackCompleter creates a fallback completer over the given client.
func NewFallbackCompleter(client Client, log *logger.Logger) *FallbackCompleter {
	return &FallbackCompleter{client: client, logger: log}
}

// Generate produces a reply for the conversation history. The returned
// string is never empty and the call never fails: on provider trouble the
// static apology is returned instead.
func (f *FallbackCompleter) Generate(ctx context.Context, preferredModel, systemPrompt string, history []ChatMessage, maxTokens int) string {
	if f.client == nil {
		f.logger.Warn("no completion provider configured, returning apology reply")
		return ApologyReply
	}

	candidates := f.candidates(preferredModel)

	for _, model := range candidates {
		resp, err := f.client.Complete(ctx, &CompletionRequest{
			Model:        model,
			SystemPrompt: systemPrompt,
			Messages:     history,
			MaxTokens:    maxTokens,
		})
		if err == nil {
			metrics.RecordCompletion(resp.Model, "success", float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)
			return resp.Content
		}

		if errors.Is(err, ErrRateLimited) {
			f.logger.Warn("model rate limited, trying next candidate",
				zap.String("model", model),
				zap.String("provider", f.client.Name()),
			)
			metrics.CompletionFallbacksTotal.WithLabelValues(model).Inc()
			continue
		}

		f.logger.Error("completion failed",
			zap.String("model", model),
			zap.String("provider", f.client.Name()),
			zap.Error(err),
		)
		metrics.RecordCompletion(model, "error", 0, 0, 0)
		return ApologyReply
	}

	f.logger.Error("all candidate models rate limited",
		zap.String("provider", f.client.Name()),
		zap.Int("candidates", len(candidates)),
	)
	return ApologyReply
}

// candidates returns the preferred model followed by the provider's pool,
// without duplicates.
func (f *FallbackCompleter) candidates(preferred string) []string {
	pool := f.client.Models()

	if preferred == "" {
		return pool
	}

	candidates := make([]string, 0, len(pool)+1)
	candidates = append(candidates, preferred)
	for _, m := range pool {
		if m != preferred {
			candidates = append(candidates, m)
		}
	}
	return candidates
}
