package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavechat-ai/wavechat-server/internal/llm"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
)

// fakeClient returns the scripted error for each model until it runs out of
// failures, then succeeds.
type fakeClient struct {
	models   []string
	failWith map[string]error
	tried    []string
}

func (c *fakeClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.tried = append(c.tried, req.Model)
	if err, ok := c.failWith[req.Model]; ok {
		return nil, err
	}
	return &llm.CompletionResponse{Content: "reply from " + req.Model, Model: req.Model}, nil
}

func (c *fakeClient) Name() string     { return "fake" }
func (c *fakeClient) Models() []string { return c.models }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func TestGenerateFirstCandidateSucceeds(t *testing.T) {
	client := &fakeClient{models: []string{"a", "b", "c"}}
	f := llm.NewFallbackCompleter(client, testLogger(t))

	got := f.Generate(context.Background(), "", "system", nil, 100)
	assert.Equal(t, "reply from a", got)
	assert.Equal(t, []string{"a"}, client.tried)
}

func TestGenerateAdvancesOnRateLimit(t *testing.T) {
	client := &fakeClient{
		models: []string{"a", "b", "c"},
		failWith: map[string]error{
			"a": llm.ErrRateLimited,
			"b": llm.ErrRateLimited,
		},
	}
	f := llm.NewFallbackCompleter(client, testLogger(t))

	got := f.Generate(context.Background(), "", "system", nil, 100)
	assert.Equal(t, "reply from c", got)
	assert.Equal(t, []string{"a", "b", "c"}, client.tried)
}

func TestGeneratePreferredModelTriedFirst(t *testing.T) {
	client := &fakeClient{
		models:   []string{"a", "b"},
		failWith: map[string]error{"b": llm.ErrRateLimited},
	}
	f := llm.NewFallbackCompleter(client, testLogger(t))

	got := f.Generate(context.Background(), "b", "system", nil, 100)

	// Preferred first, then the pool with the preferred entry deduplicated.
	assert.Equal(t, []string{"b", "a"}, client.tried)
	assert.Equal(t, "reply from a", got)
}

func TestGenerateApologyWhenExhausted(t *testing.T) {
	client := &fakeClient{
		models: []string{"a", "b"},
		failWith: map[string]error{
			"a": llm.ErrRateLimited,
			"b": llm.ErrRateLimited,
		},
	}
	f := llm.NewFallbackCompleter(client, testLogger(t))

	got := f.Generate(context.Background(), "", "system", nil, 100)
	assert.Equal(t, llm.ApologyReply, got)
	assert.Equal(t, []string{"a", "b"}, client.tried)
}

func TestGenerateApologyOnHardError(t *testing.T) {
	client := &fakeClient{
		models:   []string{"a", "b"},
		failWith: map[string]error{"a": errors.New("connection refused")},
	}
	f := llm.NewFallbackCompleter(client, testLogger(t))

	// Non-rate-limit failures do not advance the chain.
	got := f.Generate(context.Background(), "", "system", nil, 100)
	assert.Equal(t, llm.ApologyReply, got)
	assert.Equal(t, []string{"a"}, client.tried)
}

func TestGenerateNilClient(t *testing.T) {
	f := llm.NewFallbackCompleter(nil, testLogger(t))

	got := f.Generate(context.Background(), "any", "system", nil, 100)
	assert.Equal(t, llm.ApologyReply, got)
}
