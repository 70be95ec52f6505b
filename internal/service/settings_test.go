package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavechat-ai/wavechat-server/internal/model"
	"github.com/wavechat-ai/wavechat-server/internal/service"
	"github.com/wavechat-ai/wavechat-server/internal/store"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
)

func newSettingsService(t *testing.T) *service.SettingsService {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return service.NewSettingsService(store.NewMemorySettingsStore(), "default-model", log)
}

func TestGetCreatesDefaults(t *testing.T) {
	svc := newSettingsService(t)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.DefaultSystemPrompt, settings.SystemPrompt)
	assert.Equal(t, "default-model", settings.AIModel)
	assert.Equal(t, model.DefaultMaxTokens, settings.MaxTokens)
	assert.True(t, settings.AutoReply)

	// Second read returns the persisted document, not a fresh one.
	again, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings, again)
}

func TestUpdateMergesPartialFields(t *testing.T) {
	svc := newSettingsService(t)
	ctx := context.Background()

	prompt := "You are a pirate."
	updated, err := svc.Update(ctx, &model.UpdateSettingsRequest{SystemPrompt: &prompt})
	require.NoError(t, err)
	assert.Equal(t, prompt, updated.SystemPrompt)
	assert.Equal(t, "default-model", updated.AIModel)

	// A later partial update leaves the earlier field intact.
	maxTokens := 512
	updated, err = svc.Update(ctx, &model.UpdateSettingsRequest{MaxTokens: &maxTokens})
	require.NoError(t, err)
	assert.Equal(t, prompt, updated.SystemPrompt)
	assert.Equal(t, 512, updated.MaxTokens)
	assert.Equal(t, "default-model", updated.AIModel)
}

func TestUpdateRejectsNonPositiveMaxTokens(t *testing.T) {
	svc := newSettingsService(t)

	for _, v := range []int{0, -1} {
		bad := v
		_, err := svc.Update(context.Background(), &model.UpdateSettingsRequest{MaxTokens: &bad})
		assert.ErrorIs(t, err, service.ErrValidation)
	}
}

func TestUpdateEmptyRequestIsNoOp(t *testing.T) {
	svc := newSettingsService(t)
	ctx := context.Background()

	before, err := svc.Get(ctx)
	require.NoError(t, err)

	after, err := svc.Update(ctx, &model.UpdateSettingsRequest{})
	require.NoError(t, err)

	assert.Equal(t, before.SystemPrompt, after.SystemPrompt)
	assert.Equal(t, before.AIModel, after.AIModel)
	assert.Equal(t, before.MaxTokens, after.MaxTokens)
	assert.Equal(t, before.AutoReply, after.AutoReply)
}
