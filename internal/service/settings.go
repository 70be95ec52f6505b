package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wavechat-ai/wavechat-server/internal/model"
	"github.com/wavechat-ai/wavechat-server/internal/store"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
)

// SettingsService manages the process-wide settings singleton. The document
// is lazily created with defaults on first read and updated by partial-field
// merge: a partial update from one admin concurrent with a partial update
// from another does not clobber fields neither touched.
type SettingsService struct {
	store        store.SettingsStore
	defaultModel string
	logger       *logger.Logger

	// mu serializes the read-merge-write of Update.
	mu sync.Mutex
}

// NewSettingsService creates a settings service.
func NewSettingsService(st store.SettingsStore, defaultModel string, log *logger.Logger) *SettingsService {
	return &SettingsService{
		store:        st,
		defaultModel: defaultModel,
		logger:       log,
	}
}

// Get returns the settings, creating the document with defaults if absent.
func (s *SettingsService) Get(ctx context.Context) (*model.Settings, error) {
	settings, err := s.store.Get(ctx)
	if errors.Is(err, store.ErrNotFound) {
		settings = model.DefaultSettings(s.defaultModel)
		if err := s.store.Put(ctx, settings); err != nil {
			return nil, fmt.Errorf("failed to create default settings: %w", err)
		}
		return settings, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Update merges the fields present in req into the stored document and
// returns the result.
func (s *SettingsService) Update(ctx context.Context, req *model.UpdateSettingsRequest) (*model.Settings, error) {
	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		return nil, fmt.Errorf("%w: maxTokens must be positive", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.SystemPrompt != nil {
		settings.SystemPrompt = *req.SystemPrompt
	}
	if req.AIModel != nil {
		settings.AIModel = *req.AIModel
	}
	if req.MaxTokens != nil {
		settings.MaxTokens = *req.MaxTokens
	}
	if req.AutoReply != nil {
		settings.AutoReply = *req.AutoReply
	}
	settings.UpdatedAt = time.Now()

	if err := s.store.Put(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}
