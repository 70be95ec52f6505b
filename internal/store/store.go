// Package store provides durable persistence for chats and settings.
package store

import (
	"context"
	"errors"

	"github.com/wavechat-ai/wavechat-server/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ChatStore is the durable record of conversations. Save is a whole-document
// replace: the caller mutates an in-memory chat and commits it in one write,
// last write wins.
type ChatStore interface {
	Insert(ctx context.Context, chat *model.Chat) error
	Get(ctx context.Context, id string) (*model.Chat, error)
	Save(ctx context.Context, chat *model.Chat) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]model.ChatSummary, error)
	ListRecent(ctx context.Context, limit int) ([]model.ChatSummary, error)
	ListAll(ctx context.Context) ([]model.Chat, error)
}

// SettingsStore persists the settings singleton. Get returns ErrNotFound
// before the first Put.
type SettingsStore interface {
	Get(ctx context.Context) (*model.Settings, error)
	Put(ctx context.Context, settings *model.Settings) error
}
