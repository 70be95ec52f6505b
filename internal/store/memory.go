package store

import (
	"context"
	"sort"
	"sync"

	"github.com/wavechat-ai/wavechat-server/internal/model"
)

// MemoryChatStore is an in-memory ChatStore used in tests and local
// development without a MongoDB instance.
type MemoryChatStore struct {
	mu    sync.RWMutex
	chats map[string]model.Chat
}

// NewMemoryChatStore creates an empty in-memory chat store.
func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{chats: make(map[string]model.Chat)}
}

func cloneChat(c model.Chat) model.Chat {
	c.Messages = append([]model.Message(nil), c.Messages...)
	return c
}

func (s *MemoryChatStore) Insert(ctx context.Context, chat *model.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chat.ID] = cloneChat(*chat)
	return nil
}

func (s *MemoryChatStore) Get(ctx context.Context, id string) (*model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := cloneChat(chat)
	return &copied, nil
}

func (s *MemoryChatStore) Save(ctx context.Context, chat *model.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chat.ID]; !ok {
		return ErrNotFound
	}
	s.chats[chat.ID] = cloneChat(*chat)
	return nil
}

func (s *MemoryChatStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return ErrNotFound
	}
	delete(s.chats, id)
	return nil
}

// sortedByUpdatedAt returns all chats matching keep, newest first.
func (s *MemoryChatStore) sortedByUpdatedAt(keep func(model.Chat) bool) []model.Chat {
	var chats []model.Chat
	for _, chat := range s.chats {
		if keep(chat) {
			chats = append(chats, cloneChat(chat))
		}
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats
}

func (s *MemoryChatStore) ListByUser(ctx context.Context, userID string) ([]model.ChatSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := []model.ChatSummary{}
	for _, chat := range s.sortedByUpdatedAt(func(c model.Chat) bool { return c.UserID == userID }) {
		summaries = append(summaries, chat.Summary())
	}
	return summaries, nil
}

func (s *MemoryChatStore) ListRecent(ctx context.Context, limit int) ([]model.ChatSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := []model.ChatSummary{}
	for _, chat := range s.sortedByUpdatedAt(func(model.Chat) bool { return true }) {
		if len(summaries) == limit {
			break
		}
		summaries = append(summaries, chat.Summary())
	}
	return summaries, nil
}

func (s *MemoryChatStore) ListAll(ctx context.Context) ([]model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedByUpdatedAt(func(model.Chat) bool { return true }), nil
}

// MemorySettingsStore is an in-memory SettingsStore.
type MemorySettingsStore struct {
	mu       sync.RWMutex
	settings *model.Settings
}

// NewMemorySettingsStore creates an empty in-memory settings store.
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{}
}

func (s *MemorySettingsStore) Get(ctx context.Context) (*model.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, ErrNotFound
	}
	copied := *s.settings
	return &copied, nil
}

func (s *MemorySettingsStore) Put(ctx context.Context, settings *model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *settings
	s.settings = &copied
	return nil
}
