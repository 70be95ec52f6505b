package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wavechat-ai/wavechat-server/internal/bus"
	"github.com/wavechat-ai/wavechat-server/internal/llm"
	"github.com/wavechat-ai/wavechat-server/internal/model"
	"github.com/wavechat-ai/wavechat-server/internal/store"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
	"github.com/wavechat-ai/wavechat-server/pkg/metrics"
)

// RecentChatsLimit caps the public recent-chats listing.
const RecentChatsLimit = 100

// Completer produces an assistant reply for a conversation history. It never
// fails: provider trouble degrades to a static apology reply.
type Completer interface {
	Generate(ctx context.Context, preferredModel, systemPrompt string, history []llm.ChatMessage, maxTokens int) string
}

// ChatService is the message pipeline: it accepts inbound user messages,
// persists them, requests completions unless auto-reply is disabled, and
// fans live updates out through the hub.
type ChatService struct {
	store     store.ChatStore
	settings  *SettingsService
	completer Completer
	hub       *bus.Hub
	logger    *logger.Logger
	locks     *keyedMutex
}

// NewChatService creates a chat service.
func NewChatService(
	st store.ChatStore,
	settings *SettingsService,
	completer Completer,
	hub *bus.Hub,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		store:     st,
		settings:  settings,
		completer: completer,
		hub:       hub,
		logger:    log,
		locks:     newKeyedMutex(),
	}
}

const userIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// MintUserID generates an opaque session-correlation token: time-based
// prefix plus random suffix. Uniqueness is best-effort; this is not a
// security credential.
func MintUserID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = userIDAlphabet[rand.Intn(len(userIDAlphabet))]
	}
	return fmt.Sprintf("user_%d_%s", time.Now().UnixMilli(), suffix)
}

// Submit runs the message pipeline for one inbound user message.
//
// The user message and any assistant reply are committed as a single save.
// The chat's lock is held for the whole read-modify-write, including the
// completion call. Live publishes happen after the save and never affect
// the result.
func (s *ChatService) Submit(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResponse, error) {
	if req.Message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	var (
		chat  *model.Chat
		isNew bool
	)

	now := time.Now()

	if req.ChatID != "" {
		unlock := s.locks.Lock(req.ChatID)
		defer unlock()

		existing, err := s.store.Get(ctx, req.ChatID)
		if err != nil {
			return nil, err
		}
		chat = existing
	} else {
		userID := req.UserID
		if userID == "" {
			userID = MintUserID()
		}
		chat = &model.Chat{
			ID:        uuid.Must(uuid.NewV7()).String(),
			UserID:    userID,
			Messages:  []model.Message{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		isNew = true
	}

	chat.Messages = append(chat.Messages, model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Role:      model.RoleUser,
		Content:   req.Message,
		CreatedAt: now,
	})
	if len(chat.Messages) == 1 {
		chat.Title = model.DeriveTitle(req.Message)
	}

	var reply *model.Message
	if !chat.AutoReplyDisabled {
		content := s.complete(ctx, chat)
		reply = &model.Message{
			ID:            uuid.Must(uuid.NewV7()).String(),
			Role:          model.RoleAssistant,
			Content:       content,
			IsAIGenerated: true,
			CreatedAt:     time.Now(),
		}
		chat.Messages = append(chat.Messages, *reply)
	}

	chat.UpdatedAt = time.Now()

	if isNew {
		if err := s.store.Insert(ctx, chat); err != nil {
			return nil, err
		}
		metrics.ChatsTotal.Inc()
	} else {
		if err := s.store.Save(ctx, chat); err != nil {
			return nil, err
		}
	}

	metrics.MessagesTotal.WithLabelValues(string(model.RoleUser), metrics.OriginUser).Inc()

	if reply != nil {
		metrics.MessagesTotal.WithLabelValues(string(model.RoleAssistant), metrics.OriginAI).Inc()
		s.hub.PublishNewMessage(chat.ID, chat.UserID, reply)
	}
	if isNew {
		s.hub.PublishListChanged(chat.UserID)
	}

	resp := &model.SubmitResponse{
		ChatID: chat.ID,
		UserID: chat.UserID,
	}
	if reply != nil {
		resp.Message = &reply.Content
	}
	return resp, nil
}

// complete asks the completion provider for a reply to the chat history
// using the current settings. Settings read failures degrade to defaults so
// conversational continuity wins over backend instability.
func (s *ChatService) complete(ctx context.Context, chat *model.Chat) string {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("failed to load settings, using defaults", zap.Error(err))
		settings = model.DefaultSettings("")
	}

	history := make([]llm.ChatMessage, len(chat.Messages))
	for i, msg := range chat.Messages {
		history[i] = llm.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	return s.completer.Generate(ctx, settings.AIModel, settings.SystemPrompt, history, settings.MaxTokens)
}

// AdminReply appends an admin-authored message under the assistant role and
// pushes it to the owning user's sessions. It never calls the completion
// provider; IsAIGenerated is always false.
func (s *ChatService) AdminReply(ctx context.Context, chatID, text string) (*model.Message, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	unlock := s.locks.Lock(chatID)
	defer unlock()

	chat, err := s.store.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	msg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Role:      model.RoleAssistant,
		Content:   text,
		CreatedAt: time.Now(),
	}
	chat.Messages = append(chat.Messages, msg)
	chat.UpdatedAt = time.Now()

	if err := s.store.Save(ctx, chat); err != nil {
		return nil, err
	}

	metrics.MessagesTotal.WithLabelValues(string(model.RoleAssistant), metrics.OriginAdmin).Inc()
	s.hub.PublishNewMessage(chat.ID, chat.UserID, &msg)

	return &msg, nil
}

// SetAutoReply toggles the per-chat auto-reply gate.
func (s *ChatService) SetAutoReply(ctx context.Context, chatID string, disabled bool) (bool, error) {
	unlock := s.locks.Lock(chatID)
	defer unlock()

	chat, err := s.store.Get(ctx, chatID)
	if err != nil {
		return false, err
	}

	chat.AutoReplyDisabled = disabled
	chat.UpdatedAt = time.Now()

	if err := s.store.Save(ctx, chat); err != nil {
		return false, err
	}
	return chat.AutoReplyDisabled, nil
}

// Get returns a single chat with its full message history.
func (s *ChatService) Get(ctx context.Context, chatID string) (*model.Chat, error) {
	return s.store.Get(ctx, chatID)
}

// ListByUser returns a user's chats, most recently updated first.
func (s *ChatService) ListByUser(ctx context.Context, userID string) ([]model.ChatSummary, error) {
	return s.store.ListByUser(ctx, userID)
}

// ListRecent returns the latest chats across all users.
func (s *ChatService) ListRecent(ctx context.Context) ([]model.ChatSummary, error) {
	return s.store.ListRecent(ctx, RecentChatsLimit)
}

// ListAll returns every chat, messages included, for the admin view.
func (s *ChatService) ListAll(ctx context.Context) ([]model.Chat, error) {
	return s.store.ListAll(ctx)
}

// Delete removes a chat permanently.
func (s *ChatService) Delete(ctx context.Context, chatID string) error {
	return s.store.Delete(ctx, chatID)
}
