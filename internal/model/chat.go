// Package model defines data structures for the chat platform.
package model

import (
	"strings"
	"time"
)

// TitleMaxLen is the number of runes of the first user message kept as the
// chat title. Longer messages are truncated with an ellipsis appended.
const TitleMaxLen = 50

// Chat is a titled, owned conversation between a user and the assistant.
// Messages are embedded and append-only.
type Chat struct {
	ID                string    `json:"id" bson:"_id"`
	UserID            string    `json:"userId" bson:"user_id"`
	Title             string    `json:"title" bson:"title"`
	Messages          []Message `json:"messages" bson:"messages"`
	AutoReplyDisabled bool      `json:"autoReplyDisabled" bson:"auto_reply_disabled"`
	CreatedAt         time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updated_at"`
}

// ChatSummary is the listing projection of a chat: everything except the
// message bodies.
type ChatSummary struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Summary returns the listing projection of the chat.
func (c *Chat) Summary() ChatSummary {
	return ChatSummary{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// DeriveTitle builds a chat title from the first user message.
func DeriveTitle(firstMessage string) string {
	runes := []rune(strings.TrimSpace(firstMessage))
	if len(runes) <= TitleMaxLen {
		return string(runes)
	}
	return string(runes[:TitleMaxLen]) + "..."
}

// SubmitRequest is the body of POST /chat.
type SubmitRequest struct {
	ChatID  string `json:"chatId,omitempty"`
	UserID  string `json:"userId,omitempty"`
	Message string `json:"message"`
}

// SubmitResponse is the response of POST /chat. Message is null when
// auto-reply is disabled for the chat.
type SubmitResponse struct {
	ChatID  string  `json:"chatId"`
	UserID  string  `json:"userId"`
	Message *string `json:"message"`
}

// AdminReplyRequest is the body of POST /admin/chats/:id/reply.
type AdminReplyRequest struct {
	Message string `json:"message"`
}

// ToggleAutoReplyRequest is the body of PUT /admin/chats/:id/toggle-auto-reply.
type ToggleAutoReplyRequest struct {
	Disabled bool `json:"disabled"`
}

// ToggleAutoReplyResponse is the response of PUT /admin/chats/:id/toggle-auto-reply.
type ToggleAutoReplyResponse struct {
	Success           bool `json:"success"`
	AutoReplyDisabled bool `json:"autoReplyDisabled"`
}
