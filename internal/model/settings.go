package model

import (
	"time"
)

// Default settings values, applied when the singleton document is lazily
// created on first read.
const (
	DefaultSystemPrompt = "You are a helpful AI assistant named WaveChat. " +
		"Be friendly, concise and helpful. Answer in the language the user writes in."
	DefaultMaxTokens = 4000
)

// Settings is the process-wide AI behavior configuration, stored as a
// singleton document and lazily created on first read.
//
// AutoReply is the global default; it is retained on the document but the
// message pipeline gates only on the per-chat AutoReplyDisabled flag.
type Settings struct {
	SystemPrompt string    `json:"systemPrompt" bson:"system_prompt"`
	AIModel      string    `json:"aiModel" bson:"ai_model"`
	MaxTokens    int       `json:"maxTokens" bson:"max_tokens"`
	AutoReply    bool      `json:"autoReply" bson:"auto_reply"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// DefaultSettings returns a Settings document populated with defaults.
func DefaultSettings(defaultModel string) *Settings {
	return &Settings{
		SystemPrompt: DefaultSystemPrompt,
		AIModel:      defaultModel,
		MaxTokens:    DefaultMaxTokens,
		AutoReply:    true,
		UpdatedAt:    time.Now(),
	}
}

// UpdateSettingsRequest is the body of PUT /admin/settings. Only fields
// present in the body are merged into the stored document.
type UpdateSettingsRequest struct {
	SystemPrompt *string `json:"systemPrompt,omitempty"`
	AIModel      *string `json:"aiModel,omitempty"`
	MaxTokens    *int    `json:"maxTokens,omitempty"`
	AutoReply    *bool   `json:"autoReply,omitempty"`
}
