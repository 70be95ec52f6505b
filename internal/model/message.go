package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a chat. Messages are never edited or removed;
// the only mutation is append.
//
// IsAIGenerated is true only when the content came from the completion
// provider. Admin-authored text injected under the assistant role carries
// false, which is the only way to tell a genuine AI answer from a human
// impersonating one. The flag is never shown to the end user.
type Message struct {
	ID            string    `json:"id" bson:"id"`
	Role          Role      `json:"role" bson:"role"`
	Content       string    `json:"content" bson:"content"`
	IsAIGenerated bool      `json:"isAiGenerated" bson:"is_ai_generated"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}
