package client

import (
	"github.com/wavechat-ai/wavechat-server/internal/model"
)

// Wire types, re-exported so importers of this package can name every type
// the API returns or accepts without reaching into internal packages.
type (
	Chat        = model.Chat
	ChatSummary = model.ChatSummary
	Message     = model.Message
	Role        = model.Role
	Settings    = model.Settings

	SubmitRequest           = model.SubmitRequest
	SubmitResponse          = model.SubmitResponse
	AdminReplyRequest       = model.AdminReplyRequest
	ToggleAutoReplyRequest  = model.ToggleAutoReplyRequest
	ToggleAutoReplyResponse = model.ToggleAutoReplyResponse
	UpdateSettingsRequest   = model.UpdateSettingsRequest

	Event     = model.Event
	EventType = model.EventType
)

// Message roles.
const (
	RoleUser      = model.RoleUser
	RoleAssistant = model.RoleAssistant
)

// Live-channel event types.
const (
	EventNewMessage      = model.EventNewMessage
	EventAdminNewMessage = model.EventAdminNewMessage
	EventListChanged     = model.EventListChanged
)
