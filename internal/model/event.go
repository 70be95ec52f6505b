package model

// EventType identifies a live-channel event.
type EventType string

const (
	// EventNewMessage is pushed to the owning user's room when an assistant
	// reply is appended, whether AI-generated or admin-injected.
	EventNewMessage EventType = "new-message"

	// EventAdminNewMessage is the parallel publish of EventNewMessage into
	// the shared admin room, carrying the owner id as well.
	EventAdminNewMessage EventType = "admin-new-message"

	// EventListChanged is pushed to the owning user's room when a new chat
	// is created. It carries no payload; clients re-fetch their list.
	EventListChanged EventType = "list-changed"
)

// Event is a live-channel event as delivered to a joined connection.
// Delivery is at-most-once per publish; the polling fallback is the
// durability backstop.
type Event struct {
	Type    EventType `json:"type"`
	ChatID  string    `json:"chatId,omitempty"`
	UserID  string    `json:"userId,omitempty"`
	Message *Message  `json:"message,omitempty"`
}
