package client

import (
	"sync"
)

// Reconciler maintains the ordered message list of the chat currently open,
// merging three arrival paths for the same logical message: the direct HTTP
// response to the client's own submit, the live-channel push, and periodic
// polling re-fetches.
//
// Deduplication is by server-assigned message id. Entries appended locally
// before the server echoes them back have no id yet; for those only, a
// (role, content) equality fallback applies. Two genuinely distinct id-less
// entries with identical role and text would be collapsed, which is the
// accepted cost of the optimistic append.
type Reconciler struct {
	mu       sync.Mutex
	messages []Message
}

// NewReconciler creates an empty reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// AppendLocal optimistically appends a message the user just typed, before
// the server has acknowledged it. It carries no id until Apply matches it.
func (r *Reconciler) AppendLocal(role Role, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Role: role, Content: content})
}

// Apply merges a server-confirmed message. It returns true when the list
// changed: either the message was appended, or it claimed a matching
// optimistic local entry.
func (r *Reconciler) Apply(msg Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.messages {
		existing := &r.messages[i]

		if msg.ID != "" && existing.ID == msg.ID {
			return false
		}

		// Optimistic local entry, now confirmed by the server.
		if existing.ID == "" && existing.Role == msg.Role && existing.Content == msg.Content {
			*existing = msg
			return true
		}
	}

	r.messages = append(r.messages, msg)
	return true
}

// Reset replaces the list with a polled snapshot, keeping any trailing
// optimistic local entries the server has not confirmed yet.
func (r *Reconciler) Reset(msgs []Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []Message
	for _, m := range r.messages {
		if m.ID == "" && !containsMessage(msgs, m) {
			pending = append(pending, m)
		}
	}

	r.messages = append(append([]Message(nil), msgs...), pending...)
}

// Messages returns a copy of the current ordered list.
func (r *Reconciler) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

func containsMessage(msgs []Message, m Message) bool {
	for _, other := range msgs {
		if other.Role == m.Role && other.Content == m.Content {
			return true
		}
	}
	return false
}
