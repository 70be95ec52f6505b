// Package bus implements the room-addressed live-update layer: a Broker
// transport, the Hub that owns room membership, and the session registry.
package bus

import (
	"sync"
)

// Room subject layout. Rooms are broker subjects: one per user identity and
// one shared room for all admin sessions.
const (
	subjectPrefix = "live."

	// AdminRoom is joined by every authenticated admin connection.
	AdminRoom = subjectPrefix + "admin"
)

// UserRoom returns the room joined by every connection of the given user.
func UserRoom(userID string) string {
	return subjectPrefix + "user." + userID
}

// Subscription is an active room subscription.
type Subscription interface {
	Unsubscribe() error
}

// Broker is the transport the Hub fans events out over. Delivery is
// at-most-once per publish: no replay buffer, no acknowledgment.
type Broker interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (Subscription, error)
}

// MemoryBroker is an in-process Broker for single-node deployments and
// tests. Handlers run synchronously on the publisher's goroutine.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string]map[*memorySubscription]struct{}
}

// NewMemoryBroker creates an empty in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[*memorySubscription]struct{})}
}

type memorySubscription struct {
	broker  *MemoryBroker
	subject string
	handler func(data []byte)
}

func (s *memorySubscription) Unsubscribe() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	if set, ok := s.broker.subs[s.subject]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(s.broker.subs, s.subject)
		}
	}
	return nil
}

func (b *MemoryBroker) Publish(subject string, data []byte) error {
	b.mu.RLock()
	handlers := make([]func([]byte), 0, len(b.subs[subject]))
	for sub := range b.subs[subject] {
		handlers = append(handlers, sub.handler)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(data)
	}
	return nil
}

func (b *MemoryBroker) Subscribe(subject string, handler func(data []byte)) (Subscription, error) {
	sub := &memorySubscription{broker: b, subject: subject, handler: handler}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[subject] == nil {
		b.subs[subject] = make(map[*memorySubscription]struct{})
	}
	b.subs[subject][sub] = struct{}{}
	return sub, nil
}
