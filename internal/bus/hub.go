package bus

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/wavechat-ai/wavechat-server/internal/model"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
	"github.com/wavechat-ai/wavechat-server/pkg/metrics"
)

// ErrRoleTaken is returned when a connection that already joined as one
// identity tries to join as another.
var ErrRoleTaken = errors.New("connection already joined with a different identity")

// sendBufferSize bounds the per-session outbound queue. A session that
// cannot drain in time loses events; the polling fallback recovers them.
const sendBufferSize = 32

// Session is one live connection's registry entry. A session holds at most
// one role (a user identity or admin) and receives events for the rooms it
// joined through Events.
type Session struct {
	hub  *Hub
	send chan []byte

	mu     sync.Mutex
	role   string
	subs   map[string]Subscription
	closed bool
}

// Events returns the channel of serialized events for this session. The
// channel is closed when the session is disconnected.
func (s *Session) Events() <-chan []byte {
	return s.send
}

// Role returns the joined role ("user:<id>" or "admin"), or "" before join.
func (s *Session) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// deliver enqueues an event without blocking. Full buffer means the event is
// dropped for this session: delivery is at-most-once.
func (s *Session) deliver(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
	}
}

// Hub owns the session registry and room membership on top of a Broker.
// Registry state is entirely in-memory: empty at process start, entries
// removed on disconnect.
type Hub struct {
	broker Broker
	logger *logger.Logger

	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// NewHub creates a hub over the given broker.
func NewHub(broker Broker, log *logger.Logger) *Hub {
	return &Hub{
		broker:   broker,
		logger:   log,
		sessions: make(map[*Session]struct{}),
	}
}

// Connect registers a new live connection. The session starts in no room;
// join is an explicit client action.
func (h *Hub) Connect() *Session {
	s := &Session{
		hub:  h,
		send: make(chan []byte, sendBufferSize),
		subs: make(map[string]Subscription),
	}
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
	metrics.LiveConnectionsActive.Inc()
	return s
}

// Disconnect removes the session from the registry, releases its room
// subscriptions and closes its event channel.
func (h *Hub) Disconnect(s *Session) {
	h.mu.Lock()
	_, registered := h.sessions[s]
	delete(h.sessions, s)
	h.mu.Unlock()
	if !registered {
		return
	}

	s.mu.Lock()
	for room, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			h.logger.Warn("failed to unsubscribe room", zap.String("room", room), zap.Error(err))
		}
		delete(s.subs, room)
	}
	s.closed = true
	close(s.send)
	s.mu.Unlock()

	metrics.LiveConnectionsActive.Dec()
}

// JoinUser joins the session to the given user's room. Re-joining the same
// identity is a no-op; an event published to a room is delivered once per
// joined connection regardless of how many times join was called.
func (h *Hub) JoinUser(s *Session, userID string) error {
	return h.join(s, "user:"+userID, UserRoom(userID))
}

// JoinAdmin joins the session to the shared admin room.
func (h *Hub) JoinAdmin(s *Session) error {
	return h.join(s, "admin", AdminRoom)
}

func (h *Hub) join(s *Session, role, room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("session disconnected")
	}
	if s.role == role {
		return nil
	}
	if s.role != "" {
		return ErrRoleTaken
	}

	sub, err := h.broker.Subscribe(room, s.deliver)
	if err != nil {
		return err
	}
	s.role = role
	s.subs[room] = sub
	return nil
}

// Sessions returns the number of registered live connections.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Publish fans an event out to a room. It is fire-and-forget: failures are
// logged and counted but never returned, because the persisted write is the
// source of truth and live delivery is best-effort.
func (h *Hub) Publish(room string, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to marshal live event",
			zap.String("event", string(event.Type)),
			zap.Error(err),
		)
		metrics.BusPublishFailuresTotal.WithLabelValues(string(event.Type)).Inc()
		return
	}

	if err := h.broker.Publish(room, data); err != nil {
		h.logger.Warn("failed to publish live event",
			zap.String("event", string(event.Type)),
			zap.String("room", room),
			zap.Error(err),
		)
		metrics.BusPublishFailuresTotal.WithLabelValues(string(event.Type)).Inc()
		return
	}

	metrics.BusPublishesTotal.WithLabelValues(string(event.Type)).Inc()
}

// PublishNewMessage pushes an appended assistant reply to the owning user's
// room and, in parallel, to the admin room with the owner id attached.
func (h *Hub) PublishNewMessage(chatID, ownerID string, msg *model.Message) {
	h.Publish(UserRoom(ownerID), model.Event{
		Type:    model.EventNewMessage,
		ChatID:  chatID,
		Message: msg,
	})
	h.Publish(AdminRoom, model.Event{
		Type:    model.EventAdminNewMessage,
		ChatID:  chatID,
		UserID:  ownerID,
		Message: msg,
	})
}

// PublishListChanged notifies the owning user's sessions that their chat
// list changed.
func (h *Hub) PublishListChanged(ownerID string) {
	h.Publish(UserRoom(ownerID), model.Event{Type: model.EventListChanged})
}
