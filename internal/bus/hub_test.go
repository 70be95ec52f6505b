package bus_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavechat-ai/wavechat-server/internal/bus"
	"github.com/wavechat-ai/wavechat-server/internal/model"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
)

func newHub(t *testing.T, broker bus.Broker) *bus.Hub {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return bus.NewHub(broker, log)
}

// drain reads every event currently queued on the session.
func drain(s *bus.Session) []model.Event {
	var events []model.Event
	for {
		select {
		case data, ok := <-s.Events():
			if !ok {
				return events
			}
			var e model.Event
			if err := json.Unmarshal(data, &e); err == nil {
				events = append(events, e)
			}
		default:
			return events
		}
	}
}

func TestPublishReachesOnlyJoinedRoom(t *testing.T) {
	hub := newHub(t, bus.NewMemoryBroker())

	alice := hub.Connect()
	defer hub.Disconnect(alice)
	bob := hub.Connect()
	defer hub.Disconnect(bob)

	require.NoError(t, hub.JoinUser(alice, "alice"))
	require.NoError(t, hub.JoinUser(bob, "bob"))

	hub.Publish(bus.UserRoom("alice"), model.Event{Type: model.EventListChanged})

	assert.Len(t, drain(alice), 1)
	assert.Empty(t, drain(bob))
}

func TestRejoinSameIdentityDeliversOnce(t *testing.T) {
	hub := newHub(t, bus.NewMemoryBroker())

	s := hub.Connect()
	defer hub.Disconnect(s)

	require.NoError(t, hub.JoinUser(s, "alice"))
	require.NoError(t, hub.JoinUser(s, "alice"))
	require.NoError(t, hub.JoinUser(s, "alice"))

	hub.Publish(bus.UserRoom("alice"), model.Event{Type: model.EventListChanged})

	assert.Len(t, drain(s), 1)
}

func TestJoinDifferentIdentityFails(t *testing.T) {
	hub := newHub(t, bus.NewMemoryBroker())

	s := hub.Connect()
	defer hub.Disconnect(s)

	require.NoError(t, hub.JoinUser(s, "alice"))
	assert.ErrorIs(t, hub.JoinUser(s, "bob"), bus.ErrRoleTaken)
	assert.ErrorIs(t, hub.JoinAdmin(s), bus.ErrRoleTaken)
	assert.Equal(t, "user:alice", s.Role())
}

func TestMultipleConnectionsSameUser(t *testing.T) {
	hub := newHub(t, bus.NewMemoryBroker())

	first := hub.Connect()
	defer hub.Disconnect(first)
	second := hub.Connect()
	defer hub.Disconnect(second)

	require.NoError(t, hub.JoinUser(first, "alice"))
	require.NoError(t, hub.JoinUser(second, "alice"))

	hub.Publish(bus.UserRoom("alice"), model.Event{Type: model.EventListChanged})

	assert.Len(t, drain(first), 1)
	assert.Len(t, drain(second), 1)
}

func TestPublishNewMessageFansOutToBothRooms(t *testing.T) {
	hub := newHub(t, bus.NewMemoryBroker())

	user := hub.Connect()
	defer hub.Disconnect(user)
	admin := hub.Connect()
	defer hub.Disconnect(admin)

	require.NoError(t, hub.JoinUser(user, "alice"))
	require.NoError(t, hub.JoinAdmin(admin))

	msg := &model.Message{ID: "m1", Role: model.RoleAssistant, Content: "hi", IsAIGenerated: true}
	hub.PublishNewMessage("chat-1", "alice", msg)

	userEvents := drain(user)
	require.Len(t, userEvents, 1)
	assert.Equal(t, model.EventNewMessage, userEvents[0].Type)
	assert.Equal(t, "chat-1", userEvents[0].ChatID)
	assert.Empty(t, userEvents[0].UserID)

	adminEvents := drain(admin)
	require.Len(t, adminEvents, 1)
	assert.Equal(t, model.EventAdminNewMessage, adminEvents[0].Type)
	assert.Equal(t, "alice", adminEvents[0].UserID)
	require.NotNil(t, adminEvents[0].Message)
	assert.Equal(t, "m1", adminEvents[0].Message.ID)
}

func TestDisconnectRemovesSession(t *testing.T) {
	hub := newHub(t, bus.NewMemoryBroker())

	s := hub.Connect()
	require.NoError(t, hub.JoinUser(s, "alice"))
	assert.Equal(t, 1, hub.Sessions())

	hub.Disconnect(s)
	assert.Equal(t, 0, hub.Sessions())

	// Channel is closed and no further events arrive.
	hub.Publish(bus.UserRoom("alice"), model.Event{Type: model.EventListChanged})
	_, open := <-s.Events()
	assert.False(t, open)

	// Double disconnect is harmless.
	hub.Disconnect(s)
}

func TestSlowSessionDropsInsteadOfBlocking(t *testing.T) {
	hub := newHub(t, bus.NewMemoryBroker())

	s := hub.Connect()
	defer hub.Disconnect(s)
	require.NoError(t, hub.JoinUser(s, "alice"))

	// Publish well past the buffer without a reader; nothing blocks.
	for i := 0; i < 100; i++ {
		hub.Publish(bus.UserRoom("alice"), model.Event{Type: model.EventListChanged})
	}
	assert.NotEmpty(t, drain(s))
}

type failingBroker struct{}

func (failingBroker) Publish(string, []byte) error { return errors.New("broker down") }
func (failingBroker) Subscribe(string, func([]byte)) (bus.Subscription, error) {
	return nil, errors.New("broker down")
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	hub := newHub(t, failingBroker{})

	// Fire-and-forget: the write path must not observe broker failures.
	hub.PublishNewMessage("chat-1", "alice", &model.Message{ID: "m1"})
	hub.PublishListChanged("alice")
}

func TestJoinFailsWhenBrokerDown(t *testing.T) {
	hub := newHub(t, failingBroker{})

	s := hub.Connect()
	defer hub.Disconnect(s)

	assert.Error(t, hub.JoinUser(s, "alice"))
	assert.Empty(t, s.Role())
}
