package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/wavechat-ai/wavechat-server/internal/bus"
	"github.com/wavechat-ai/wavechat-server/internal/handler"
	"github.com/wavechat-ai/wavechat-server/internal/model"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
)

// frame covers everything the server writes on the live channel: control
// acks and room events.
type frame struct {
	Type    string         `json:"type"`
	Error   string         `json:"error,omitempty"`
	ChatID  string         `json:"chatId,omitempty"`
	UserID  string         `json:"userId,omitempty"`
	Message *model.Message `json:"message,omitempty"`
}

func newLiveServer(t *testing.T) (*httptest.Server, *bus.Hub) {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)

	hub := bus.NewHub(bus.NewMemoryBroker(), log)
	h := handler.NewLiveHandler(hub, testAdminPassword, log)
	srv := httptest.NewServer(http.HandlerFunc(h.Serve))
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialLiveServer(t *testing.T, ctx context.Context, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) frame {
	t.Helper()
	var f frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	return f
}

func TestLiveChannelUserJoinAndReceive(t *testing.T) {
	srv, hub := newLiveServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialLiveServer(t, ctx, srv)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{
		"type":   "join",
		"role":   "user",
		"userId": "user_1_abc",
	}))

	ack := readFrame(t, ctx, conn)
	assert.Equal(t, "joined", ack.Type)
	assert.Empty(t, ack.Error)

	msg := &model.Message{ID: "m1", Role: model.RoleAssistant, Content: "hi", IsAIGenerated: true}
	hub.PublishNewMessage("chat-1", "user_1_abc", msg)

	event := readFrame(t, ctx, conn)
	assert.Equal(t, string(model.EventNewMessage), event.Type)
	assert.Equal(t, "chat-1", event.ChatID)
	require.NotNil(t, event.Message)
	assert.Equal(t, "m1", event.Message.ID)
}

func TestLiveChannelUserDoesNotSeeOtherRooms(t *testing.T) {
	srv, hub := newLiveServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialLiveServer(t, ctx, srv)
	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{
		"type":   "join",
		"role":   "user",
		"userId": "user_1_abc",
	}))
	readFrame(t, ctx, conn)

	hub.PublishNewMessage("chat-2", "user_2_xyz", &model.Message{ID: "m2"})
	hub.PublishListChanged("user_1_abc")

	// Only the own-room event arrives.
	event := readFrame(t, ctx, conn)
	assert.Equal(t, string(model.EventListChanged), event.Type)
}

func TestLiveChannelAdminJoin(t *testing.T) {
	srv, hub := newLiveServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialLiveServer(t, ctx, srv)

	// Wrong password is rejected with an error ack and the connection
	// stays usable.
	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{
		"type":     "join",
		"role":     "admin",
		"password": "wrong",
	}))
	ack := readFrame(t, ctx, conn)
	assert.Equal(t, "error", ack.Type)
	assert.Equal(t, "invalid admin password", ack.Error)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{
		"type":     "join",
		"role":     "admin",
		"password": testAdminPassword,
	}))
	ack = readFrame(t, ctx, conn)
	assert.Equal(t, "joined", ack.Type)

	hub.PublishNewMessage("chat-1", "user_1_abc", &model.Message{ID: "m1", Role: model.RoleAssistant})

	event := readFrame(t, ctx, conn)
	assert.Equal(t, string(model.EventAdminNewMessage), event.Type)
	assert.Equal(t, "user_1_abc", event.UserID)
}

func TestLiveChannelRejectsBadJoins(t *testing.T) {
	srv, _ := newLiveServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialLiveServer(t, ctx, srv)

	// Missing user id.
	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{
		"type": "join",
		"role": "user",
	}))
	ack := readFrame(t, ctx, conn)
	assert.Equal(t, "error", ack.Type)

	// Unknown role.
	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{
		"type": "join",
		"role": "superuser",
	}))
	ack = readFrame(t, ctx, conn)
	assert.Equal(t, "error", ack.Type)
	assert.Equal(t, "unknown role", ack.Error)
}

func TestLiveChannelDisconnectCleansRegistry(t *testing.T) {
	srv, hub := newLiveServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialLiveServer(t, ctx, srv)
	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{
		"type":   "join",
		"role":   "user",
		"userId": "user_1_abc",
	}))
	readFrame(t, ctx, conn)

	require.Eventually(t, func() bool { return hub.Sessions() == 1 },
		2*time.Second, 10*time.Millisecond)

	conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return hub.Sessions() == 0 },
		2*time.Second, 10*time.Millisecond)
}
