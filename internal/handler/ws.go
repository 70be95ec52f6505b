package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/wavechat-ai/wavechat-server/internal/bus"
	"github.com/wavechat-ai/wavechat-server/internal/middleware"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
)

// writeTimeout bounds a single event write to a live connection.
const writeTimeout = 5 * time.Second

// LiveHandler serves the WebSocket live channel. A connection starts in no
// room; the client must send a join directive before it receives events.
type LiveHandler struct {
	hub           *bus.Hub
	adminPassword string
	logger        *logger.Logger
}

// NewLiveHandler creates a live channel handler.
func NewLiveHandler(hub *bus.Hub, adminPassword string, log *logger.Logger) *LiveHandler {
	return &LiveHandler{
		hub:           hub,
		adminPassword: adminPassword,
		logger:        log,
	}
}

// directive is a client-to-server live channel message.
type directive struct {
	Type     string `json:"type"`
	Role     string `json:"role,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Password string `json:"password,omitempty"`
}

// ack is a server-to-client control message.
type ack struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// Serve handles GET /ws
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	sess := h.hub.Connect()
	defer h.hub.Disconnect(sess)

	ctx := r.Context()

	go h.writeLoop(ctx, conn, sess)
	h.readLoop(ctx, conn, sess)
}

// writeLoop forwards events from the session to the connection until the
// session is disconnected or a write fails.
func (h *LiveHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sess *bus.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-sess.Events():
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// readLoop processes client directives until the connection drops.
func (h *LiveHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *bus.Session) {
	for {
		var d directive
		if err := wsjson.Read(ctx, conn, &d); err != nil {
			return
		}

		switch d.Type {
		case "join":
			h.handleJoin(ctx, conn, sess, &d)
		default:
			// Unknown directives are ignored, not fatal.
		}
	}
}

func (h *LiveHandler) handleJoin(ctx context.Context, conn *websocket.Conn, sess *bus.Session, d *directive) {
	var err error
	switch d.Role {
	case "user":
		if vErr := middleware.ValidateUserID(d.UserID); vErr != nil {
			h.writeAck(ctx, conn, ack{Type: "error", Error: vErr.Error()})
			return
		}
		err = h.hub.JoinUser(sess, d.UserID)
	case "admin":
		if d.Password != h.adminPassword {
			h.writeAck(ctx, conn, ack{Type: "error", Error: "invalid admin password"})
			return
		}
		err = h.hub.JoinAdmin(sess)
	default:
		h.writeAck(ctx, conn, ack{Type: "error", Error: "unknown role"})
		return
	}

	if err != nil {
		h.writeAck(ctx, conn, ack{Type: "error", Error: err.Error()})
		return
	}

	h.logger.Info("live session joined", zap.String("role", sess.Role()))
	h.writeAck(ctx, conn, ack{Type: "joined"})
}

func (h *LiveHandler) writeAck(ctx context.Context, conn *websocket.Conn, a ack) {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(writeCtx, conn, a); err != nil {
		h.logger.Warn("failed to write live-channel ack", zap.Error(err))
	}
}
