package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// ConnState is the live connection's lifecycle state.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Default reconnection policy: a small fixed number of attempts with fixed
// backoff. A manual Close suppresses retry entirely.
const (
	DefaultMaxRetries = 5
	DefaultRetryDelay = 3 * time.Second
)

// LiveOptions configures a live channel connection.
type LiveOptions struct {
	// URL is the WebSocket endpoint, e.g. "ws://host:8080/ws".
	URL string

	// Role is "user" or "admin".
	Role string

	// UserID identifies the user room to join. Required when Role is "user".
	UserID string

	// Password is the shared admin secret. Required when Role is "admin".
	Password string

	// OnEvent is invoked for every event pushed to a joined room.
	OnEvent func(event Event)

	// OnStateChange is invoked on every lifecycle transition.
	OnStateChange func(state ConnState)

	// MaxRetries and RetryDelay bound reconnection after unexpected drops.
	// Zero values select the defaults.
	MaxRetries int
	RetryDelay time.Duration
}

// LiveConn is a live channel connection with automatic bounded reconnection.
type LiveConn struct {
	opts LiveOptions

	mu     sync.Mutex
	state  ConnState
	conn   *websocket.Conn
	closed bool

	done chan struct{}
}

// DialLive opens a live channel connection and starts its run loop. The
// returned connection reports events through opts.OnEvent until Close is
// called or the retry budget is exhausted.
func DialLive(ctx context.Context, opts LiveOptions) (*LiveConn, error) {
	if opts.URL == "" {
		return nil, errors.New("live channel URL is required")
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	c := &LiveConn{
		opts: opts,
		done: make(chan struct{}),
	}
	go c.run(ctx)
	return c, nil
}

// State returns the current lifecycle state.
func (c *LiveConn) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close disconnects and suppresses any further reconnection attempts.
func (c *LiveConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "client closed")
	}
}

// Done is closed when the run loop has exited.
func (c *LiveConn) Done() <-chan struct{} {
	return c.done
}

func (c *LiveConn) setState(state ConnState) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	c.mu.Unlock()
	if changed && c.opts.OnStateChange != nil {
		c.opts.OnStateChange(state)
	}
}

func (c *LiveConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// run drives the connection state machine:
// disconnected -> connecting -> connected (joined) -> disconnected, with up
// to MaxRetries consecutive reconnection attempts at fixed RetryDelay
// intervals. A connection that joins successfully refills the retry budget,
// so each drop gets its own bounded recovery window no matter how long the
// connection has been up.
func (c *LiveConn) run(ctx context.Context) {
	defer close(c.done)
	defer c.setState(StateDisconnected)

	attempts := 0
	for {
		if c.isClosed() || ctx.Err() != nil {
			return
		}

		c.setState(StateConnecting)

		connected, err := c.connectAndServe(ctx)
		if c.isClosed() || ctx.Err() != nil {
			return
		}
		_ = err

		if connected {
			attempts = 0
		}
		attempts++
		if attempts > c.opts.MaxRetries {
			return
		}

		c.setState(StateDisconnected)
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.opts.RetryDelay):
		}
	}
}

// connectAndServe dials, joins, and pumps events until the connection drops.
// It reports whether the connection got as far as joining, which is what
// refills the reconnect budget in run.
func (c *LiveConn) connectAndServe(ctx context.Context) (bool, error) {
	conn, _, err := websocket.Dial(ctx, c.opts.URL, nil)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "client closed")
		return false, nil
	}
	c.conn = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close(websocket.StatusInternalError, "")
	}()

	join := map[string]string{
		"type":   "join",
		"role":   c.opts.Role,
		"userId": c.opts.UserID,
	}
	if c.opts.Password != "" {
		join["password"] = c.opts.Password
	}

	joinCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = wsjson.Write(joinCtx, conn, join)
	cancel()
	if err != nil {
		return false, err
	}

	c.setState(StateConnected)

	for {
		var event Event
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			return true, err
		}
		switch event.Type {
		case EventNewMessage, EventAdminNewMessage, EventListChanged:
			if c.opts.OnEvent != nil {
				c.opts.OnEvent(event)
			}
		default:
			// Control acks ("joined", "error") and unknown types are not
			// room events.
		}
	}
}
