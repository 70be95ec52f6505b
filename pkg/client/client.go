// Package client is a Go client for the chat platform: REST calls, the
// WebSocket live channel with bounded reconnection, and the reconciler that
// merges live events with polled state without duplicating messages.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the chat platform HTTP API.
type Client struct {
	baseURL       string
	http          *http.Client
	adminPassword string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAdminPassword sets the shared secret sent on admin calls.
func WithAdminPassword(password string) Option {
	return func(c *Client) { c.adminPassword = password }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, admin bool) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("X-Admin-Password", c.adminPassword)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Submit sends a user message. ChatID and UserID may be empty on the first
// message; the server assigns both.
func (c *Client) Submit(ctx context.Context, chatID, userID, message string) (*SubmitResponse, error) {
	req := SubmitRequest{ChatID: chatID, UserID: userID, Message: message}
	var resp SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/chat", &req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat fetches a chat with its full message history.
func (c *Client) Chat(ctx context.Context, chatID string) (*Chat, error) {
	var chat Chat
	if err := c.do(ctx, http.MethodGet, "/chat/"+chatID, nil, &chat, false); err != nil {
		return nil, err
	}
	return &chat, nil
}

// UserChats fetches a user's chat summaries, most recent first.
func (c *Client) UserChats(ctx context.Context, userID string) ([]ChatSummary, error) {
	var summaries []ChatSummary
	if err := c.do(ctx, http.MethodGet, "/chat/user/"+userID, nil, &summaries, false); err != nil {
		return nil, err
	}
	return summaries, nil
}

// RecentChats fetches the latest chat summaries across all users.
func (c *Client) RecentChats(ctx context.Context) ([]ChatSummary, error) {
	var summaries []ChatSummary
	if err := c.do(ctx, http.MethodGet, "/chat/", nil, &summaries, false); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Settings fetches the AI behavior settings. Admin only.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var settings Settings
	if err := c.do(ctx, http.MethodGet, "/admin/settings", nil, &settings, true); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings merges the given fields into the settings. Admin only.
func (c *Client) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*Settings, error) {
	var settings Settings
	if err := c.do(ctx, http.MethodPut, "/admin/settings", req, &settings, true); err != nil {
		return nil, err
	}
	return &settings, nil
}

// AdminChats fetches every chat, messages included. Admin only.
func (c *Client) AdminChats(ctx context.Context) ([]Chat, error) {
	var chats []Chat
	if err := c.do(ctx, http.MethodGet, "/admin/chats", nil, &chats, true); err != nil {
		return nil, err
	}
	return chats, nil
}

// AdminChat fetches one chat. Admin only.
func (c *Client) AdminChat(ctx context.Context, chatID string) (*Chat, error) {
	var chat Chat
	if err := c.do(ctx, http.MethodGet, "/admin/chats/"+chatID, nil, &chat, true); err != nil {
		return nil, err
	}
	return &chat, nil
}

// AdminReply injects a reply under the assistant role. Admin only.
func (c *Client) AdminReply(ctx context.Context, chatID, message string) error {
	req := AdminReplyRequest{Message: message}
	return c.do(ctx, http.MethodPost, "/admin/chats/"+chatID+"/reply", &req, nil, true)
}

// SetAutoReply toggles auto-reply for a chat. Admin only.
func (c *Client) SetAutoReply(ctx context.Context, chatID string, disabled bool) (bool, error) {
	req := ToggleAutoReplyRequest{Disabled: disabled}
	var resp ToggleAutoReplyResponse
	if err := c.do(ctx, http.MethodPut, "/admin/chats/"+chatID+"/toggle-auto-reply", &req, &resp, true); err != nil {
		return false, err
	}
	return resp.AutoReplyDisabled, nil
}

// DeleteChat removes a chat permanently. Admin only.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/chats/"+chatID, nil, nil, true)
}
