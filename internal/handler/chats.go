// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wavechat-ai/wavechat-server/internal/middleware"
	"github.com/wavechat-ai/wavechat-server/internal/model"
	"github.com/wavechat-ai/wavechat-server/internal/service"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
)

// ChatHandler handles the public chat endpoints.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// Submit handles POST /chat
func (h *ChatHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		requestLogger(h.logger, r).Error("failed to process message", zap.Error(err))
		writeServiceError(w, err, "failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /chat/:id
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "id")

	chat, err := h.service.Get(r.Context(), chatID)
	if err != nil {
		writeServiceError(w, err, "failed to get chat")
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

// ListByUser handles GET /chat/user/:userId
func (h *ChatHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	summaries, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		requestLogger(h.logger, r).Error("failed to list user chats", zap.Error(err))
		writeServiceError(w, err, "failed to list chats")
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// ListRecent handles GET /chat/
func (h *ChatHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListRecent(r.Context())
	if err != nil {
		requestLogger(h.logger, r).Error("failed to list recent chats", zap.Error(err))
		writeServiceError(w, err, "failed to list chats")
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}
