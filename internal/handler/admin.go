package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wavechat-ai/wavechat-server/internal/model"
	"github.com/wavechat-ai/wavechat-server/internal/service"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
)

// AdminHandler handles the admin endpoints.
type AdminHandler struct {
	chats    *service.ChatService
	settings *service.SettingsService
	logger   *logger.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(chats *service.ChatService, settings *service.SettingsService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		chats:    chats,
		settings: settings,
		logger:   log,
	}
}

// GetSettings handles GET /admin/settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		requestLogger(h.logger, r).Error("failed to get settings", zap.Error(err))
		writeServiceError(w, err, "failed to get settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /admin/settings
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.settings.Update(r.Context(), &req)
	if err != nil {
		requestLogger(h.logger, r).Error("failed to update settings", zap.Error(err))
		writeServiceError(w, err, "failed to update settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// ListChats handles GET /admin/chats
func (h *AdminHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chats.ListAll(r.Context())
	if err != nil {
		requestLogger(h.logger, r).Error("failed to list chats", zap.Error(err))
		writeServiceError(w, err, "failed to list chats")
		return
	}

	writeJSON(w, http.StatusOK, chats)
}

// GetChat handles GET /admin/chats/:id
func (h *AdminHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chat, err := h.chats.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "failed to get chat")
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

// Reply handles POST /admin/chats/:id/reply
func (h *AdminHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req model.AdminReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.chats.AdminReply(r.Context(), chi.URLParam(r, "id"), req.Message); err != nil {
		requestLogger(h.logger, r).Error("failed to send admin reply", zap.Error(err))
		writeServiceError(w, err, "failed to send reply")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ToggleAutoReply handles PUT /admin/chats/:id/toggle-auto-reply
func (h *AdminHandler) ToggleAutoReply(w http.ResponseWriter, r *http.Request) {
	var req model.ToggleAutoReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	disabled, err := h.chats.SetAutoReply(r.Context(), chi.URLParam(r, "id"), req.Disabled)
	if err != nil {
		requestLogger(h.logger, r).Error("failed to toggle auto-reply", zap.Error(err))
		writeServiceError(w, err, "failed to toggle auto-reply")
		return
	}

	writeJSON(w, http.StatusOK, model.ToggleAutoReplyResponse{
		Success:           true,
		AutoReplyDisabled: disabled,
	})
}

// DeleteChat handles DELETE /admin/chats/:id
func (h *AdminHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.chats.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "failed to delete chat")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
