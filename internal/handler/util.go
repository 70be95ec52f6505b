package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wavechat-ai/wavechat-server/internal/middleware"
	"github.com/wavechat-ai/wavechat-server/internal/service"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
)

// requestLogger returns a child logger carrying the request's correlation id
// so handler errors can be matched to the access log line.
func requestLogger(log *logger.Logger, r *http.Request) *logger.Logger {
	return log.WithContext(middleware.GetCorrelationID(r.Context()))
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeServiceError maps a service error to the HTTP taxonomy: validation
// failures are 400, unknown ids are 404, everything else is a generic 500
// with no internal detail leaked to the client.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "chat not found")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
