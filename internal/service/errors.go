// Package service provides business logic for the chat platform.
package service

import (
	"errors"

	"github.com/wavechat-ai/wavechat-server/internal/store"
)

// ErrValidation marks a request rejected for a missing or invalid field.
// Handlers map it to HTTP 400.
var ErrValidation = errors.New("validation failed")

// ErrNotFound marks a lookup of an unknown record id. Handlers map it to
// HTTP 404. It matches the store's sentinel so lookups wrap transparently.
var ErrNotFound = store.ErrNotFound
