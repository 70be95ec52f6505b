package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidateMessageContent validates inbound message text.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("message is required")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateUserID validates a user identity token.
func ValidateUserID(id string) error {
	if len(id) == 0 {
		return errors.New("user ID cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("user ID exceeds maximum length")
	}
	return nil
}
