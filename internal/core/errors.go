package core

import "errors"

// Error codes carried on wire-level error notices.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeAlreadyInRoom  = "already_in_room"
	ErrCodeNotInRoom      = "not_in_room"
	ErrCodeDecodeFailed   = "decode_failed"
	ErrCodeMessageTooLong = "message_too_long"
)

var (
	ErrAlreadyInRoom = errors.New("already in a room")
	ErrNotInRoom     = errors.New("not in a room")
	ErrBadFilename   = errors.New("invalid filename")
	ErrBadPayload    = errors.New("invalid base64 payload")
	ErrEmptyPayload  = errors.New("empty payload")
	ErrTooLarge      = errors.New("payload exceeds size limit")
)

// RelayError wraps a code and human-readable message.
type RelayError struct {
	Code    string
	Message string
}

func (e *RelayError) Error() string {
	return e.Message
}

func relayError(code, msg string) *RelayError {
	return &RelayError{Code: code, Message: msg}
}
