package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode classifies a failed request to the session backend
type ErrorCode string

const (
	CodeAlreadyPlayed   ErrorCode = "ALREADY_PLAYED"
	CodeAlreadyQueued   ErrorCode = "ALREADY_QUEUED"
	CodeUserQueueLimit  ErrorCode = "USER_QUEUE_LIMIT"
	CodeAlreadyVoted    ErrorCode = "ALREADY_VOTED"
	CodeRateLimited     ErrorCode = "RATE_LIMIT"
	CodeNoActiveSession ErrorCode = "NO_ACTIVE_SESSION"
	CodeNoPlaylists     ErrorCode = "NO_PLAYLISTS"
	CodeUnknown         ErrorCode = "UNKNOWN"
)

// ErrCooldownActive is returned when a rate-limited action is still counting down locally
var ErrCooldownActive = errors.New("action is cooling down")

// APIError is a request failure surfaced to the calling UI action.
// It is never retried automatically.
type APIError struct {
	Code    ErrorCode
	Message string
	// RetryAfter is set for CodeRateLimited when the backend supplied it
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// RetryAfterSeconds returns the cooldown in whole seconds, or 0
func (e *APIError) RetryAfterSeconds() int {
	return int(e.RetryAfter / time.Second)
}

// NewAPIError builds an APIError for a known code
func NewAPIError(code ErrorCode, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// IsCode reports whether err is an APIError carrying code
func IsCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
