package devreload_errors

import "errors"

// Common errors
var (
	ErrAlreadyStarted = errors.New("already started")
	ErrInvalidInput   = errors.New("invalid input")
	ErrRateLimited    = errors.New("rate limited")
	ErrHubClosed      = errors.New("hub closed")
	ErrMissingCommand = errors.New("missing command")
)
