package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSecretNotFound = errors.New("secret not found")

	ErrNotPersisted = errors.New("change not persisted")

	ErrUnknownTool          = errors.New("unknown tool")
	ErrInvalidToolArguments = errors.New("invalid tool arguments")

	ErrInvalidConfig = errors.New("invalid config")

	ErrMissingCredentials = errors.New("missing model credentials")
	ErrRemoteUnavailable  = errors.New("remote model unavailable")
	ErrRemoteTimeout      = errors.New("remote model timed out")
	ErrRemoteStatus       = errors.New("remote model returned an error status")
	ErrRateLimited        = errors.New("remote model rate limited")
	ErrMalformedReply     = errors.New("remote model reply malformed")
	ErrEmptyReply         = errors.New("remote model reply empty")
	ErrTooManyToolRounds  = errors.New("too many tool rounds")

	ErrSearchFailed = errors.New("web search failed")
)

// StatusError carries the HTTP status of a failed remote call.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Err, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}
