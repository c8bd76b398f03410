package application

import (
	"errors"

	"github.com/bnema/neruai/internal/domain"
)

// UserMessage maps an exchange error to the persona's canned reply. It never
// includes the error text itself.
func (o *Orchestrator) UserMessage(err error) string {
	return UserFacingMessage(o.opts.Persona, err)
}

func UserFacingMessage(persona domain.Persona, err error) string {
	m := persona.WithDefaults().Messages

	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrMissingCredentials):
		return m.MissingCredentials
	case errors.Is(err, domain.ErrRateLimited):
		return m.RateLimited
	case errors.Is(err, domain.ErrRemoteTimeout):
		return m.Timeout
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return m.Unavailable
	case errors.Is(err, domain.ErrRemoteStatus):
		return m.RemoteError
	case errors.Is(err, domain.ErrMalformedReply):
		return m.Malformed
	case errors.Is(err, domain.ErrEmptyReply):
		return m.EmptyReply
	case errors.Is(err, domain.ErrTooManyToolRounds):
		return m.TooManyToolRounds
	default:
		return m.Generic
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrRemoteTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrRemoteStatus):
		return "remote_status"
	case errors.Is(err, domain.ErrMalformedReply):
		return "malformed"
	case errors.Is(err, domain.ErrEmptyReply):
		return "empty"
	case errors.Is(err, domain.ErrTooManyToolRounds):
		return "too_many_tool_rounds"
	default:
		return "error"
	}
}
