package port

import (
	"errors"
	"fmt"
)

// Sentinel errors used across ports.
var (
	// Credential errors surfaced by the token codec and the auth gate.
	ErrMalformedCredential = errors.New("invalid token")
	ErrExpiredCredential   = errors.New("token expired")
	ErrUpstreamTokenBad    = errors.New("github token is no longer valid")

	// Remote API errors, one per failure kind the client can report.
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("rate limit exceeded or access denied")
	ErrTimeout   = errors.New("github api request timed out")
	ErrTransport = errors.New("github api request failed")

	// Request-shape problems (participant bounds, malformed bodies).
	ErrValidation = errors.New("validation failed")
)

// UpstreamError is returned for non-2xx GitHub responses that don't map to
// a more specific sentinel. It keeps the upstream status so handlers can
// relay it.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github api error: %d - %s", e.StatusCode, e.Body)
}
