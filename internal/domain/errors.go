package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrClientNotFound is returned when a client registration does not exist
	ErrClientNotFound = errors.New("client not found")

	// ErrInvalidState is returned when the pending authorization for a state
	// nonce is absent, expired or already consumed
	ErrInvalidState = errors.New("invalid or expired state")

	// ErrInvalidGrant is returned when an authorization code or token is
	// absent, expired or already used
	ErrInvalidGrant = errors.New("invalid grant")

	// ErrClientMismatch is returned when a code or token belongs to a
	// different client than the one presenting it
	ErrClientMismatch = errors.New("grant does not belong to client")

	// ErrUpstreamRejected is returned when the upstream identity provider
	// rejected the code exchange
	ErrUpstreamRejected = errors.New("upstream provider rejected the authorization")

	// ErrUpstreamUnavailable is returned when the upstream identity provider
	// could not be reached or returned a malformed response
	ErrUpstreamUnavailable = errors.New("upstream provider unavailable")

	// ErrInvalidCodeChallenge is returned when the PKCE verifier does not
	// match the stored challenge
	ErrInvalidCodeChallenge = errors.New("invalid code challenge")

	// ErrInvalidCodeChallengeMethod is returned for unsupported PKCE methods
	ErrInvalidCodeChallengeMethod = errors.New("invalid code challenge method")

	// ErrInternal is returned when there is an internal server error
	ErrInternal = errors.New("internal server error")
)

// UpstreamError carries the error code and description the upstream identity
// provider returned for a code exchange. It matches ErrUpstreamRejected under
// errors.Is.
type UpstreamError struct {
	Code        string
	Description string
}

func (e *UpstreamError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("upstream error %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("upstream error %s", e.Code)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamRejected
}
