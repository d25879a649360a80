package handlers

import "errors"

// redirect URI resolution failures rendered as invalid_request
var (
	errRedirectURIRequired      = errors.New("redirect_uri is required when multiple URIs are registered")
	errRedirectURIMalformed     = errors.New("redirect_uri must be an absolute URI")
	errRedirectURINotRegistered = errors.New("redirect_uri is not registered for this client")
)

// TokenInfoResponse describes the grant behind a validated bearer token
type TokenInfoResponse struct {
	ClientID  string `json:"client_id"`
	Scope     string `json:"scope"`
	ExpiresAt int64  `json:"expires_at"`
}
