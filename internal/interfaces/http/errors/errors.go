package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ipede/oauth-proxy-service/internal/domain"
)

// ErrorResponse is the OAuth2 error body from RFC 6749
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// OAuth2 error codes
const (
	ErrCodeInvalidRequest         = "invalid_request"
	ErrCodeInvalidClient          = "invalid_client"
	ErrCodeInvalidGrant           = "invalid_grant"
	ErrCodeUnsupportedGrantType   = "unsupported_grant_type"
	ErrCodeAccessDenied           = "access_denied"
	ErrCodeServerError            = "server_error"
	ErrCodeTemporarilyUnavailable = "temporarily_unavailable"
)

// RespondWithError sends a standardized OAuth2 error response
func RespondWithError(w http.ResponseWriter, code, description string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:       code,
		Description: description,
	})
}

// RespondWithDomainError maps a typed provider failure to its OAuth2 error
// response
func RespondWithDomainError(w http.ResponseWriter, err error) {
	var upstreamErr *domain.UpstreamError
	switch {
	case errors.As(err, &upstreamErr):
		RespondWithError(w, ErrCodeAccessDenied, upstreamErr.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		RespondWithError(w, ErrCodeTemporarilyUnavailable, "upstream provider unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, domain.ErrInvalidState):
		RespondWithError(w, ErrCodeInvalidRequest, "invalid or expired state parameter", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidGrant), errors.Is(err, domain.ErrClientMismatch):
		RespondWithError(w, ErrCodeInvalidGrant, "grant is invalid, expired or revoked", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidCodeChallenge), errors.Is(err, domain.ErrInvalidCodeChallengeMethod):
		RespondWithError(w, ErrCodeInvalidGrant, "PKCE verification failed", http.StatusBadRequest)
	case errors.Is(err, domain.ErrClientNotFound):
		RespondWithError(w, ErrCodeInvalidClient, "unknown client", http.StatusUnauthorized)
	default:
		RespondWithError(w, ErrCodeServerError, "internal server error", http.StatusInternalServerError)
	}
}
