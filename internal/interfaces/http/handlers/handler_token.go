package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	httperrors "github.com/ipede/oauth-proxy-service/internal/interfaces/http/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenHandler handles the form-encoded token endpoint for the
// authorization_code and refresh_token grants
func (h *Handler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "malformed form body", http.StatusBadRequest)
		return
	}

	clientID := r.PostFormValue("client_id")
	if clientID == "" {
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "client_id is required", http.StatusBadRequest)
		return
	}

	client, err := h.provider.GetClient(r.Context(), clientID)
	if err != nil {
		h.logger.Error("Token request for unknown client", zap.String("client_id", clientID))
		httperrors.RespondWithDomainError(w, err)
		return
	}

	if len(client.SecretHash) > 0 {
		secret := r.PostFormValue("client_secret")
		if err := bcrypt.CompareHashAndPassword(client.SecretHash, []byte(secret)); err != nil {
			h.logger.Error("Client authentication failed", zap.String("client_id", clientID))
			w.Header().Set("WWW-Authenticate", `Basic realm="oauth-proxy"`)
			httperrors.RespondWithError(w, httperrors.ErrCodeInvalidClient, "client authentication failed", http.StatusUnauthorized)
			return
		}
	}

	grantType := r.PostFormValue("grant_type")
	h.logger.Debug("Received token request",
		zap.String("grant_type", grantType),
		zap.String("client_id", clientID))

	var pair *domain.TokenPair
	switch grantType {
	case "authorization_code":
		pair, err = h.exchangeCode(w, r, client)
	case "refresh_token":
		pair, err = h.exchangeRefresh(w, r, client)
	default:
		httperrors.RespondWithError(w, httperrors.ErrCodeUnsupportedGrantType, "unsupported grant_type", http.StatusBadRequest)
		return
	}
	if err != nil {
		// the grant helpers already rendered validation misses; typed
		// provider failures are mapped here
		if err != errResponded {
			httperrors.RespondWithDomainError(w, err)
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.respondJSON(w, http.StatusOK, pair)
}

// errResponded signals that the handler already wrote an error response
var errResponded = errors.New("response already written")

func (h *Handler) exchangeCode(w http.ResponseWriter, r *http.Request, client *domain.ClientRegistration) (*domain.TokenPair, error) {
	code := r.PostFormValue("code")
	if code == "" {
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "code is required", http.StatusBadRequest)
		return nil, errResponded
	}

	grant, err := h.provider.LoadAuthorizationCode(r.Context(), client, code)
	if err != nil {
		h.logger.Error("Authorization code rejected", zap.Error(err))
		return nil, err
	}

	if grant.CodeChallenge != "" {
		verifier := r.PostFormValue("code_verifier")
		if verifier == "" {
			httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "code_verifier is required", http.StatusBadRequest)
			return nil, errResponded
		}
		if err := domain.VerifyCodeChallenge(verifier, grant.CodeChallenge, grant.CodeChallengeMethod); err != nil {
			h.logger.Error("PKCE verification failed", zap.String("client_id", client.ClientID))
			return nil, err
		}
	}

	return h.provider.ExchangeAuthorizationCode(r.Context(), client, code)
}

func (h *Handler) exchangeRefresh(w http.ResponseWriter, r *http.Request, client *domain.ClientRegistration) (*domain.TokenPair, error) {
	refreshToken := r.PostFormValue("refresh_token")
	if refreshToken == "" {
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "refresh_token is required", http.StatusBadRequest)
		return nil, errResponded
	}

	scopes := strings.Fields(r.PostFormValue("scope"))
	return h.provider.ExchangeRefreshToken(r.Context(), client, refreshToken, scopes)
}

// RevokeHandler removes the presented credential. The token_type_hint form
// field tags which store the token belongs to; revoking an unknown token
// still answers 200 per RFC 7009.
func (h *Handler) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "malformed form body", http.StatusBadRequest)
		return
	}

	token := r.PostFormValue("token")
	if token == "" {
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "token is required", http.StatusBadRequest)
		return
	}

	kind := domain.TokenKindAccess
	if r.PostFormValue("token_type_hint") == string(domain.TokenKindRefresh) {
		kind = domain.TokenKindRefresh
	}

	if err := h.provider.Revoke(r.Context(), kind, token); err != nil {
		h.logger.Error("Revocation failed", zap.Error(err))
		httperrors.RespondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// TokenInfoHandler reports the grant behind the bearer token validated by
// the auth middleware
func (h *Handler) TokenInfoHandler(w http.ResponseWriter, r *http.Request) {
	grant, ok := domain.GetGrant(r.Context())
	if !ok {
		httperrors.RespondWithError(w, httperrors.ErrCodeServerError, "missing grant on context", http.StatusInternalServerError)
		return
	}

	h.respondJSON(w, http.StatusOK, TokenInfoResponse{
		ClientID:  grant.ClientID,
		Scope:     strings.Join(grant.Scopes, " "),
		ExpiresAt: grant.ExpiresAt.Unix(),
	})
}
