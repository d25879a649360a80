package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	httperrors "github.com/ipede/oauth-proxy-service/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// AuthorizeHandler starts the authorization flow: it validates the client
// and redirect URI, records the pending authorization and redirects the user
// agent to the upstream provider
func (h *Handler) AuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	clientID := query.Get("client_id")
	if clientID == "" {
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "client_id is required", http.StatusBadRequest)
		return
	}

	client, err := h.provider.GetClient(r.Context(), clientID)
	if err != nil {
		h.logger.Error("Authorize for unknown client", zap.String("client_id", clientID))
		httperrors.RespondWithDomainError(w, err)
		return
	}

	redirectURI, explicit, err := resolveRedirectURI(client, query.Get("redirect_uri"))
	if err != nil {
		h.logger.Error("Redirect URI rejected",
			zap.String("client_id", clientID),
			zap.Error(err))
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest)
		return
	}

	params := domain.AuthorizationParams{
		RedirectURI:         redirectURI,
		RedirectURIExplicit: explicit,
		CodeChallenge:       query.Get("code_challenge"),
		CodeChallengeMethod: query.Get("code_challenge_method"),
		Scopes:              strings.Fields(query.Get("scope")),
		State:               query.Get("state"),
	}
	if params.CodeChallenge != "" && params.CodeChallengeMethod == "" {
		params.CodeChallengeMethod = domain.CodeChallengeMethodPlain
	}

	upstreamURL, err := h.provider.Authorize(r.Context(), client, params)
	if err != nil {
		h.logger.Error("Failed to start authorization", zap.Error(err))
		httperrors.RespondWithDomainError(w, err)
		return
	}

	http.Redirect(w, r, upstreamURL, http.StatusFound)
}

// CallbackHandler receives the upstream redirect, finishes the delegation
// and sends the user agent back to the original client
func (h *Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "code and state are required", http.StatusBadRequest)
		return
	}

	redirect, err := h.provider.HandleUpstreamCallback(r.Context(), code, state)
	if err != nil {
		h.logger.Error("Upstream callback failed", zap.Error(err))
		httperrors.RespondWithDomainError(w, err)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}

// resolveRedirectURI validates an explicitly supplied redirect URI against
// the registration, or falls back to the sole registered URI
func resolveRedirectURI(client *domain.ClientRegistration, requested string) (string, bool, error) {
	if requested == "" {
		if len(client.RedirectURIs) != 1 {
			return "", false, errRedirectURIRequired
		}
		return client.RedirectURIs[0], false, nil
	}

	u, err := url.Parse(requested)
	if err != nil || !u.IsAbs() {
		return "", false, errRedirectURIMalformed
	}
	for _, registered := range client.RedirectURIs {
		if registered == requested {
			return requested, true, nil
		}
	}
	return "", false, errRedirectURINotRegistered
}
