package auth

import (
	"net/http"
	"strings"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	httperrors "github.com/ipede/oauth-proxy-service/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// Middleware validates bearer tokens by provider lookup and makes the grant
// available on the request context
type Middleware struct {
	provider domain.OAuthProvider
	logger   *zap.Logger
}

// NewMiddleware creates a new bearer token middleware
func NewMiddleware(provider domain.OAuthProvider, logger *zap.Logger) *Middleware {
	return &Middleware{provider: provider, logger: logger}
}

// Authenticator rejects requests without a valid unexpired access token
func (m *Middleware) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="oauth-proxy"`)
			httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "missing bearer token", http.StatusUnauthorized)
			return
		}

		grant, err := m.provider.LoadAccessToken(r.Context(), token)
		if err != nil {
			m.logger.Debug("Bearer token rejected", zap.Error(err))
			w.Header().Set("WWW-Authenticate", `Bearer realm="oauth-proxy", error="invalid_token"`)
			httperrors.RespondWithError(w, httperrors.ErrCodeInvalidGrant, "invalid or expired access token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(domain.WithGrant(r.Context(), grant)))
	})
}

func extractBearer(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
