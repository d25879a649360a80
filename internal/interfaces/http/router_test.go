package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type staticProvider struct {
	domain.OAuthProvider
	grant *domain.AccessToken
}

func (p *staticProvider) LoadAccessToken(ctx context.Context, token string) (*domain.AccessToken, error) {
	if p.grant != nil && token == p.grant.Token {
		return p.grant, nil
	}
	return nil, domain.ErrInvalidGrant
}

func (p *staticProvider) GetClient(ctx context.Context, clientID string) (*domain.ClientRegistration, error) {
	return nil, domain.ErrClientNotFound
}

func TestRouter(t *testing.T) {
	provider := &staticProvider{grant: &domain.AccessToken{
		Token:     "access-1",
		ClientID:  "client-a",
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	router := NewRouter(provider, zap.NewNop())

	t.Run("health endpoints", func(t *testing.T) {
		for _, path := range []string{"/health", "/health/live", "/health/ready"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})

	t.Run("protected routes require a bearer token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth/tokeninfo", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/oauth/tokeninfo", nil)
		req.Header.Set("Authorization", "Bearer access-1")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
