package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOAuthProvider is a mock implementation of domain.OAuthProvider
type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) GetClient(ctx context.Context, clientID string) (*domain.ClientRegistration, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientRegistration), args.Error(1)
}

func (m *MockOAuthProvider) RegisterClient(ctx context.Context, client *domain.ClientRegistration) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockOAuthProvider) Authorize(ctx context.Context, client *domain.ClientRegistration, params domain.AuthorizationParams) (string, error) {
	args := m.Called(ctx, client, params)
	return args.String(0), args.Error(1)
}

func (m *MockOAuthProvider) HandleUpstreamCallback(ctx context.Context, code, state string) (string, error) {
	args := m.Called(ctx, code, state)
	return args.String(0), args.Error(1)
}

func (m *MockOAuthProvider) LoadAuthorizationCode(ctx context.Context, client *domain.ClientRegistration, code string) (*domain.AuthorizationCode, error) {
	args := m.Called(ctx, client, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthorizationCode), args.Error(1)
}

func (m *MockOAuthProvider) ExchangeAuthorizationCode(ctx context.Context, client *domain.ClientRegistration, code string) (*domain.TokenPair, error) {
	args := m.Called(ctx, client, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *MockOAuthProvider) LoadRefreshToken(ctx context.Context, client *domain.ClientRegistration, token string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, client, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *MockOAuthProvider) ExchangeRefreshToken(ctx context.Context, client *domain.ClientRegistration, token string, scopes []string) (*domain.TokenPair, error) {
	args := m.Called(ctx, client, token, scopes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *MockOAuthProvider) LoadAccessToken(ctx context.Context, token string) (*domain.AccessToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessToken), args.Error(1)
}

func (m *MockOAuthProvider) Revoke(ctx context.Context, kind domain.TokenKind, token string) error {
	args := m.Called(ctx, kind, token)
	return args.Error(0)
}

func TestAuthenticator(t *testing.T) {
	grant := &domain.AccessToken{
		Token:     "access-1",
		ClientID:  "client-a",
		Scopes:    []string{"read"},
		ExpiresAt: time.Now().Add(time.Hour),
	}

	tests := []struct {
		name          string
		authorization string
		setupMock     func(*MockOAuthProvider)
		wantStatus    int
		wantChallenge string
	}{
		{
			name:          "valid token",
			authorization: "Bearer access-1",
			setupMock: func(p *MockOAuthProvider) {
				p.On("LoadAccessToken", mock.Anything, "access-1").Return(grant, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:          "lowercase scheme",
			authorization: "bearer access-1",
			setupMock: func(p *MockOAuthProvider) {
				p.On("LoadAccessToken", mock.Anything, "access-1").Return(grant, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:          "missing header",
			authorization: "",
			setupMock:     func(p *MockOAuthProvider) {},
			wantStatus:    http.StatusUnauthorized,
			wantChallenge: `Bearer realm="oauth-proxy"`,
		},
		{
			name:          "wrong scheme",
			authorization: "Basic Zm9vOmJhcg==",
			setupMock:     func(p *MockOAuthProvider) {},
			wantStatus:    http.StatusUnauthorized,
			wantChallenge: `Bearer realm="oauth-proxy"`,
		},
		{
			name:          "expired or unknown token",
			authorization: "Bearer stale",
			setupMock: func(p *MockOAuthProvider) {
				p.On("LoadAccessToken", mock.Anything, "stale").Return(nil, domain.ErrInvalidGrant)
			},
			wantStatus:    http.StatusUnauthorized,
			wantChallenge: `Bearer realm="oauth-proxy", error="invalid_token"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockOAuthProvider)
			tt.setupMock(provider)
			mw := NewMiddleware(provider, zap.NewNop())

			var seenGrant *domain.AccessToken
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				g, ok := domain.GetGrant(r.Context())
				require.True(t, ok)
				seenGrant = g
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/oauth/tokeninfo", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()
			mw.Authenticator(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, grant, seenGrant)
			} else {
				assert.Equal(t, tt.wantChallenge, w.Header().Get("WWW-Authenticate"))
				assert.Nil(t, seenGrant)
			}
		})
	}
}
