package application

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	"go.uber.org/zap"
)

// ProviderService implements domain.OAuthProvider by proxying end-user
// authentication to the upstream identity provider while presenting a
// standard OAuth2 authorization server to the client.
type ProviderService struct {
	clients   domain.ClientRepository
	pending   domain.PendingAuthRepository
	codes     domain.AuthorizationCodeRepository
	tokens    domain.TokenRepository
	upstream  domain.UpstreamClient
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewProviderService creates a new proxy provider from its stores and the
// upstream exchange client
func NewProviderService(
	clients domain.ClientRepository,
	pending domain.PendingAuthRepository,
	codes domain.AuthorizationCodeRepository,
	tokens domain.TokenRepository,
	upstream domain.UpstreamClient,
	accessTTL time.Duration,
	logger *zap.Logger,
) *ProviderService {
	return &ProviderService{
		clients:   clients,
		pending:   pending,
		codes:     codes,
		tokens:    tokens,
		upstream:  upstream,
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// GetClient returns the registration for a client ID
func (s *ProviderService) GetClient(ctx context.Context, clientID string) (*domain.ClientRegistration, error) {
	return s.clients.FindByID(ctx, clientID)
}

// RegisterClient stores a client registration, overwriting any prior one
func (s *ProviderService) RegisterClient(ctx context.Context, client *domain.ClientRegistration) error {
	return s.clients.Save(ctx, client)
}

// Authorize stores a pending authorization under a fresh upstream state
// nonce and returns the upstream authorize URL. No network call is made.
func (s *ProviderService) Authorize(ctx context.Context, client *domain.ClientRegistration, params domain.AuthorizationParams) (string, error) {
	s.logger.Debug("Starting authorization",
		zap.String("client_id", client.ClientID),
		zap.Strings("scopes", params.Scopes))

	state, err := domain.NewOpaqueToken()
	if err != nil {
		s.logger.Error("Failed to generate upstream state", zap.Error(err))
		return "", domain.ErrInternal
	}

	err = s.pending.Put(ctx, state, &domain.PendingAuthorization{
		ClientID:            client.ClientID,
		RedirectURI:         params.RedirectURI,
		RedirectURIExplicit: params.RedirectURIExplicit,
		CodeChallenge:       params.CodeChallenge,
		CodeChallengeMethod: params.CodeChallengeMethod,
		Scopes:              params.Scopes,
		ClientState:         params.State,
	})
	if err != nil {
		s.logger.Error("Failed to store pending authorization", zap.Error(err))
		return "", domain.ErrInternal
	}

	return s.upstream.AuthorizeURL(state), nil
}

// HandleUpstreamCallback consumes the pending authorization for state,
// exchanges the upstream code and returns the redirect target for the
// original client. The pending entry is taken before the network call, so no
// store lock is held while the exchange is in flight; a failed exchange
// leaves the state consumed and the client must restart the flow.
func (s *ProviderService) HandleUpstreamCallback(ctx context.Context, code, state string) (string, error) {
	pending, err := s.pending.Take(ctx, state)
	if err != nil {
		s.logger.Error("Unknown or reused upstream state", zap.Error(err))
		return "", domain.ErrInvalidState
	}

	if _, err := s.upstream.Exchange(ctx, code); err != nil {
		return "", err
	}

	authCode, err := s.codes.Issue(ctx, pending)
	if err != nil {
		s.logger.Error("Failed to issue authorization code",
			zap.String("client_id", pending.ClientID),
			zap.Error(err))
		return "", domain.ErrInternal
	}

	redirect, err := buildRedirectURI(pending.RedirectURI, authCode, pending.ClientState)
	if err != nil {
		s.logger.Error("Malformed client redirect URI",
			zap.String("client_id", pending.ClientID),
			zap.Error(err))
		return "", domain.ErrInternal
	}

	s.logger.Info("Authorization code issued", zap.String("client_id", pending.ClientID))
	return redirect, nil
}

// LoadAuthorizationCode is a read-only lookup of an issued code
func (s *ProviderService) LoadAuthorizationCode(ctx context.Context, client *domain.ClientRegistration, code string) (*domain.AuthorizationCode, error) {
	grant, err := s.codes.Load(ctx, code)
	if err != nil {
		return nil, err
	}
	if grant.ClientID != client.ClientID {
		return nil, domain.ErrClientMismatch
	}
	return grant, nil
}

// ExchangeAuthorizationCode consumes the code and issues a token pair scoped
// to the code's scopes
func (s *ProviderService) ExchangeAuthorizationCode(ctx context.Context, client *domain.ClientRegistration, code string) (*domain.TokenPair, error) {
	grant, err := s.codes.Load(ctx, code)
	if err != nil {
		s.logger.Error("Authorization code lookup failed", zap.Error(err))
		return nil, domain.ErrInvalidGrant
	}
	if grant.ClientID != client.ClientID {
		s.logger.Error("Authorization code presented by wrong client",
			zap.String("client_id", client.ClientID))
		return nil, domain.ErrClientMismatch
	}

	// single-use: a concurrent exchange of the same code loses here
	if err := s.codes.Consume(ctx, code); err != nil {
		return nil, domain.ErrInvalidGrant
	}

	access, refresh, err := s.tokens.IssuePair(ctx, client.ClientID, grant.Scopes)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Token pair issued", zap.String("client_id", client.ClientID))
	return s.tokenResponse(access, refresh), nil
}

// LoadRefreshToken returns the refresh grant if it belongs to the client
func (s *ProviderService) LoadRefreshToken(ctx context.Context, client *domain.ClientRegistration, token string) (*domain.RefreshToken, error) {
	return s.tokens.LoadRefresh(ctx, token, client.ClientID)
}

// ExchangeRefreshToken rotates the refresh token and issues a new pair.
// Non-empty requested scopes override the stored ones.
func (s *ProviderService) ExchangeRefreshToken(ctx context.Context, client *domain.ClientRegistration, token string, scopes []string) (*domain.TokenPair, error) {
	access, refresh, err := s.tokens.Rotate(ctx, token, client.ClientID, scopes)
	if err != nil {
		s.logger.Error("Refresh token rotation failed",
			zap.String("client_id", client.ClientID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Refresh token rotated", zap.String("client_id", client.ClientID))
	return s.tokenResponse(access, refresh), nil
}

// LoadAccessToken validates a bearer token by store lookup
func (s *ProviderService) LoadAccessToken(ctx context.Context, token string) (*domain.AccessToken, error) {
	return s.tokens.LoadAccess(ctx, token)
}

// Revoke removes the tagged credential; unknown tokens are a no-op
func (s *ProviderService) Revoke(ctx context.Context, kind domain.TokenKind, token string) error {
	return s.tokens.Revoke(ctx, kind, token)
}

func (s *ProviderService) tokenResponse(access *domain.AccessToken, refresh *domain.RefreshToken) *domain.TokenPair {
	return &domain.TokenPair{
		AccessToken:  access.Token,
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
		RefreshToken: refresh.Token,
		Scope:        strings.Join(access.Scopes, " "),
	}
}

// buildRedirectURI appends the issued code and the echoed client state to
// the client's redirect URI, preserving any query it already carries
func buildRedirectURI(redirectURI, code, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
