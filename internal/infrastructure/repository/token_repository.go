package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	"go.uber.org/zap"
)

// TokenRepository is an in-memory implementation of domain.TokenRepository.
// Access tokens expire accessTTL after issuance; refresh tokens carry no
// expiry and die only by rotation or explicit revocation.
type TokenRepository struct {
	mu        sync.Mutex
	access    map[string]*domain.AccessToken
	refresh   map[string]*domain.RefreshToken
	accessTTL time.Duration
	now       func() time.Time
	logger    *zap.Logger
	stop      chan struct{}
}

// NewTokenRepository creates a new in-memory token store. A positive
// sweepInterval starts a background sweep of expired access tokens.
func NewTokenRepository(accessTTL, sweepInterval time.Duration, logger *zap.Logger) *TokenRepository {
	r := &TokenRepository{
		access:    make(map[string]*domain.AccessToken),
		refresh:   make(map[string]*domain.RefreshToken),
		accessTTL: accessTTL,
		now:       time.Now,
		logger:    logger,
		stop:      make(chan struct{}),
	}
	if sweepInterval > 0 {
		go r.sweep(sweepInterval)
	}
	return r
}

// IssuePair generates and stores a fresh access/refresh token pair for the
// client with the policy expiry
func (r *TokenRepository) IssuePair(ctx context.Context, clientID string, scopes []string) (*domain.AccessToken, *domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.issuePairLocked(clientID, scopes)
}

// issuePairLocked must be called with r.mu held
func (r *TokenRepository) issuePairLocked(clientID string, scopes []string) (*domain.AccessToken, *domain.RefreshToken, error) {
	accessToken, err := domain.NewOpaqueToken()
	if err != nil {
		r.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, nil, domain.ErrInternal
	}
	refreshToken, err := domain.NewOpaqueToken()
	if err != nil {
		r.logger.Error("Failed to generate refresh token", zap.Error(err))
		return nil, nil, domain.ErrInternal
	}

	access := &domain.AccessToken{
		Token:     accessToken,
		ClientID:  clientID,
		Scopes:    scopes,
		ExpiresAt: r.now().Add(r.accessTTL),
	}
	refresh := &domain.RefreshToken{
		Token:    refreshToken,
		ClientID: clientID,
		Scopes:   scopes,
	}
	r.access[accessToken] = access
	r.refresh[refreshToken] = refresh

	r.logger.Debug("Token pair issued", zap.String("client_id", clientID))
	return access, refresh, nil
}

// LoadAccess returns the grant for token, or domain.ErrInvalidGrant if the
// token is absent or expired
func (r *TokenRepository) LoadAccess(ctx context.Context, token string) (*domain.AccessToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	grant, exists := r.access[token]
	if !exists || !grant.ExpiresAt.After(r.now()) {
		return nil, domain.ErrInvalidGrant
	}
	return grant, nil
}

// LoadRefresh returns the refresh grant for token. A token minted for a
// different client fails with domain.ErrClientMismatch even when the token
// string itself is valid.
func (r *TokenRepository) LoadRefresh(ctx context.Context, token, clientID string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	grant, exists := r.refresh[token]
	if !exists {
		return nil, domain.ErrInvalidGrant
	}
	if grant.ClientID != clientID {
		return nil, domain.ErrClientMismatch
	}
	return grant, nil
}

// Rotate consumes oldRefresh, revokes every access token currently held by
// clientID and issues a new pair under a single lock acquisition. Refreshing
// deliberately invalidates all outstanding access tokens for the client, not
// just the one tied to the consumed refresh token.
func (r *TokenRepository) Rotate(ctx context.Context, oldRefresh, clientID string, scopes []string) (*domain.AccessToken, *domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	grant, exists := r.refresh[oldRefresh]
	if !exists {
		return nil, nil, domain.ErrInvalidGrant
	}
	if grant.ClientID != clientID {
		return nil, nil, domain.ErrClientMismatch
	}
	delete(r.refresh, oldRefresh)

	for token, access := range r.access {
		if access.ClientID == clientID {
			delete(r.access, token)
		}
	}

	useScopes := scopes
	if len(useScopes) == 0 {
		useScopes = grant.Scopes
	}
	return r.issuePairLocked(clientID, useScopes)
}

// Revoke removes the tagged credential from its store. Revoking an unknown
// token is a no-op, not an error.
func (r *TokenRepository) Revoke(ctx context.Context, kind domain.TokenKind, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch kind {
	case domain.TokenKindRefresh:
		delete(r.refresh, token)
	default:
		delete(r.access, token)
	}
	return nil
}

// Stop terminates the background sweep goroutine
func (r *TokenRepository) Stop() {
	close(r.stop)
}

func (r *TokenRepository) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			dropped := 0
			for token, grant := range r.access {
				if !grant.ExpiresAt.After(now) {
					delete(r.access, token)
					dropped++
				}
			}
			r.mu.Unlock()
			if dropped > 0 {
				r.logger.Debug("Swept expired access tokens", zap.Int("count", dropped))
			}
		case <-r.stop:
			return
		}
	}
}
