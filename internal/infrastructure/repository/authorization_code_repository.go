package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	"go.uber.org/zap"
)

// AuthorizationCodeRepository is an in-memory implementation of
// domain.AuthorizationCodeRepository. Codes expire ttl after issuance and
// are deleted only on Consume, so a client retry before exchange still sees
// a valid code.
type AuthorizationCodeRepository struct {
	mu     sync.Mutex
	codes  map[string]*domain.AuthorizationCode
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
	stop   chan struct{}
}

// NewAuthorizationCodeRepository creates a new in-memory authorization code
// store. A positive sweepInterval starts a background sweep of expired codes.
func NewAuthorizationCodeRepository(ttl, sweepInterval time.Duration, logger *zap.Logger) *AuthorizationCodeRepository {
	r := &AuthorizationCodeRepository{
		codes:  make(map[string]*domain.AuthorizationCode),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		stop:   make(chan struct{}),
	}
	if sweepInterval > 0 {
		go r.sweep(sweepInterval)
	}
	return r
}

// Issue generates a fresh unique code bound to the pending context and
// stores it with the policy expiry
func (r *AuthorizationCodeRepository) Issue(ctx context.Context, pending *domain.PendingAuthorization) (string, error) {
	code, err := domain.NewOpaqueToken()
	if err != nil {
		r.logger.Error("Failed to generate authorization code", zap.Error(err))
		return "", domain.ErrInternal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.codes[code] = &domain.AuthorizationCode{
		Code:                code,
		ClientID:            pending.ClientID,
		Scopes:              pending.Scopes,
		CodeChallenge:       pending.CodeChallenge,
		CodeChallengeMethod: pending.CodeChallengeMethod,
		RedirectURI:         pending.RedirectURI,
		RedirectURIExplicit: pending.RedirectURIExplicit,
		ExpiresAt:           r.now().Add(r.ttl),
	}
	r.logger.Debug("Authorization code issued", zap.String("client_id", pending.ClientID))
	return code, nil
}

// Load returns the grant for code, or domain.ErrInvalidGrant if the code is
// absent or expired. Load never deletes.
func (r *AuthorizationCodeRepository) Load(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	grant, exists := r.codes[code]
	if !exists || r.now().After(grant.ExpiresAt) {
		return nil, domain.ErrInvalidGrant
	}
	return grant, nil
}

// Consume deletes the code. A second Consume of the same code fails closed
// with domain.ErrInvalidGrant.
func (r *AuthorizationCodeRepository) Consume(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.codes[code]; !exists {
		return domain.ErrInvalidGrant
	}
	delete(r.codes, code)
	return nil
}

// Stop terminates the background sweep goroutine
func (r *AuthorizationCodeRepository) Stop() {
	close(r.stop)
}

func (r *AuthorizationCodeRepository) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			dropped := 0
			for code, grant := range r.codes {
				if now.After(grant.ExpiresAt) {
					delete(r.codes, code)
					dropped++
				}
			}
			r.mu.Unlock()
			if dropped > 0 {
				r.logger.Debug("Swept expired authorization codes", zap.Int("count", dropped))
			}
		case <-r.stop:
			return
		}
	}
}
