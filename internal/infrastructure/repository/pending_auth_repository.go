package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	"go.uber.org/zap"
)

type pendingEntry struct {
	pending   *domain.PendingAuthorization
	expiresAt time.Time
}

// PendingAuthRepository is an in-memory implementation of
// domain.PendingAuthRepository. Entries are removed on Take whether or not
// the caller succeeds afterwards, so a state nonce is honored at most once.
type PendingAuthRepository struct {
	mu      sync.Mutex
	entries map[string]*pendingEntry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	stop    chan struct{}
}

// NewPendingAuthRepository creates a new in-memory pending authorization
// store. A positive sweepInterval starts a background sweep dropping entries
// past their expiry; abandoned flows would otherwise accumulate forever.
func NewPendingAuthRepository(ttl, sweepInterval time.Duration, logger *zap.Logger) *PendingAuthRepository {
	r := &PendingAuthRepository{
		entries: make(map[string]*pendingEntry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go r.sweep(sweepInterval)
	}
	return r
}

// Put stores a pending authorization keyed by the upstream state nonce
func (r *PendingAuthRepository) Put(ctx context.Context, state string, pending *domain.PendingAuthorization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[state] = &pendingEntry{
		pending:   pending,
		expiresAt: r.now().Add(r.ttl),
	}
	r.logger.Debug("Pending authorization stored", zap.String("client_id", pending.ClientID))
	return nil
}

// Take removes and returns the pending authorization for state. Absence,
// expiry and reuse all surface as domain.ErrInvalidState.
func (r *PendingAuthRepository) Take(ctx context.Context, state string) (*domain.PendingAuthorization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[state]
	if !exists {
		return nil, domain.ErrInvalidState
	}
	delete(r.entries, state)

	if r.now().After(entry.expiresAt) {
		return nil, domain.ErrInvalidState
	}
	return entry.pending, nil
}

// Stop terminates the background sweep goroutine
func (r *PendingAuthRepository) Stop() {
	close(r.stop)
}

func (r *PendingAuthRepository) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			dropped := 0
			for state, entry := range r.entries {
				if now.After(entry.expiresAt) {
					delete(r.entries, state)
					dropped++
				}
			}
			r.mu.Unlock()
			if dropped > 0 {
				r.logger.Debug("Swept expired pending authorizations", zap.Int("count", dropped))
			}
		case <-r.stop:
			return
		}
	}
}
