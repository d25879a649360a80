package repository

import (
	"context"
	"sync"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	"go.uber.org/zap"
)

// ClientRepository is an in-memory implementation of domain.ClientRepository.
// Registrations never expire and are lost on restart by design.
type ClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*domain.ClientRegistration
	logger  *zap.Logger
}

// NewClientRepository creates a new in-memory client repository
func NewClientRepository(logger *zap.Logger) *ClientRepository {
	return &ClientRepository{
		clients: make(map[string]*domain.ClientRegistration),
		logger:  logger,
	}
}

// Save stores a client registration, overwriting any prior registration for
// the same client ID
func (r *ClientRepository) Save(ctx context.Context, client *domain.ClientRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[client.ClientID] = client
	r.logger.Debug("Client registration stored", zap.String("client_id", client.ClientID))
	return nil
}

// FindByID finds a client registration by client ID
func (r *ClientRepository) FindByID(ctx context.Context, clientID string) (*domain.ClientRegistration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[clientID]
	if !exists {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}
