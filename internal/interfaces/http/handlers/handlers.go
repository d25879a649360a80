package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ipede/oauth-proxy-service/internal/domain"
	"go.uber.org/zap"
)

// Handler exposes the proxy provider operations over HTTP
type Handler struct {
	provider domain.OAuthProvider
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a new Handler
func New(provider domain.OAuthProvider, logger *zap.Logger) *Handler {
	return &Handler{
		provider: provider,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response body", zap.Error(err))
	}
}
