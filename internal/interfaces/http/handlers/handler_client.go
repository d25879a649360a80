package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ipede/oauth-proxy-service/internal/domain"
	httperrors "github.com/ipede/oauth-proxy-service/internal/interfaces/http/errors"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterClientRequest is the dynamic client registration request body
type RegisterClientRequest struct {
	RedirectURIs []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
	Scope        string   `json:"scope"`
}

// RegisterClientResponse returns the generated credentials. The secret is
// shown exactly once; only its hash is stored.
type RegisterClientResponse struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURIs []string `json:"redirect_uris"`
	Scope        string   `json:"scope,omitempty"`
}

// RegisterClientHandler handles dynamic client registration
func (h *Handler) RegisterClientHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode registration body", zap.Error(err))
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.Error("Invalid registration request", zap.Error(err))
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "at least one well-formed redirect_uri is required", http.StatusBadRequest)
		return
	}

	secret, err := domain.NewOpaqueToken()
	if err != nil {
		h.logger.Error("Failed to generate client secret", zap.Error(err))
		httperrors.RespondWithError(w, httperrors.ErrCodeServerError, "internal server error", http.StatusInternalServerError)
		return
	}
	secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("Failed to hash client secret", zap.Error(err))
		httperrors.RespondWithError(w, httperrors.ErrCodeServerError, "internal server error", http.StatusInternalServerError)
		return
	}

	client := &domain.ClientRegistration{
		ClientID:     ulid.Make().String(),
		SecretHash:   secretHash,
		RedirectURIs: req.RedirectURIs,
		Scopes:       strings.Fields(req.Scope),
		CreatedAt:    time.Now(),
	}

	if err := h.provider.RegisterClient(r.Context(), client); err != nil {
		h.logger.Error("Failed to register client", zap.Error(err))
		httperrors.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Client registered", zap.String("client_id", client.ClientID))
	h.respondJSON(w, http.StatusCreated, RegisterClientResponse{
		ClientID:     client.ClientID,
		ClientSecret: secret,
		RedirectURIs: client.RedirectURIs,
		Scope:        req.Scope,
	})
}

// GetClientHandler returns a client registration without its secret hash
func (h *Handler) GetClientHandler(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "client id is required", http.StatusBadRequest)
		return
	}

	client, err := h.provider.GetClient(r.Context(), clientID)
	if err != nil {
		h.logger.Error("Failed to find client", zap.String("client_id", clientID), zap.Error(err))
		httperrors.RespondWithDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, client)
}
