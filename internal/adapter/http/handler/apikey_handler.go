package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nnamdi/kobolet/internal/adapter/http/dto"
	"github.com/nnamdi/kobolet/internal/infrastructure/metrics"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// APIKeyHandler manages programmatic access keys.
type APIKeyHandler struct {
	apiKeyUC *usecase.APIKeyUseCase
	metrics  *metrics.Metrics
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(apiKeyUC *usecase.APIKeyUseCase, m *metrics.Metrics) *APIKeyHandler {
	return &APIKeyHandler{apiKeyUC: apiKeyUC, metrics: m}
}

// Create mints a new API key. The plain key is returned exactly once.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	plain, key, err := h.apiKeyUC.Create(r.Context(), req.ToUseCaseInput(identity.UserID))
	if err != nil {
		writeDomainError(w, err, "failed to create api key")
		return
	}

	if h.metrics != nil {
		h.metrics.APIKeysCreated.Inc()
	}

	writeJSON(w, http.StatusCreated, dto.CreateAPIKeyResponse{
		Key:    plain,
		Detail: dto.APIKeyFromDomain(key),
	})
}

// Rollover revokes an expired key and mints a replacement with the same name
// and permissions.
func (h *APIKeyHandler) Rollover(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req dto.RolloverAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	plain, key, err := h.apiKeyUC.Rollover(r.Context(), identity.UserID, req.ExpiredKeyID, req.Expiry)
	if err != nil {
		writeDomainError(w, err, "failed to rollover api key")
		return
	}

	if h.metrics != nil {
		h.metrics.APIKeysCreated.Inc()
	}

	writeJSON(w, http.StatusCreated, dto.CreateAPIKeyResponse{
		Key:    plain,
		Detail: dto.APIKeyFromDomain(key),
	})
}

// List returns the caller's API keys, hashes omitted.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	keys, err := h.apiKeyUC.List(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to list api keys")
		return
	}

	writeJSON(w, http.StatusOK, dto.APIKeysFromDomain(keys))
}

// Revoke permanently disables one of the caller's API keys.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	keyID := chi.URLParam(r, "id")

	if err := h.apiKeyUC.Revoke(r.Context(), identity.UserID, keyID); err != nil {
		writeDomainError(w, err, "failed to revoke api key")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
