package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nnamdi/kobolet/internal/adapter/http/dto"
	"github.com/nnamdi/kobolet/internal/infrastructure/auth"
	"github.com/nnamdi/kobolet/internal/infrastructure/metrics"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// AuthHandler handles registration, session issuance and account removal.
type AuthHandler struct {
	userUC     *usecase.UserUseCase
	jwtManager *auth.JWTManager
	metrics    *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userUC *usecase.UserUseCase, jwtManager *auth.JWTManager, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		userUC:     userUC,
		jwtManager: jwtManager,
		metrics:    m,
	}
}

// Register creates a user with their wallet and returns a session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, wallet, err := h.userUC.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to register")
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", "internal error")
		return
	}

	if h.metrics != nil {
		h.metrics.UsersRegistered.Inc()
	}

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		User:   dto.UserFromDomain(user),
		Wallet: dto.WalletFromDomain(wallet),
		Token:  token,
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	user, err := h.userUC.Get(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// Delete removes the authenticated user's account. The wallet, transaction
// history and API keys go with it.
func (h *AuthHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	if err := h.userUC.Delete(r.Context(), identity.UserID); err != nil {
		writeDomainError(w, err, "failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
