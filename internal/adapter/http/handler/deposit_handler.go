package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nnamdi/kobolet/internal/adapter/http/dto"
	"github.com/nnamdi/kobolet/internal/infrastructure/metrics"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// maxWebhookBody bounds how much of a webhook payload we are willing to read.
const maxWebhookBody = 1 << 20

// WebhookVerifier authenticates a provider webhook payload against its
// signature header.
type WebhookVerifier interface {
	VerifySignature(body []byte, signature string) bool
}

// DepositHandler handles deposit initiation, the provider webhook and
// deposit status reads.
type DepositHandler struct {
	depositUC *usecase.DepositUseCase
	walletUC  *usecase.WalletUseCase
	userUC    *usecase.UserUseCase
	verifier  WebhookVerifier
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewDepositHandler creates a new DepositHandler.
func NewDepositHandler(
	depositUC *usecase.DepositUseCase,
	walletUC *usecase.WalletUseCase,
	userUC *usecase.UserUseCase,
	verifier WebhookVerifier,
	m *metrics.Metrics,
	log zerolog.Logger,
) *DepositHandler {
	return &DepositHandler{
		depositUC: depositUC,
		walletUC:  walletUC,
		userUC:    userUC,
		verifier:  verifier,
		metrics:   m,
		log:       log.With().Str("component", "deposit_handler").Logger(),
	}
}

// Initiate creates a pending deposit and returns the provider checkout URL.
func (h *DepositHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req dto.InitiateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	wallet, err := h.walletUC.GetByUser(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to get wallet")
		return
	}

	user, err := h.userUC.Get(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to get user")
		return
	}

	result, err := h.depositUC.Initiate(r.Context(), usecase.InitiateDepositInput{
		WalletID: wallet.ID,
		Email:    user.Email,
		Amount:   req.Amount,
	})
	if err != nil {
		writeDomainError(w, err, "failed to initiate deposit")
		return
	}

	writeJSON(w, http.StatusOK, dto.DepositFromResult(result))
}

// Webhook receives provider events. The payload must carry a valid
// x-paystack-signature header; anything else is dropped. Only charge.success
// events settle a deposit, and the response is always 200 once the signature
// checks out so the provider does not retry events we chose to ignore.
func (h *DepositHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.metrics != nil {
		h.metrics.WebhooksReceived.Inc()
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}

	signature := r.Header.Get("x-paystack-signature")
	if !h.verifier.VerifySignature(body, signature) {
		if h.metrics != nil {
			h.metrics.WebhooksRejected.Inc()
		}
		h.log.Warn().Msg("webhook rejected: bad signature")
		writeError(w, http.StatusUnauthorized, "invalid signature", "")
		return
	}

	var event dto.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}

	if event.Event != "charge.success" {
		h.log.Debug().Str("event", event.Event).Msg("ignoring webhook event")
		w.WriteHeader(http.StatusOK)
		return
	}

	credited, err := h.depositUC.Confirm(r.Context(), event.Data.Reference)
	if err != nil {
		h.log.Error().Err(err).Str("reference", event.Data.Reference).Msg("webhook confirm failed")
		writeDomainError(w, err, "failed to confirm deposit")
		return
	}

	h.log.Info().
		Str("reference", event.Data.Reference).
		Bool("credited", credited).
		Msg("webhook processed")
	w.WriteHeader(http.StatusOK)
}

// Status returns the deposit transaction for the given reference, scoped to
// the caller's wallet.
func (h *DepositHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	wallet, err := h.walletUC.GetByUser(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to get wallet")
		return
	}

	reference := chi.URLParam(r, "reference")

	txn, err := h.depositUC.Status(r.Context(), wallet.ID, reference)
	if err != nil {
		writeDomainError(w, err, "failed to get deposit status")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Verify asks the provider directly whether the deposit settled and credits
// the wallet if so. It is the recovery path for missed webhooks.
func (h *DepositHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if _, ok := identityFrom(w, r); !ok {
		return
	}

	reference := chi.URLParam(r, "reference")

	credited, err := h.depositUC.Verify(r.Context(), reference)
	if err != nil {
		writeDomainError(w, err, "failed to verify deposit")
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyDepositResponse{
		Reference: reference,
		Credited:  credited,
	})
}
