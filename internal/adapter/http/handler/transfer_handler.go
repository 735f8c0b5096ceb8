package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nnamdi/kobolet/internal/adapter/http/dto"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// TransferHandler handles wallet-to-wallet transfers.
type TransferHandler struct {
	transferUC *usecase.TransferUseCase
	walletUC   *usecase.WalletUseCase
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC *usecase.TransferUseCase, walletUC *usecase.WalletUseCase) *TransferHandler {
	return &TransferHandler{
		transferUC: transferUC,
		walletUC:   walletUC,
	}
}

// Transfer moves money from the caller's wallet to the wallet addressed by
// recipient number. The Idempotency-Key header is required; replays of the
// same key return a conflict without moving money twice.
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	wallet, err := h.walletUC.GetByUser(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to get wallet")
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")

	result, err := h.transferUC.Transfer(r.Context(), req.ToUseCaseInput(wallet.ID, identity.UserID, idempotencyKey))
	if err != nil {
		writeDomainError(w, err, "failed to transfer")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromResult(result))
}
