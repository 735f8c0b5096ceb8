package handler

import (
	"net/http"

	"github.com/nnamdi/kobolet/internal/adapter/http/dto"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// WalletHandler serves wallet reads: the wallet itself, its balance and its
// transaction history.
type WalletHandler struct {
	walletUC *usecase.WalletUseCase
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC *usecase.WalletUseCase) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

// Me returns the authenticated user's wallet.
func (h *WalletHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	wallet, err := h.walletUC.GetByUser(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to get wallet")
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Balance returns the wallet balance, served from cache when fresh.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	balance, err := h.walletUC.GetBalance(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to get balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{Balance: balance})
}

// Transactions lists the wallet's transaction history, newest first.
func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	transactions, err := h.walletUC.ListTransactions(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		writeDomainError(w, err, "failed to list transactions")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}
