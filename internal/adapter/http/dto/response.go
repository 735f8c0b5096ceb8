package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterResponse carries the new user, their wallet and a session token.
type RegisterResponse struct {
	User   *UserResponse   `json:"user"`
	Wallet *WalletResponse `json:"wallet"`
	Token  string          `json:"token"`
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:        w.ID,
		Number:    w.Number,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// BalanceResponse represents a wallet balance read.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:        t.ID,
		Kind:      string(t.Kind),
		Amount:    t.Amount,
		Reference: t.Reference,
		Status:    string(t.Status),
		Metadata:  t.Metadata,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// TransferResponse represents a committed transfer.
type TransferResponse struct {
	Reference             string          `json:"reference"`
	Amount                decimal.Decimal `json:"amount"`
	RecipientWalletNumber string          `json:"recipient_wallet_number"`
}

// TransferFromResult converts a use case result to a response.
func TransferFromResult(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		Reference:             r.Reference,
		Amount:                r.Amount,
		RecipientWalletNumber: r.RecipientNumber,
	}
}

// InitiateDepositResponse carries the provider checkout handle.
type InitiateDepositResponse struct {
	Reference        string          `json:"reference"`
	AuthorizationURL string          `json:"authorization_url"`
	Amount           decimal.Decimal `json:"amount"`
}

// DepositFromResult converts a use case result to a response.
func DepositFromResult(r *usecase.InitiateDepositResult) *InitiateDepositResponse {
	return &InitiateDepositResponse{
		Reference:        r.Reference,
		AuthorizationURL: r.AuthorizationURL,
		Amount:           r.Amount,
	}
}

// VerifyDepositResponse reports the outcome of a provider verification.
// Credited is true only when this request settled the deposit; replays of an
// already settled reference return false.
type VerifyDepositResponse struct {
	Reference string `json:"reference"`
	Credited  bool   `json:"credited"`
}

// APIKeyResponse represents an API key in API responses. The plain key
// material appears only in CreateAPIKeyResponse, never here.
type APIKeyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
	Revoked     bool      `json:"revoked"`
	CreatedAt   time.Time `json:"created_at"`
}

// APIKeyFromDomain converts a domain API key to a response.
func APIKeyFromDomain(k *domain.APIKey) *APIKeyResponse {
	return &APIKeyResponse{
		ID:          k.ID,
		Name:        k.Name,
		Permissions: k.Permissions,
		ExpiresAt:   k.ExpiresAt,
		Revoked:     k.Revoked,
		CreatedAt:   k.CreatedAt,
	}
}

// APIKeysFromDomain converts domain API keys to responses.
func APIKeysFromDomain(keys []*domain.APIKey) []*APIKeyResponse {
	result := make([]*APIKeyResponse, len(keys))
	for i, k := range keys {
		result[i] = APIKeyFromDomain(k)
	}
	return result
}

// CreateAPIKeyResponse carries the plain key exactly once.
type CreateAPIKeyResponse struct {
	Key    string          `json:"key"`
	Detail *APIKeyResponse `json:"detail"`
}
