package dto

import (
	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/usecase"
)

// RegisterRequest represents a request to register a user.
type RegisterRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email: r.Email,
		Name:  r.Name,
	}
}

// TransferRequest represents a request to transfer funds to another wallet.
type TransferRequest struct {
	RecipientWalletNumber string          `json:"recipient_wallet_number"`
	Amount                decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input. Sender wallet and idempotency key
// come from the authenticated request, not the body.
func (r *TransferRequest) ToUseCaseInput(senderWalletID, userID, idempotencyKey string) usecase.TransferInput {
	return usecase.TransferInput{
		SenderWalletID:  senderWalletID,
		RecipientNumber: r.RecipientWalletNumber,
		Amount:          r.Amount,
		UserID:          userID,
		IdempotencyKey:  idempotencyKey,
	}
}

// InitiateDepositRequest represents a request to fund a wallet.
type InitiateDepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CreateAPIKeyRequest represents a request to mint an API key.
type CreateAPIKeyRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	Expiry      string   `json:"expiry"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAPIKeyRequest) ToUseCaseInput(userID string) usecase.CreateKeyInput {
	return usecase.CreateKeyInput{
		UserID:      userID,
		Name:        r.Name,
		Permissions: r.Permissions,
		Expiry:      r.Expiry,
	}
}

// RolloverAPIKeyRequest asks for an expired or revoked key to be replaced by
// a fresh one with the same name and permissions.
type RolloverAPIKeyRequest struct {
	ExpiredKeyID string `json:"expired_key_id"`
	Expiry       string `json:"expiry"`
}

// WebhookEvent is the provider's webhook delivery envelope.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}
