package domain

import "errors"

var (
	// Wallet errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrRecipientNotFound   = errors.New("recipient wallet not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSelfTransfer        = errors.New("cannot transfer to your own wallet")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidStatusChange = errors.New("transaction status is terminal")
	ErrNotADeposit         = errors.New("transaction is not a deposit")

	// Idempotency errors
	ErrDuplicateOperation    = errors.New("operation already processed for this idempotency key")
	ErrMissingIdempotencyKey = errors.New("idempotency key is required")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	// API key errors
	ErrAPIKeyNotFound     = errors.New("api key not found")
	ErrKeyNameTaken       = errors.New("api key name already in use")
	ErrAPIKeyLimitReached = errors.New("api key limit reached")
	ErrKeyStillActive     = errors.New("only expired or revoked keys can be rolled over")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
