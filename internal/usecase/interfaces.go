package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	CreateTx(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByNumber(ctx context.Context, tx Transaction, number string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Wallet, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	CreateTx(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	GetByReferenceForUpdate(ctx context.Context, tx Transaction, reference string) (*domain.Transaction, error)
	// UpdateStatus transitions a transaction to a terminal status. A non-nil
	// metadata map is merged into the stored metadata.
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus, metadata map[string]any, updatedAt time.Time) error
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error)
	// FailStaleDeposits marks pending deposits created before cutoff as failed
	// and returns how many rows were affected.
	FailStaleDeposits(ctx context.Context, cutoff time.Time, updatedAt time.Time) (int64, error)
	// ListOrphanedTransferOuts returns successful transfer_out rows whose
	// paired transfer_in is missing or not successful.
	ListOrphanedTransferOuts(ctx context.Context, limit int) ([]*domain.Transaction, error)
}

// IdempotencyRepository defines data access for consumed idempotency keys.
type IdempotencyRepository interface {
	Exists(ctx context.Context, tx Transaction, key string, operation domain.Operation) (bool, error)
	// CreateTx inserts the record; a unique-constraint violation surfaces as
	// domain.ErrDuplicateOperation.
	CreateTx(ctx context.Context, tx Transaction, record *domain.IdempotencyRecord) error
}

// UserRepository defines data access for users.
type UserRepository interface {
	CreateTx(ctx context.Context, tx Transaction, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Delete removes the user; wallet and transactions follow via declared
	// foreign-key cascades.
	Delete(ctx context.Context, id string) error
}

// APIKeyRepository defines data access for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	GetByID(ctx context.Context, userID, id string) (*domain.APIKey, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error)
	CountActive(ctx context.Context, userID string, now time.Time) (int, error)
	Revoke(ctx context.Context, userID, id string, updatedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique row IDs.
type IDGenerator interface {
	Generate() string
}

// ReferenceGenerator produces external-facing identifiers.
type ReferenceGenerator interface {
	// Reference returns a collision-resistant transaction reference of the
	// form {PREFIX}_{unix}_{hex}. Uniqueness is enforced by the store.
	Reference(prefix string) string
	// WalletNumber returns a random 13-digit routing number.
	WalletNumber() string
}

// CredentialGenerator produces and verifies opaque bearer credentials.
type CredentialGenerator interface {
	// NewKey returns fresh key material and its irreversible hash. The plain
	// key is shown to the caller once and never stored.
	NewKey() (plain, hash string)
	Hash(plain string) string
	// Verify compares in constant time.
	Verify(plain, hash string) bool
}

// PaymentProvider is the external funding gateway.
type PaymentProvider interface {
	// Initialize requests a payment authorization handle for the reference.
	Initialize(ctx context.Context, email string, amount decimal.Decimal, reference string) (authorizationURL string, err error)
	// Verify queries the provider for the settlement state of a reference.
	Verify(ctx context.Context, reference string) (settled bool, err error)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Retrier retries an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
