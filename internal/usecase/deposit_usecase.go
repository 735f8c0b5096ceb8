package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/infrastructure/metrics"
)

// DepositUseCase initiates external funding requests and credits the ledger
// exactly once per confirmed payment, no matter how many times the
// confirmation is delivered.
type DepositUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	txnRepo    TransactionRepository
	provider   PaymentProvider
	idGen      IDGenerator
	refGen     ReferenceGenerator
	cache      Cache
	metrics    *metrics.Metrics
}

// NewDepositUseCase creates a new DepositUseCase.
func NewDepositUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	provider PaymentProvider,
	idGen IDGenerator,
	refGen ReferenceGenerator,
	cache Cache,
	m *metrics.Metrics,
) *DepositUseCase {
	return &DepositUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		provider:   provider,
		idGen:      idGen,
		refGen:     refGen,
		cache:      cache,
		metrics:    m,
	}
}

// InitiateDepositInput represents input for initiating a deposit.
type InitiateDepositInput struct {
	WalletID string
	Email    string
	Amount   decimal.Decimal
}

// InitiateDepositResult carries the provider authorization handle back to the
// caller.
type InitiateDepositResult struct {
	Reference        string
	AuthorizationURL string
	Amount           decimal.Decimal
}

// Initiate creates a pending deposit transaction, then requests a payment
// authorization handle from the provider. The provider call happens after the
// pending row is committed and outside any held lock; if it fails, the
// pending row remains and the sweeper eventually expires it.
func (uc *DepositUseCase) Initiate(ctx context.Context, input InitiateDepositInput) (*InitiateDepositResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reference := uc.refGen.Reference(DepositReferencePrefix)

	txn := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		WalletID:  input.WalletID,
		Kind:      domain.KindDeposit,
		Amount:    input.Amount,
		Reference: reference,
		Status:    domain.StatusPending,
		Metadata:  map[string]any{"email": input.Email},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	authorizationURL, err := uc.provider.Initialize(ctx, input.Email, input.Amount, reference)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.DepositErrors.WithLabelValues("provider_initialize").Inc()
		}
		return nil, fmt.Errorf("initialize payment: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.DepositsInitiated.Inc()
	}

	return &InitiateDepositResult{
		Reference:        reference,
		AuthorizationURL: authorizationURL,
		Amount:           input.Amount,
	}, nil
}

// Confirm credits the wallet for a settled deposit. It is idempotent under
// arbitrary repetition: the transaction row is locked by reference, and a row
// that already reached a terminal status is left untouched. Returns whether
// the wallet was credited by this call.
//
// Authenticity of the confirmation must be verified by the caller before
// Confirm is invoked.
func (uc *DepositUseCase) Confirm(ctx context.Context, reference string) (bool, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Lock the transaction row so concurrent deliveries of the same
	// confirmation serialize.
	txn, err := uc.txnRepo.GetByReferenceForUpdate(txCtx, tx, reference)
	if err != nil {
		return false, err
	}
	if txn.Kind != domain.KindDeposit {
		return false, domain.ErrNotADeposit
	}
	if txn.IsTerminal() {
		// Resent confirmation: already handled, never double-credit.
		if uc.metrics != nil {
			uc.metrics.DepositsReplayed.Inc()
		}
		return false, nil
	}

	wallet, err := uc.walletRepo.GetByIDForUpdate(txCtx, tx, txn.WalletID)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	if err := uc.txnRepo.UpdateStatus(txCtx, tx, txn.ID, domain.StatusSuccess, nil, now); err != nil {
		return false, err
	}
	if err := uc.walletRepo.UpdateBalance(txCtx, tx, wallet.ID, wallet.ApplyCredit(txn.Amount), now); err != nil {
		return false, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return false, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, balanceCacheKey(wallet.ID))
	}
	if uc.metrics != nil {
		uc.metrics.DepositsConfirmed.Inc()
	}

	return true, nil
}

// Verify asks the provider for the settlement state of a reference and, on
// success, drives the same Confirm path as the webhook. Returns whether this
// call credited the wallet.
func (uc *DepositUseCase) Verify(ctx context.Context, reference string) (bool, error) {
	settled, err := uc.provider.Verify(ctx, reference)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.DepositErrors.WithLabelValues("provider_verify").Inc()
		}
		return false, fmt.Errorf("verify payment: %w", err)
	}
	if !settled {
		return false, nil
	}

	return uc.Confirm(ctx, reference)
}

// Status returns a deposit transaction by reference, scoped to its owning
// wallet.
func (uc *DepositUseCase) Status(ctx context.Context, walletID, reference string) (*domain.Transaction, error) {
	txn, err := uc.txnRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if txn.WalletID != walletID {
		return nil, domain.ErrTransactionNotFound
	}
	return txn, nil
}
