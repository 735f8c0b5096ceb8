package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/infrastructure/metrics"
)

// TransferUseCase executes wallet-to-wallet moves as a single atomic unit with
// idempotency dedupe.
type TransferUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	txnRepo    TransactionRepository
	idemRepo   IdempotencyRepository
	idGen      IDGenerator
	refGen     ReferenceGenerator
	cache      Cache
	metrics    *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	idemRepo IdempotencyRepository,
	idGen IDGenerator,
	refGen ReferenceGenerator,
	cache Cache,
	m *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		idemRepo:   idemRepo,
		idGen:      idGen,
		refGen:     refGen,
		cache:      cache,
		metrics:    m,
	}
}

// TransferInput represents input for a wallet-to-wallet transfer.
type TransferInput struct {
	SenderWalletID  string
	RecipientNumber string
	Amount          decimal.Decimal
	UserID          string
	IdempotencyKey  string
}

// TransferResult is returned on a committed transfer.
type TransferResult struct {
	Reference       string
	Amount          decimal.Decimal
	RecipientNumber string
}

// Transfer moves amount from the sender wallet to the wallet addressed by
// recipient number. The idempotency check, both balance mutations, both
// transaction rows and the idempotency record commit in one database
// transaction, or none of them do.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	// Validate before touching the store.
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.fail(err)
	}
	if err := domain.ValidateWalletNumber(input.RecipientNumber); err != nil {
		return nil, uc.fail(err)
	}
	if input.IdempotencyKey == "" {
		return nil, uc.fail(domain.ErrMissingIdempotencyKey)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Dedupe inside the same atomic unit as the balance mutation. The unique
	// constraint on (key, operation) backstops the race between this check
	// and the insert below.
	exists, err := uc.idemRepo.Exists(txCtx, tx, input.IdempotencyKey, domain.OperationTransfer)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, uc.fail(domain.ErrDuplicateOperation)
	}

	recipient, err := uc.walletRepo.GetByNumber(txCtx, tx, input.RecipientNumber)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return nil, uc.fail(domain.ErrRecipientNotFound)
		}
		return nil, err
	}
	if recipient.ID == input.SenderWalletID {
		return nil, uc.fail(domain.ErrSelfTransfer)
	}

	// Lock both wallets in ascending ID order (deadlock prevention).
	ids := []string{input.SenderWalletID, recipient.ID}
	sort.Strings(ids)

	wallets, err := uc.walletRepo.GetByIDsForUpdate(txCtx, tx, ids)
	if err != nil {
		return nil, err
	}
	if len(wallets) != len(ids) {
		return nil, domain.ErrWalletNotFound
	}

	var sender *domain.Wallet
	for _, w := range wallets {
		switch w.ID {
		case input.SenderWalletID:
			sender = w
		case recipient.ID:
			recipient = w
		}
	}
	if sender == nil {
		return nil, domain.ErrWalletNotFound
	}

	if err := sender.ValidateDebit(input.Amount); err != nil {
		return nil, uc.fail(err)
	}

	now := time.Now().UTC()
	reference := uc.refGen.Reference(TransferReferencePrefix)

	if err := uc.walletRepo.UpdateBalance(txCtx, tx, sender.ID, sender.ApplyDebit(input.Amount), now); err != nil {
		return nil, err
	}
	if err := uc.walletRepo.UpdateBalance(txCtx, tx, recipient.ID, recipient.ApplyCredit(input.Amount), now); err != nil {
		return nil, err
	}

	outTxn := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		WalletID:  sender.ID,
		Kind:      domain.KindTransferOut,
		Amount:    input.Amount,
		Reference: reference,
		Status:    domain.StatusSuccess,
		Metadata: map[string]any{
			"recipient_wallet":  recipient.Number,
			"recipient_user_id": recipient.UserID,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.txnRepo.CreateTx(txCtx, tx, outTxn); err != nil {
		return nil, err
	}

	inTxn := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		WalletID:  recipient.ID,
		Kind:      domain.KindTransferIn,
		Amount:    input.Amount,
		Reference: reference + domain.InReferenceSuffix,
		Status:    domain.StatusSuccess,
		Metadata: map[string]any{
			"sender_wallet":  sender.Number,
			"sender_user_id": sender.UserID,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.txnRepo.CreateTx(txCtx, tx, inTxn); err != nil {
		return nil, err
	}

	record := &domain.IdempotencyRecord{
		ID:        uc.idGen.Generate(),
		Key:       input.IdempotencyKey,
		Operation: domain.OperationTransfer,
		UserID:    input.UserID,
		CreatedAt: now,
	}
	if err := uc.idemRepo.CreateTx(txCtx, tx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateOperation) {
			return nil, uc.fail(domain.ErrDuplicateOperation)
		}
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateBalances(ctx, sender.ID, recipient.ID)

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
	}

	return &TransferResult{
		Reference:       reference,
		Amount:          input.Amount,
		RecipientNumber: recipient.Number,
	}, nil
}

// invalidateBalances drops cached balances after a committed mutation. Cache
// misses are harmless, so errors are ignored.
func (uc *TransferUseCase) invalidateBalances(ctx context.Context, walletIDs ...string) {
	if uc.cache == nil {
		return
	}
	for _, id := range walletIDs {
		_ = uc.cache.Delete(ctx, balanceCacheKey(id))
	}
}

func (uc *TransferUseCase) fail(err error) error {
	if uc.metrics != nil {
		uc.metrics.TransferErrors.WithLabelValues(err.Error()).Inc()
	}
	return err
}
