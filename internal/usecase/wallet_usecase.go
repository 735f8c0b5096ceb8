package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/domain"
)

// WalletUseCase serves wallet reads.
type WalletUseCase struct {
	walletRepo WalletRepository
	txnRepo    TransactionRepository
	cache      Cache
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(walletRepo WalletRepository, txnRepo TransactionRepository, cache Cache) *WalletUseCase {
	return &WalletUseCase{
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		cache:      cache,
	}
}

// GetByUser returns the user's wallet.
func (uc *WalletUseCase) GetByUser(ctx context.Context, userID string) (*domain.Wallet, error) {
	return uc.walletRepo.GetByUserID(ctx, userID)
}

// GetBalance returns the user's balance through a short-lived read cache. A
// hit skips the store entirely: the user-to-wallet mapping is cached alongside
// the balance so the lookup never touches Postgres. The engines drop the
// cached balance after every committed mutation, so staleness is bounded by
// the TTL even across instances.
func (uc *WalletUseCase) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if uc.cache != nil {
		if walletID, err := uc.cache.Get(ctx, walletIDCacheKey(userID)); err == nil {
			if cached, err := uc.cache.Get(ctx, balanceCacheKey(walletID)); err == nil {
				if balance, err := decimal.NewFromString(cached); err == nil {
					return balance, nil
				}
			}
		}
	}

	wallet, err := uc.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, walletIDCacheKey(userID), wallet.ID, balanceCacheTTL)
		_ = uc.cache.Set(ctx, balanceCacheKey(wallet.ID), wallet.Balance.String(), balanceCacheTTL)
	}

	return wallet.Balance, nil
}

// ListTransactions returns the wallet's transaction history, newest first.
func (uc *WalletUseCase) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	wallet, err := uc.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.txnRepo.ListByWallet(ctx, wallet.ID, limit, offset)
}
