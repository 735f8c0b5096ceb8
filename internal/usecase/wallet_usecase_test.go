package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/usecase"
	"github.com/nnamdi/kobolet/internal/usecase/mocks"
)

func TestWalletUseCase_GetByUser(t *testing.T) {
	walletRepo := mocks.NewMockWalletRepository()
	seedWallet(walletRepo, "wal-1", "user-1", "1000000000001", "42.00")

	uc := usecase.NewWalletUseCase(walletRepo, mocks.NewMockTransactionRepository(), mocks.NewMockCache())

	wallet, err := uc.GetByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.ID != "wal-1" {
		t.Errorf("unexpected wallet: %+v", wallet)
	}

	if _, err := uc.GetByUser(context.Background(), "nobody"); !errors.Is(err, domain.ErrWalletNotFound) {
		t.Errorf("expected ErrWalletNotFound, got %v", err)
	}
}

func TestWalletUseCase_GetBalanceCaches(t *testing.T) {
	walletRepo := mocks.NewMockWalletRepository()
	cache := mocks.NewMockCache()
	seedWallet(walletRepo, "wal-1", "user-1", "1000000000001", "42.50")

	uc := usecase.NewWalletUseCase(walletRepo, mocks.NewMockTransactionRepository(), cache)

	balance, err := uc.GetBalance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("expected 42.50, got %s", balance)
	}

	// Second read served from the cache even if the row moved underneath;
	// mutation paths invalidate the key to keep staleness bounded.
	walletRepo.Wallet("wal-1").Balance = decimal.RequireFromString("100.00")

	balance, err = uc.GetBalance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("expected cached 42.50, got %s", balance)
	}

	if err := cache.Delete(context.Background(), "wallet:balance:wal-1"); err != nil {
		t.Fatalf("cache delete: %v", err)
	}
	balance, _ = uc.GetBalance(context.Background(), "user-1")
	if !balance.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected fresh 100.00 after invalidation, got %s", balance)
	}
}

func TestWalletUseCase_GetBalanceCacheHitSkipsStore(t *testing.T) {
	walletRepo := mocks.NewMockWalletRepository()
	cache := mocks.NewMockCache()
	seedWallet(walletRepo, "wal-1", "user-1", "1000000000001", "42.50")

	uc := usecase.NewWalletUseCase(walletRepo, mocks.NewMockTransactionRepository(), cache)

	var storeReads int
	walletRepo.GetByUserIDFunc = countingGetByUserID(walletRepo, &storeReads)

	if _, err := uc.GetBalance(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storeReads != 1 {
		t.Fatalf("expected one store read to warm the cache, got %d", storeReads)
	}

	balance, err := uc.GetBalance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("expected 42.50, got %s", balance)
	}
	if storeReads != 1 {
		t.Fatalf("expected cache hit to skip the store, got %d reads", storeReads)
	}
}

func countingGetByUserID(repo *mocks.MockWalletRepository, reads *int) func(context.Context, string) (*domain.Wallet, error) {
	return func(ctx context.Context, userID string) (*domain.Wallet, error) {
		*reads++
		repo.GetByUserIDFunc = nil
		wallet, err := repo.GetByUserID(ctx, userID)
		repo.GetByUserIDFunc = countingGetByUserID(repo, reads)
		return wallet, err
	}
}

func TestWalletUseCase_GetBalanceCorruptCacheFallsThrough(t *testing.T) {
	walletRepo := mocks.NewMockWalletRepository()
	cache := mocks.NewMockCache()
	seedWallet(walletRepo, "wal-1", "user-1", "1000000000001", "15.00")

	if err := cache.Set(context.Background(), "wallet:balance:wal-1", "not-a-decimal", time.Minute); err != nil {
		t.Fatalf("cache set: %v", err)
	}

	uc := usecase.NewWalletUseCase(walletRepo, mocks.NewMockTransactionRepository(), cache)

	balance, err := uc.GetBalance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected store balance on corrupt cache entry, got %s", balance)
	}
}

func TestWalletUseCase_ListTransactions(t *testing.T) {
	walletRepo := mocks.NewMockWalletRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	seedWallet(walletRepo, "wal-1", "user-1", "1000000000001", "0.00")

	txnRepo.Seed(&domain.Transaction{
		ID:        "txn-1",
		WalletID:  "wal-1",
		Kind:      domain.KindDeposit,
		Amount:    decimal.RequireFromString("10.00"),
		Reference: "DEP_1_a",
		Status:    domain.StatusSuccess,
	})
	txnRepo.Seed(&domain.Transaction{
		ID:        "txn-2",
		WalletID:  "wal-other",
		Kind:      domain.KindDeposit,
		Amount:    decimal.RequireFromString("10.00"),
		Reference: "DEP_1_b",
		Status:    domain.StatusSuccess,
	})

	var gotLimit, gotOffset int
	txnRepo.ListByWalletFunc = func(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error) {
		gotLimit, gotOffset = limit, offset
		txnRepo.ListByWalletFunc = nil
		return txnRepo.ListByWallet(ctx, walletID, limit, offset)
	}

	uc := usecase.NewWalletUseCase(walletRepo, txnRepo, mocks.NewMockCache())

	txns, err := uc.ListTransactions(context.Background(), "user-1", 0, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 || txns[0].ID != "txn-1" {
		t.Fatalf("expected only the wallet's own transaction, got %+v", txns)
	}

	// Out-of-range pagination is clamped, not rejected.
	if gotLimit != 50 || gotOffset != 0 {
		t.Errorf("expected clamped pagination (50, 0), got (%d, %d)", gotLimit, gotOffset)
	}
}
