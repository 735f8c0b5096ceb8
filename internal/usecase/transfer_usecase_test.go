package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/usecase"
	"github.com/nnamdi/kobolet/internal/usecase/mocks"
)

func seedWallet(repo *mocks.MockWalletRepository, id, userID, number, balance string) *domain.Wallet {
	w := &domain.Wallet{
		ID:        id,
		UserID:    userID,
		Number:    number,
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	repo.Seed(w)
	return w
}

func newTransferUseCase(walletRepo *mocks.MockWalletRepository, txnRepo *mocks.MockTransactionRepository, idemRepo *mocks.MockIdempotencyRepository) *usecase.TransferUseCase {
	return usecase.NewTransferUseCase(
		mocks.NewMockTransactionManager(),
		walletRepo,
		txnRepo,
		idemRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockReferenceGenerator(),
		mocks.NewMockCache(),
		nil,
	)
}

func TestTransferUseCase_Transfer(t *testing.T) {
	walletRepo := mocks.NewMockWalletRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	idemRepo := mocks.NewMockIdempotencyRepository()

	seedWallet(walletRepo, "wal-1", "user-1", "1000000000001", "10000.00")
	seedWallet(walletRepo, "wal-2", "user-2", "1000000000002", "0.00")

	uc := newTransferUseCase(walletRepo, txnRepo, idemRepo)

	result, err := uc.Transfer(context.Background(), usecase.TransferInput{
		SenderWalletID:  "wal-1",
		RecipientNumber: "1000000000002",
		Amount:          decimal.RequireFromString("3000.00"),
		UserID:          "user-1",
		IdempotencyKey:  "idem-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(result.Reference, "TRF_") {
		t.Errorf("expected TRF reference, got %s", result.Reference)
	}
	if result.RecipientNumber != "1000000000002" {
		t.Errorf("unexpected recipient number: %s", result.RecipientNumber)
	}

	sender := walletRepo.Wallet("wal-1")
	recipient := walletRepo.Wallet("wal-2")
	if !sender.Balance.Equal(decimal.RequireFromString("7000.00")) {
		t.Errorf("expected sender balance 7000.00, got %s", sender.Balance)
	}
	if !recipient.Balance.Equal(decimal.RequireFromString("3000.00")) {
		t.Errorf("expected recipient balance 3000.00, got %s", recipient.Balance)
	}

	out := txnRepo.ByReference(result.Reference)
	in := txnRepo.ByReference(result.Reference + domain.InReferenceSuffix)
	if out == nil || in == nil {
		t.Fatalf("expected paired transaction rows, got out=%v in=%v", out, in)
	}
	if out.Kind != domain.KindTransferOut || out.Status != domain.StatusSuccess {
		t.Errorf("unexpected debit leg: kind=%s status=%s", out.Kind, out.Status)
	}
	if in.Kind != domain.KindTransferIn || in.Status != domain.StatusSuccess {
		t.Errorf("unexpected credit leg: kind=%s status=%s", in.Kind, in.Status)
	}
	if in.WalletID != "wal-2" || out.WalletID != "wal-1" {
		t.Errorf("legs attached to wrong wallets: out=%s in=%s", out.WalletID, in.WalletID)
	}
	if !out.Amount.Equal(in.Amount) {
		t.Errorf("leg amounts differ: out=%s in=%s", out.Amount, in.Amount)
	}
}

func TestTransferUseCase_TransferErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     usecase.TransferInput
		errorType error
	}{
		{
			name: "zero amount",
			input: usecase.TransferInput{
				SenderWalletID:  "wal-1",
				RecipientNumber: "1000000000002",
				Amount:          decimal.Zero,
				UserID:          "user-1",
				IdempotencyKey:  "idem-1",
			},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			input: usecase.TransferInput{
				SenderWalletID:  "wal-1",
				RecipientNumber: "1000000000002",
				Amount:          decimal.RequireFromString("-5"),
				UserID:          "user-1",
				IdempotencyKey:  "idem-1",
			},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name: "sub-cent precision",
			input: usecase.TransferInput{
				SenderWalletID:  "wal-1",
				RecipientNumber: "1000000000002",
				Amount:          decimal.RequireFromString("10.001"),
				UserID:          "user-1",
				IdempotencyKey:  "idem-1",
			},
			errorType: domain.ErrAmountPrecision,
		},
		{
			name: "malformed recipient number",
			input: usecase.TransferInput{
				SenderWalletID:  "wal-1",
				RecipientNumber: "12345",
				Amount:          decimal.RequireFromString("10.00"),
				UserID:          "user-1",
				IdempotencyKey:  "idem-1",
			},
			errorType: domain.ErrInvalidWalletNumber,
		},
		{
			name: "missing idempotency key",
			input: usecase.TransferInput{
				SenderWalletID:  "wal-1",
				RecipientNumber: "1000000000002",
				Amount:          decimal.RequireFromString("10.00"),
				UserID:          "user-1",
			},
			errorType: domain.ErrMissingIdempotencyKey,
		},
		{
			name: "unknown recipient",
			input: usecase.TransferInput{
				SenderWalletID:  "wal-1",
				RecipientNumber: "9999999999999",
				Amount:          decimal.RequireFromString("10.00"),
				UserID:          "user-1",
				IdempotencyKey:  "idem-1",
			},
			errorType: domain.ErrRecipientNotFound,
		},
		{
			name: "self transfer",
			input: usecase.TransferInput{
				SenderWalletID:  "wal-1",
				RecipientNumber: "1000000000001",
				Amount:          decimal.RequireFromString("10.00"),
				UserID:          "user-1",
				IdempotencyKey:  "idem-1",
			},
			errorType: domain.ErrSelfTransfer,
		},
		{
			name: "insufficient balance",
			input: usecase.TransferInput{
				SenderWalletID:  "wal-1",
				RecipientNumber: "1000000000002",
				Amount:          decimal.RequireFromString("10000.01"),
				UserID:          "user-1",
				IdempotencyKey:  "idem-1",
			},
			errorType: domain.ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			walletRepo := mocks.NewMockWalletRepository()
			txnRepo := mocks.NewMockTransactionRepository()
			idemRepo := mocks.NewMockIdempotencyRepository()

			seedWallet(walletRepo, "wal-1", "user-1", "1000000000001", "10000.00")
			seedWallet(walletRepo, "wal-2", "user-2", "1000000000002", "0.00")

			uc := newTransferUseCase(walletRepo, txnRepo, idemRepo)

			_, err := uc.Transfer(context.Background(), tt.input)
			if !errors.Is(err, tt.errorType) {
				t.Fatalf("expected %v, got %v", tt.errorType, err)
			}

			// A rejected transfer must leave both balances untouched.
			if !walletRepo.Wallet("wal-1").Balance.Equal(decimal.RequireFromString("10000.00")) {
				t.Errorf("sender balance mutated on rejected transfer: %s", walletRepo.Wallet("wal-1").Balance)
			}
			if !walletRepo.Wallet("wal-2").Balance.Equal(decimal.Zero) {
				t.Errorf("recipient balance mutated on rejected transfer: %s", walletRepo.Wallet("wal-2").Balance)
			}
		})
	}
}

func TestTransferUseCase_DuplicateIdempotencyKey(t *testing.T) {
	walletRepo := mocks.NewMockWalletRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	idemRepo := mocks.NewMockIdempotencyRepository()

	seedWallet(walletRepo, "wal-1", "user-1", "1000000000001", "500.00")
	seedWallet(walletRepo, "wal-2", "user-2", "1000000000002", "0.00")

	uc := newTransferUseCase(walletRepo, txnRepo, idemRepo)

	input := usecase.TransferInput{
		SenderWalletID:  "wal-1",
		RecipientNumber: "1000000000002",
		Amount:          decimal.RequireFromString("100.00"),
		UserID:          "user-1",
		IdempotencyKey:  "retry-key",
	}

	if _, err := uc.Transfer(context.Background(), input); err != nil {
		t.Fatalf("first transfer failed: %v", err)
	}

	// Client retry with the same key must not move money again.
	if _, err := uc.Transfer(context.Background(), input); !errors.Is(err, domain.ErrDuplicateOperation) {
		t.Fatalf("expected ErrDuplicateOperation on retry, got %v", err)
	}

	if !walletRepo.Wallet("wal-1").Balance.Equal(decimal.RequireFromString("400.00")) {
		t.Errorf("expected sender debited exactly once, balance %s", walletRepo.Wallet("wal-1").Balance)
	}
	if !walletRepo.Wallet("wal-2").Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("expected recipient credited exactly once, balance %s", walletRepo.Wallet("wal-2").Balance)
	}
}

func TestTransferUseCase_ConcurrentIdempotencyKeyLosesToConstraint(t *testing.T) {
	walletRepo := mocks.NewMockWalletRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	idemRepo := mocks.NewMockIdempotencyRepository()

	seedWallet(walletRepo, "wal-1", "user-1", "1000000000001", "500.00")
	seedWallet(walletRepo, "wal-2", "user-2", "1000000000002", "0.00")

	// Two requests with the same key can both pass the existence check before
	// either inserts; the store's unique constraint decides the loser. Emulate
	// the losing side: the check misses but the insert reports the duplicate.
	idemRepo.ExistsFunc = func(ctx context.Context, tx usecase.Transaction, key string, operation domain.Operation) (bool, error) {
		return false, nil
	}
	idemRepo.CreateTxFunc = func(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
		return domain.ErrDuplicateOperation
	}

	var committed, rolledBack bool
	txManager := mocks.NewMockTransactionManager()
	txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		return &mocks.MockTransaction{
			CommitFunc:   func(ctx context.Context) error { committed = true; return nil },
			RollbackFunc: func(ctx context.Context) error { rolledBack = true; return nil },
		}, nil
	}

	uc := usecase.NewTransferUseCase(
		txManager,
		walletRepo,
		txnRepo,
		idemRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockReferenceGenerator(),
		mocks.NewMockCache(),
		nil,
	)

	_, err := uc.Transfer(context.Background(), usecase.TransferInput{
		SenderWalletID:  "wal-1",
		RecipientNumber: "1000000000002",
		Amount:          decimal.RequireFromString("100.00"),
		UserID:          "user-1",
		IdempotencyKey:  "racing-key",
	})
	if !errors.Is(err, domain.ErrDuplicateOperation) {
		t.Fatalf("expected ErrDuplicateOperation from the constraint backstop, got %v", err)
	}

	if committed {
		t.Error("losing transfer must not commit")
	}
	if !rolledBack {
		t.Error("losing transfer must roll back")
	}
}

func TestTransferUseCase_ConservesTotalBalance(t *testing.T) {
	walletRepo := mocks.NewMockWalletRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	idemRepo := mocks.NewMockIdempotencyRepository()

	seedWallet(walletRepo, "wal-1", "user-1", "1000000000001", "750.25")
	seedWallet(walletRepo, "wal-2", "user-2", "1000000000002", "249.75")

	total := walletRepo.Wallet("wal-1").Balance.Add(walletRepo.Wallet("wal-2").Balance)

	uc := newTransferUseCase(walletRepo, txnRepo, idemRepo)

	amounts := []string{"0.01", "100.00", "250.24", "400.00"}
	for i, amount := range amounts {
		_, err := uc.Transfer(context.Background(), usecase.TransferInput{
			SenderWalletID:  "wal-1",
			RecipientNumber: "1000000000002",
			Amount:          decimal.RequireFromString(amount),
			UserID:          "user-1",
			IdempotencyKey:  "conserve-" + amount,
		})
		if err != nil {
			t.Fatalf("transfer %d failed: %v", i, err)
		}
	}

	after := walletRepo.Wallet("wal-1").Balance.Add(walletRepo.Wallet("wal-2").Balance)
	if !after.Equal(total) {
		t.Fatalf("total balance changed: before=%s after=%s", total, after)
	}
}

func TestTransferUseCase_LocksWalletsInAscendingIDOrder(t *testing.T) {
	walletRepo := mocks.NewMockWalletRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	idemRepo := mocks.NewMockIdempotencyRepository()

	seedWallet(walletRepo, "wal-b", "user-1", "1000000000001", "100.00")
	seedWallet(walletRepo, "wal-a", "user-2", "1000000000002", "0.00")

	var lockedIDs []string
	walletRepo.GetByIDsForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
		lockedIDs = append([]string(nil), ids...)
		walletRepo.GetByIDsForUpdateFunc = nil
		return walletRepo.GetByIDsForUpdate(ctx, tx, ids)
	}

	uc := newTransferUseCase(walletRepo, txnRepo, idemRepo)

	_, err := uc.Transfer(context.Background(), usecase.TransferInput{
		SenderWalletID:  "wal-b",
		RecipientNumber: "1000000000002",
		Amount:          decimal.RequireFromString("10.00"),
		UserID:          "user-1",
		IdempotencyKey:  "lock-order",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(lockedIDs) != 2 || lockedIDs[0] != "wal-a" || lockedIDs[1] != "wal-b" {
		t.Fatalf("expected lock request in ascending ID order, got %v", lockedIDs)
	}
}
