package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    TransactionStatus
		to      TransactionStatus
		wantErr bool
	}{
		{"pending to success", StatusPending, StatusSuccess, false},
		{"pending to failed", StatusPending, StatusFailed, false},
		{"success is terminal", StatusSuccess, StatusFailed, true},
		{"failed is terminal", StatusFailed, StatusSuccess, true},
		{"pending to pending", StatusPending, StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := &Transaction{Status: tt.from}
			err := txn.ValidateTransition(tt.to)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTransactionInReference(t *testing.T) {
	txn := &Transaction{Kind: KindTransferOut, Reference: "TRF_1700000000_abcd"}
	if got := txn.InReference(); got != "TRF_1700000000_abcd_IN" {
		t.Errorf("expected paired reference with _IN suffix, got %s", got)
	}
}

func TestWalletDebitCredit(t *testing.T) {
	w := &Wallet{Balance: decimal.RequireFromString("100.00")}

	if err := w.ValidateDebit(decimal.RequireFromString("100.01")); err != ErrInsufficientBalance {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := w.ValidateDebit(decimal.RequireFromString("100.00")); err != nil {
		t.Errorf("debit of full balance should be allowed, got %v", err)
	}

	if got := w.ApplyDebit(decimal.RequireFromString("40.25")); !got.Equal(decimal.RequireFromString("59.75")) {
		t.Errorf("ApplyDebit: expected 59.75, got %s", got)
	}
	if got := w.ApplyCredit(decimal.RequireFromString("0.25")); !got.Equal(decimal.RequireFromString("100.25")) {
		t.Errorf("ApplyCredit: expected 100.25, got %s", got)
	}
}
