package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletNumberLength is the length of the public routing number of a wallet.
const WalletNumberLength = 13

// Wallet holds a single user's balance. Every user owns exactly one wallet;
// the balance is mutated only by the transfer and deposit engines under a
// row-level lock.
type Wallet struct {
	ID        string
	UserID    string
	Number    string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDebit checks if the wallet can be debited by amount without going
// negative.
func (w *Wallet) ValidateDebit(amount decimal.Decimal) error {
	if w.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the new balance after a debit.
func (w *Wallet) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Sub(amount)
}

// ApplyCredit returns the new balance after a credit.
func (w *Wallet) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(amount)
}
