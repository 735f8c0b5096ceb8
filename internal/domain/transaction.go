package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a balance-affecting event.
type TransactionKind string

const (
	KindDeposit     TransactionKind = "deposit"
	KindTransferIn  TransactionKind = "transfer_in"
	KindTransferOut TransactionKind = "transfer_out"
)

// TransactionStatus is the lifecycle state of a transaction. The only legal
// transitions are pending -> success and pending -> failed.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// InReferenceSuffix derives the credit-leg reference of a transfer from the
// debit-leg reference.
const InReferenceSuffix = "_IN"

// Transaction is an immutable audit record of one balance-affecting event on
// exactly one wallet.
type Transaction struct {
	ID        string
	WalletID  string
	Kind      TransactionKind
	Amount    decimal.Decimal
	Reference string
	Status    TransactionStatus
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal reports whether the transaction has reached a final status.
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusSuccess || t.Status == StatusFailed
}

// ValidateTransition checks that moving to status is legal. Terminal rows are
// append-only.
func (t *Transaction) ValidateTransition(status TransactionStatus) error {
	if t.IsTerminal() {
		return ErrInvalidStatusChange
	}
	if status != StatusSuccess && status != StatusFailed {
		return ErrInvalidStatusChange
	}
	return nil
}

// InReference returns the reference of the paired transfer_in leg.
func (t *Transaction) InReference() string {
	return t.Reference + InReferenceSuffix
}
