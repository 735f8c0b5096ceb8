package domain

import "time"

// Operation is the kind of externally-retryable operation an idempotency key
// guards.
type Operation string

const (
	OperationTransfer Operation = "transfer"
)

// IdempotencyRecord marks a client-supplied idempotency key as consumed for a
// given operation kind. Records are created in the same database transaction
// as the operation they guard and are never updated or deleted.
type IdempotencyRecord struct {
	ID        string
	Key       string
	Operation Operation
	UserID    string
	CreatedAt time.Time
}
