package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, wallet_id, kind, amount, reference, status, metadata, created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID,
		&t.WalletID,
		&t.Kind,
		&t.Amount,
		&t.Reference,
		&t.Status,
		&t.Metadata,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const insertTransactionQuery = `
	INSERT INTO transactions (id, wallet_id, kind, amount, reference, status, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Create inserts a transaction outside any caller-managed transaction.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	_, err := r.pool.Exec(ctx, insertTransactionQuery,
		txn.ID,
		txn.WalletID,
		txn.Kind,
		txn.Amount,
		txn.Reference,
		txn.Status,
		txn.Metadata,
		txn.CreatedAt,
		txn.UpdatedAt,
	)

	return err
}

// CreateTx inserts a transaction inside an open database transaction.
func (r *TransactionRepository) CreateTx(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, insertTransactionQuery,
		txn.ID,
		txn.WalletID,
		txn.Kind,
		txn.Amount,
		txn.Reference,
		txn.Status,
		txn.Metadata,
		txn.CreatedAt,
		txn.UpdatedAt,
	)

	return err
}

// GetByReference retrieves a transaction by its unique reference.
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, reference))
}

// GetByReferenceForUpdate retrieves a transaction by reference with a FOR
// UPDATE row lock, serializing concurrent status transitions on the same row.
func (r *TransactionRepository) GetByReferenceForUpdate(ctx context.Context, tx usecase.Transaction, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1 FOR UPDATE`
	return scanTransaction(tx.(*Tx).PgxTx().QueryRow(ctx, query, reference))
}

// UpdateStatus transitions a transaction to a terminal status. A non-nil
// metadata argument is merged into the stored JSONB document rather than
// replacing it.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, metadata map[string]any, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2,
		    metadata = CASE
		        WHEN $3::jsonb IS NULL THEN metadata
		        ELSE COALESCE(metadata, '{}'::jsonb) || $3::jsonb
		    END,
		    updated_at = $4
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, status, metadata, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListByWallet retrieves the wallet's transactions, newest first.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// FailStaleDeposits marks every deposit still pending past the cutoff as
// failed in one statement and returns the number of rows swept.
func (r *TransactionRepository) FailStaleDeposits(ctx context.Context, cutoff time.Time, updatedAt time.Time) (int64, error) {
	query := `
		UPDATE transactions
		SET status = 'failed',
		    metadata = COALESCE(metadata, '{}'::jsonb) || '{"failure_reason": "deposit expired"}'::jsonb,
		    updated_at = $2
		WHERE kind = 'deposit'
		  AND status = 'pending'
		  AND created_at < $1
	`

	tag, err := r.pool.Exec(ctx, query, cutoff, updatedAt)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// ListOrphanedTransferOuts returns successful debit legs whose paired credit
// leg is missing or never reached success. These are compensation candidates;
// the sweeper re-checks each one under a row lock before refunding.
func (r *TransactionRepository) ListOrphanedTransferOuts(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE t.kind = 'transfer_out'
		  AND t.status = 'success'
		  AND NOT EXISTS (
		      SELECT 1
		      FROM transactions p
		      WHERE p.reference = t.reference || '_IN'
		        AND p.status = 'success'
		  )
		ORDER BY t.created_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var txns []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(
			&t.ID,
			&t.WalletID,
			&t.Kind,
			&t.Amount,
			&t.Reference,
			&t.Status,
			&t.Metadata,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		txns = append(txns, &t)
	}

	return txns, rows.Err()
}
