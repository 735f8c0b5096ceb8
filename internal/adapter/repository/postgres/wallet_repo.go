package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

const walletColumns = `id, user_id, number, balance, created_at, updated_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Number,
		&w.Balance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateTx inserts a wallet inside an open transaction.
func (r *WalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, number, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		wallet.ID,
		wallet.UserID,
		wallet.Number,
		wallet.Balance,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)

	return err
}

// GetByUserID retrieves the user's wallet.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, userID))
}

// GetByNumber retrieves a wallet by its public routing number inside an open
// transaction.
func (r *WalletRepository) GetByNumber(ctx context.Context, tx usecase.Transaction, number string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE number = $1`
	return scanWallet(tx.(*Tx).PgxTx().QueryRow(ctx, query, number))
}

// GetByIDForUpdate retrieves a wallet by ID with a FOR UPDATE row lock.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	return scanWallet(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// GetByIDsForUpdate locks multiple wallets in one statement. ORDER BY id makes
// PostgreSQL acquire the row locks in ascending ID order, which is what keeps
// concurrent opposing transfers deadlock-free.
func (r *WalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.(*Tx).PgxTx().Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		err := rows.Scan(
			&w.ID,
			&w.UserID,
			&w.Number,
			&w.Balance,
			&w.CreatedAt,
			&w.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, &w)
	}

	return wallets, rows.Err()
}

// UpdateBalance writes a new balance inside an open transaction. The caller
// holds the row lock and computed the balance from the locked row.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE wallets SET balance = $2, updated_at = $3 WHERE id = $1`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, balance, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}
