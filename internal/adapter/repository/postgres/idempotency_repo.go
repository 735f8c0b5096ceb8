package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// IdempotencyRepository implements usecase.IdempotencyRepository.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

// Exists reports whether the key is already consumed for the operation. It
// runs inside the caller's transaction so the read and the eventual insert
// see the same snapshot.
func (r *IdempotencyRepository) Exists(ctx context.Context, tx usecase.Transaction, key string, operation domain.Operation) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM idempotency_keys WHERE key = $1 AND operation = $2)`

	var exists bool
	err := tx.(*Tx).PgxTx().QueryRow(ctx, query, key, operation).Scan(&exists)
	return exists, err
}

// CreateTx consumes the key. The unique constraint on (key, operation)
// backstops concurrent consumers: the loser surfaces
// domain.ErrDuplicateOperation and its whole transaction rolls back.
func (r *IdempotencyRepository) CreateTx(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_keys (id, key, operation, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		record.ID,
		record.Key,
		record.Operation,
		record.UserID,
		record.CreatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrDuplicateOperation
	}

	return err
}
