package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nnamdi/kobolet/internal/domain"
)

// APIKeyRepository implements usecase.APIKeyRepository.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepository creates a new APIKeyRepository.
func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

const apiKeyColumns = `id, user_id, key_hash, name, permissions, expires_at, revoked, created_at, updated_at`

func scanAPIKey(row pgx.Row) (*domain.APIKey, error) {
	var k domain.APIKey
	err := row.Scan(
		&k.ID,
		&k.UserID,
		&k.KeyHash,
		&k.Name,
		&k.Permissions,
		&k.ExpiresAt,
		&k.Revoked,
		&k.CreatedAt,
		&k.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// Create inserts an API key. The unique (user_id, name) index on active keys
// surfaces as domain.ErrKeyNameTaken.
func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	query := `
		INSERT INTO api_keys (id, user_id, key_hash, name, permissions, expires_at, revoked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		key.ID,
		key.UserID,
		key.KeyHash,
		key.Name,
		key.Permissions,
		key.ExpiresAt,
		key.Revoked,
		key.CreatedAt,
		key.UpdatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrKeyNameTaken
	}

	return err
}

// GetByHash retrieves an API key by the hash of its material.
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = $1`
	return scanAPIKey(r.pool.QueryRow(ctx, query, keyHash))
}

// GetByID retrieves one of the user's keys. The owner scope is part of the
// predicate so one user cannot read another's key.
func (r *APIKeyRepository) GetByID(ctx context.Context, userID, id string) (*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1 AND user_id = $2`
	return scanAPIKey(r.pool.QueryRow(ctx, query, id, userID))
}

// ListByUser retrieves all of the user's keys, including revoked and expired
// ones.
func (r *APIKeyRepository) ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	query := `
		SELECT ` + apiKeyColumns + `
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		err := rows.Scan(
			&k.ID,
			&k.UserID,
			&k.KeyHash,
			&k.Name,
			&k.Permissions,
			&k.ExpiresAt,
			&k.Revoked,
			&k.CreatedAt,
			&k.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		keys = append(keys, &k)
	}

	return keys, rows.Err()
}

// CountActive counts the user's keys that are neither revoked nor expired.
func (r *APIKeyRepository) CountActive(ctx context.Context, userID string, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM api_keys
		WHERE user_id = $1
		  AND NOT revoked
		  AND expires_at > $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, userID, now).Scan(&count)
	return count, err
}

// Revoke permanently disables the key. The owner scope is part of the
// predicate so one user cannot revoke another's key.
func (r *APIKeyRepository) Revoke(ctx context.Context, userID, id string, updatedAt time.Time) error {
	query := `
		UPDATE api_keys
		SET revoked = TRUE, updated_at = $3
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, userID, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAPIKeyNotFound
	}

	return nil
}
