package usecase

import (
	"context"
	"time"

	"github.com/nnamdi/kobolet/internal/domain"
)

// APIKeyUseCase manages long-lived credentials for service-to-service calls.
type APIKeyUseCase struct {
	keyRepo        APIKeyRepository
	idGen          IDGenerator
	credGen        CredentialGenerator
	maxKeysPerUser int
}

// NewAPIKeyUseCase creates a new APIKeyUseCase.
func NewAPIKeyUseCase(keyRepo APIKeyRepository, idGen IDGenerator, credGen CredentialGenerator, maxKeysPerUser int) *APIKeyUseCase {
	return &APIKeyUseCase{
		keyRepo:        keyRepo,
		idGen:          idGen,
		credGen:        credGen,
		maxKeysPerUser: maxKeysPerUser,
	}
}

// CreateKeyInput represents input for creating an API key.
type CreateKeyInput struct {
	UserID      string
	Name        string
	Permissions []string
	Expiry      string // shorthand: 1H, 1D, 1M, 1Y
}

// Create mints a new API key. The plain key material is returned exactly once;
// only its hash is stored.
func (uc *APIKeyUseCase) Create(ctx context.Context, input CreateKeyInput) (string, *domain.APIKey, error) {
	if err := domain.ValidateKeyName(input.Name); err != nil {
		return "", nil, err
	}
	if err := domain.ValidatePermissions(input.Permissions); err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	expiresAt, err := domain.ParseExpiry(input.Expiry, now)
	if err != nil {
		return "", nil, err
	}

	active, err := uc.keyRepo.CountActive(ctx, input.UserID, now)
	if err != nil {
		return "", nil, err
	}
	if active >= uc.maxKeysPerUser {
		return "", nil, domain.ErrAPIKeyLimitReached
	}

	plain, hash := uc.credGen.NewKey()

	key := &domain.APIKey{
		ID:          uc.idGen.Generate(),
		UserID:      input.UserID,
		KeyHash:     hash,
		Name:        input.Name,
		Permissions: input.Permissions,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.keyRepo.Create(ctx, key); err != nil {
		return "", nil, err
	}

	return plain, key, nil
}

// Rollover replaces an expired or revoked key with a fresh one carrying the
// same name and permissions. The old key is revoked if it was merely expired,
// so its name frees up for the replacement.
func (uc *APIKeyUseCase) Rollover(ctx context.Context, userID, keyID, expiry string) (string, *domain.APIKey, error) {
	old, err := uc.keyRepo.GetByID(ctx, userID, keyID)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	if old.IsValid(now) {
		return "", nil, domain.ErrKeyStillActive
	}

	// Reject a bad expiry before touching the old key.
	if _, err := domain.ParseExpiry(expiry, now); err != nil {
		return "", nil, err
	}

	if !old.Revoked {
		if err := uc.keyRepo.Revoke(ctx, userID, keyID, now); err != nil {
			return "", nil, err
		}
	}

	return uc.Create(ctx, CreateKeyInput{
		UserID:      userID,
		Name:        old.Name,
		Permissions: old.Permissions,
		Expiry:      expiry,
	})
}

// Authenticate resolves plain key material to a valid API key.
func (uc *APIKeyUseCase) Authenticate(ctx context.Context, plain string) (*domain.APIKey, error) {
	key, err := uc.keyRepo.GetByHash(ctx, uc.credGen.Hash(plain))
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	// The hash lookup already matched; re-verify in constant time against the
	// stored hash before trusting the credential.
	if !uc.credGen.Verify(plain, key.KeyHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !key.IsValid(time.Now().UTC()) {
		return nil, domain.ErrInvalidCredentials
	}

	return key, nil
}

// List returns all of the user's keys, including revoked and expired ones.
func (uc *APIKeyUseCase) List(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	return uc.keyRepo.ListByUser(ctx, userID)
}

// Revoke permanently disables one of the user's keys.
func (uc *APIKeyUseCase) Revoke(ctx context.Context, userID, keyID string) error {
	return uc.keyRepo.Revoke(ctx, userID, keyID, time.Now().UTC())
}
