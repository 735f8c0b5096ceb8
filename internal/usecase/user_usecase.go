package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/domain"
)

// UserUseCase handles onboarding and account removal. The wallet is created
// in the same database transaction as its owning user.
type UserUseCase struct {
	txManager  TransactionManager
	userRepo   UserRepository
	walletRepo WalletRepository
	idGen      IDGenerator
	refGen     ReferenceGenerator
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	walletRepo WalletRepository,
	idGen IDGenerator,
	refGen ReferenceGenerator,
) *UserUseCase {
	return &UserUseCase{
		txManager:  txManager,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		idGen:      idGen,
		refGen:     refGen,
	}
}

// RegisterInput represents input for registering a user.
type RegisterInput struct {
	Email string
	Name  string
}

// Register creates a user and its wallet atomically.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.Wallet, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if err := domain.ValidateEmail(email); err != nil {
		return nil, nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uc.idGen.Generate(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.userRepo.CreateTx(txCtx, tx, user); err != nil {
		return nil, nil, err
	}

	wallet := &domain.Wallet{
		ID:        uc.idGen.Generate(),
		UserID:    user.ID,
		Number:    uc.refGen.WalletNumber(),
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.walletRepo.CreateTx(txCtx, tx, wallet); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, nil, err
	}

	return user, wallet, nil
}

// Get returns a user by ID.
func (uc *UserUseCase) Get(ctx context.Context, id string) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// GetByEmail returns a user by email.
func (uc *UserUseCase) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return uc.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

// Delete removes the user with an explicit statement; wallet, transactions
// and API keys follow through the declared foreign-key cascades.
func (uc *UserUseCase) Delete(ctx context.Context, id string) error {
	return uc.userRepo.Delete(ctx, id)
}
