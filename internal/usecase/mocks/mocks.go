// Package mocks contains hand-written test doubles for the usecase
// interfaces. Each mock keeps an in-memory default behavior and exposes
// per-method Func hooks for overriding it in a single test.
package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet

	CreateTxFunc          func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error
	GetByUserIDFunc       func(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByNumberFunc       func(ctx context.Context, tx usecase.Transaction, number string) (*domain.Wallet, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.Wallet),
	}
}

// Seed stores a wallet directly, bypassing any Func override.
func (m *MockWalletRepository) Seed(wallet *domain.Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.ID] = wallet
}

// Wallet returns the stored wallet by ID for assertions.
func (m *MockWalletRepository) Wallet(id string) *domain.Wallet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wallets[id]
}

func (m *MockWalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, wallet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.ID] = wallet
	return nil
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.wallets {
		if w.UserID == userID {
			return w, nil
		}
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByNumber(ctx context.Context, tx usecase.Transaction, number string) (*domain.Wallet, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, tx, number)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.wallets {
		if w.Number == number {
			return w, nil
		}
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[id]; ok {
		return w, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var wallets []*domain.Wallet
	for _, id := range ids {
		if w, ok := m.wallets[id]; ok {
			wallets = append(wallets, w)
		}
	}
	return wallets, nil
}

func (m *MockWalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wallets[id]; ok {
		w.Balance = balance
		w.UpdatedAt = updatedAt
	}
	return nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.Transaction

	CreateFunc                   func(ctx context.Context, txn *domain.Transaction) error
	CreateTxFunc                 func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByReferenceFunc           func(ctx context.Context, reference string) (*domain.Transaction, error)
	GetByReferenceForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, reference string) (*domain.Transaction, error)
	UpdateStatusFunc             func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, metadata map[string]any, updatedAt time.Time) error
	ListByWalletFunc             func(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error)
	FailStaleDepositsFunc        func(ctx context.Context, cutoff time.Time, updatedAt time.Time) (int64, error)
	ListOrphanedTransferOutsFunc func(ctx context.Context, limit int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txns: make(map[string]*domain.Transaction),
	}
}

// Seed stores a transaction directly, bypassing any Func override.
func (m *MockTransactionRepository) Seed(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
}

// ByReference returns the stored transaction by reference for assertions.
func (m *MockTransactionRepository) ByReference(reference string) *domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.txns {
		if t.Reference == reference {
			return t
		}
	}
	return nil
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) CreateTx(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, txn)
	}
	return m.Create(ctx, txn)
}

func (m *MockTransactionRepository) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	if m.GetByReferenceFunc != nil {
		return m.GetByReferenceFunc(ctx, reference)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.txns {
		if t.Reference == reference {
			return t, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByReferenceForUpdate(ctx context.Context, tx usecase.Transaction, reference string) (*domain.Transaction, error) {
	if m.GetByReferenceForUpdateFunc != nil {
		return m.GetByReferenceForUpdateFunc(ctx, tx, reference)
	}
	return m.GetByReference(ctx, reference)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, metadata map[string]any, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, metadata, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txns[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = status
	t.UpdatedAt = updatedAt
	if metadata != nil {
		if t.Metadata == nil {
			t.Metadata = make(map[string]any)
		}
		for k, v := range metadata {
			t.Metadata[k] = v
		}
	}
	return nil
}

func (m *MockTransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByWalletFunc != nil {
		return m.ListByWalletFunc(ctx, walletID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, t := range m.txns {
		if t.WalletID == walletID {
			txns = append(txns, t)
		}
	}
	return txns, nil
}

func (m *MockTransactionRepository) FailStaleDeposits(ctx context.Context, cutoff time.Time, updatedAt time.Time) (int64, error) {
	if m.FailStaleDepositsFunc != nil {
		return m.FailStaleDepositsFunc(ctx, cutoff, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, t := range m.txns {
		if t.Kind == domain.KindDeposit && t.Status == domain.StatusPending && t.CreatedAt.Before(cutoff) {
			t.Status = domain.StatusFailed
			t.UpdatedAt = updatedAt
			count++
		}
	}
	return count, nil
}

func (m *MockTransactionRepository) ListOrphanedTransferOuts(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	if m.ListOrphanedTransferOutsFunc != nil {
		return m.ListOrphanedTransferOutsFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	byRef := make(map[string]*domain.Transaction, len(m.txns))
	for _, t := range m.txns {
		byRef[t.Reference] = t
	}
	var orphans []*domain.Transaction
	for _, t := range m.txns {
		if t.Kind != domain.KindTransferOut || t.Status != domain.StatusSuccess {
			continue
		}
		in, ok := byRef[t.InReference()]
		if !ok || in.Status != domain.StatusSuccess {
			orphans = append(orphans, t)
		}
		if len(orphans) == limit {
			break
		}
	}
	return orphans, nil
}

// MockIdempotencyRepository is a mock implementation of IdempotencyRepository.
type MockIdempotencyRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.IdempotencyRecord

	ExistsFunc   func(ctx context.Context, tx usecase.Transaction, key string, operation domain.Operation) (bool, error)
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error
}

func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{
		records: make(map[string]*domain.IdempotencyRecord),
	}
}

func idemKey(key string, operation domain.Operation) string {
	return key + "|" + string(operation)
}

func (m *MockIdempotencyRepository) Exists(ctx context.Context, tx usecase.Transaction, key string, operation domain.Operation) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, tx, key, operation)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[idemKey(key, operation)]
	return ok, nil
}

func (m *MockIdempotencyRepository) CreateTx(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := idemKey(record.Key, record.Operation)
	if _, ok := m.records[k]; ok {
		return domain.ErrDuplicateOperation
	}
	m.records[k] = record
	return nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateTxFunc   func(ctx context.Context, tx usecase.Transaction, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// Seed inserts a user directly, bypassing CreateTx.
func (m *MockUserRepository) Seed(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) CreateTx(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// MockAPIKeyRepository is a mock implementation of APIKeyRepository.
type MockAPIKeyRepository struct {
	mu   sync.RWMutex
	keys map[string]*domain.APIKey

	CreateFunc      func(ctx context.Context, key *domain.APIKey) error
	GetByHashFunc   func(ctx context.Context, keyHash string) (*domain.APIKey, error)
	GetByIDFunc     func(ctx context.Context, userID, id string) (*domain.APIKey, error)
	ListByUserFunc  func(ctx context.Context, userID string) ([]*domain.APIKey, error)
	CountActiveFunc func(ctx context.Context, userID string, now time.Time) (int, error)
	RevokeFunc      func(ctx context.Context, userID, id string, updatedAt time.Time) error
}

func NewMockAPIKeyRepository() *MockAPIKeyRepository {
	return &MockAPIKeyRepository{
		keys: make(map[string]*domain.APIKey),
	}
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.UserID == key.UserID && k.Name == key.Name && !k.Revoked {
			return domain.ErrKeyNameTaken
		}
	}
	m.keys[key.ID] = key
	return nil
}

func (m *MockAPIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	if m.GetByHashFunc != nil {
		return m.GetByHashFunc(ctx, keyHash)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range m.keys {
		if k.KeyHash == keyHash {
			return k, nil
		}
	}
	return nil, domain.ErrAPIKeyNotFound
}

func (m *MockAPIKeyRepository) GetByID(ctx context.Context, userID, id string) (*domain.APIKey, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.keys[id]
	if !ok || k.UserID != userID {
		return nil, domain.ErrAPIKeyNotFound
	}
	return k, nil
}

func (m *MockAPIKeyRepository) ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []*domain.APIKey
	for _, k := range m.keys {
		if k.UserID == userID {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *MockAPIKeyRepository) CountActive(ctx context.Context, userID string, now time.Time) (int, error) {
	if m.CountActiveFunc != nil {
		return m.CountActiveFunc(ctx, userID, now)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, k := range m.keys {
		if k.UserID == userID && k.IsValid(now) {
			count++
		}
	}
	return count, nil
}

func (m *MockAPIKeyRepository) Revoke(ctx context.Context, userID, id string, updatedAt time.Time) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, userID, id, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok || k.UserID != userID {
		return domain.ErrAPIKeyNotFound
	}
	k.Revoked = true
	k.UpdatedAt = updatedAt
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	mu           sync.Mutex
	counter      int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockReferenceGenerator is a mock implementation of ReferenceGenerator.
type MockReferenceGenerator struct {
	ReferenceFunc    func(prefix string) string
	WalletNumberFunc func() string
	mu               sync.Mutex
	counter          int
}

func NewMockReferenceGenerator() *MockReferenceGenerator {
	return &MockReferenceGenerator{}
}

func (m *MockReferenceGenerator) Reference(prefix string) string {
	if m.ReferenceFunc != nil {
		return m.ReferenceFunc(prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("%s_1700000000_%04x", prefix, m.counter)
}

func (m *MockReferenceGenerator) WalletNumber() string {
	if m.WalletNumberFunc != nil {
		return m.WalletNumberFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("%013d", m.counter)
}

// MockCredentialGenerator is a mock implementation of CredentialGenerator.
type MockCredentialGenerator struct {
	NewKeyFunc func() (plain, hash string)
	HashFunc   func(plain string) string
	VerifyFunc func(plain, hash string) bool
	mu         sync.Mutex
	counter    int
}

func NewMockCredentialGenerator() *MockCredentialGenerator {
	return &MockCredentialGenerator{}
}

func (m *MockCredentialGenerator) NewKey() (string, string) {
	if m.NewKeyFunc != nil {
		return m.NewKeyFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	plain := fmt.Sprintf("sk_test_%04d", m.counter)
	return plain, m.Hash(plain)
}

func (m *MockCredentialGenerator) Hash(plain string) string {
	if m.HashFunc != nil {
		return m.HashFunc(plain)
	}
	return "hash:" + plain
}

func (m *MockCredentialGenerator) Verify(plain, hash string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(plain, hash)
	}
	return m.Hash(plain) == hash
}

// MockPaymentProvider is a mock implementation of PaymentProvider.
type MockPaymentProvider struct {
	mu          sync.Mutex
	initialized []string

	InitializeFunc func(ctx context.Context, email string, amount decimal.Decimal, reference string) (string, error)
	VerifyFunc     func(ctx context.Context, reference string) (bool, error)
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

// Initialized returns the references passed to Initialize, in order.
func (m *MockPaymentProvider) Initialized() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.initialized...)
}

func (m *MockPaymentProvider) Initialize(ctx context.Context, email string, amount decimal.Decimal, reference string) (string, error) {
	m.mu.Lock()
	m.initialized = append(m.initialized, reference)
	m.mu.Unlock()
	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx, email, amount, reference)
	}
	return "https://checkout.example.com/" + reference, nil
}

func (m *MockPaymentProvider) Verify(ctx context.Context, reference string) (bool, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, reference)
	}
	return true, nil
}

// ErrCacheMiss is returned by MockCache for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockRetrier is a mock implementation of Retrier. It runs the operation
// exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
