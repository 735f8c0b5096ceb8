package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nnamdi/kobolet/internal/adapter/http/dto"
	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/usecase"
	"github.com/nnamdi/kobolet/internal/usecase/mocks"
)

// verifierStub accepts exactly one signature value.
type verifierStub struct {
	want string
}

func (v *verifierStub) VerifySignature(body []byte, signature string) bool {
	return signature == v.want
}

type depositHandlerFixture struct {
	handler    *DepositHandler
	walletRepo *mocks.MockWalletRepository
	txnRepo    *mocks.MockTransactionRepository
	userRepo   *mocks.MockUserRepository
	provider   *mocks.MockPaymentProvider
}

func newDepositHandlerFixture() *depositHandlerFixture {
	walletRepo := mocks.NewMockWalletRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	userRepo := mocks.NewMockUserRepository()
	provider := mocks.NewMockPaymentProvider()
	txManager := mocks.NewMockTransactionManager()
	cache := mocks.NewMockCache()

	depositUC := usecase.NewDepositUseCase(
		txManager,
		walletRepo,
		txnRepo,
		provider,
		mocks.NewMockIDGenerator(),
		mocks.NewMockReferenceGenerator(),
		cache,
		nil,
	)
	walletUC := usecase.NewWalletUseCase(walletRepo, txnRepo, cache)
	userUC := usecase.NewUserUseCase(txManager, userRepo, walletRepo, mocks.NewMockIDGenerator(), mocks.NewMockReferenceGenerator())

	return &depositHandlerFixture{
		handler: NewDepositHandler(
			depositUC,
			walletUC,
			userUC,
			&verifierStub{want: "good-signature"},
			nil,
			zerolog.Nop(),
		),
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		userRepo:   userRepo,
		provider:   provider,
	}
}

func (f *depositHandlerFixture) seedUserWithWallet(userID, walletID string, balance int64) {
	f.userRepo.Seed(&domain.User{ID: userID, Email: userID + "@example.com"})
	f.walletRepo.Seed(&domain.Wallet{
		ID:      walletID,
		UserID:  userID,
		Number:  "1000000000001",
		Balance: decimal.NewFromInt(balance),
	})
}

func webhookPayload(t *testing.T, event, reference string) []byte {
	t.Helper()
	var e dto.WebhookEvent
	e.Event = event
	e.Data.Reference = reference
	body, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return body
}

func TestDepositHandler_Initiate(t *testing.T) {
	f := newDepositHandlerFixture()
	f.seedUserWithWallet("user-1", "wal-1", 0)

	body, _ := json.Marshal(dto.InitiateDepositRequest{Amount: decimal.NewFromInt(500)})
	req := httptest.NewRequest(http.MethodPost, "/wallet/deposit", bytes.NewReader(body))
	req = withIdentity(req, "user-1")
	rec := httptest.NewRecorder()

	f.handler.Initiate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.InitiateDepositResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Reference == "" || resp.AuthorizationURL == "" {
		t.Fatalf("expected reference and checkout URL, got %+v", resp)
	}
	if f.txnRepo.ByReference(resp.Reference) == nil {
		t.Fatalf("expected pending transaction for %s", resp.Reference)
	}
}

func TestDepositHandler_Webhook_Settles(t *testing.T) {
	f := newDepositHandlerFixture()
	f.seedUserWithWallet("user-1", "wal-1", 0)
	f.txnRepo.Seed(&domain.Transaction{
		ID:        "txn-1",
		WalletID:  "wal-1",
		Kind:      domain.KindDeposit,
		Amount:    decimal.NewFromInt(500),
		Reference: "DEP_reference",
		Status:    domain.StatusPending,
	})

	body := webhookPayload(t, "charge.success", "DEP_reference")
	req := httptest.NewRequest(http.MethodPost, "/wallet/paystack/webhook", bytes.NewReader(body))
	req.Header.Set("x-paystack-signature", "good-signature")
	rec := httptest.NewRecorder()

	f.handler.Webhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !f.walletRepo.Wallet("wal-1").Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected wallet credited, got %s", f.walletRepo.Wallet("wal-1").Balance)
	}
	if f.txnRepo.ByReference("DEP_reference").Status != domain.StatusSuccess {
		t.Fatalf("expected transaction settled")
	}
}

func TestDepositHandler_Webhook_BadSignature(t *testing.T) {
	f := newDepositHandlerFixture()
	f.seedUserWithWallet("user-1", "wal-1", 0)
	f.txnRepo.Seed(&domain.Transaction{
		ID:        "txn-1",
		WalletID:  "wal-1",
		Kind:      domain.KindDeposit,
		Amount:    decimal.NewFromInt(500),
		Reference: "DEP_reference",
		Status:    domain.StatusPending,
	})

	body := webhookPayload(t, "charge.success", "DEP_reference")
	req := httptest.NewRequest(http.MethodPost, "/wallet/paystack/webhook", bytes.NewReader(body))
	req.Header.Set("x-paystack-signature", "forged")
	rec := httptest.NewRecorder()

	f.handler.Webhook(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !f.walletRepo.Wallet("wal-1").Balance.IsZero() {
		t.Fatalf("expected no credit on forged webhook")
	}
}

func TestDepositHandler_Webhook_IgnoresOtherEvents(t *testing.T) {
	f := newDepositHandlerFixture()
	f.seedUserWithWallet("user-1", "wal-1", 0)
	f.txnRepo.Seed(&domain.Transaction{
		ID:        "txn-1",
		WalletID:  "wal-1",
		Kind:      domain.KindDeposit,
		Amount:    decimal.NewFromInt(500),
		Reference: "DEP_reference",
		Status:    domain.StatusPending,
	})

	body := webhookPayload(t, "charge.dispute.create", "DEP_reference")
	req := httptest.NewRequest(http.MethodPost, "/wallet/paystack/webhook", bytes.NewReader(body))
	req.Header.Set("x-paystack-signature", "good-signature")
	rec := httptest.NewRecorder()

	f.handler.Webhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for ignored event, got %d", rec.Code)
	}
	if !f.walletRepo.Wallet("wal-1").Balance.IsZero() {
		t.Fatalf("expected no credit for ignored event")
	}
}

func TestDepositHandler_Webhook_UnknownReference(t *testing.T) {
	f := newDepositHandlerFixture()

	body := webhookPayload(t, "charge.success", "DEP_missing")
	req := httptest.NewRequest(http.MethodPost, "/wallet/paystack/webhook", bytes.NewReader(body))
	req.Header.Set("x-paystack-signature", "good-signature")
	rec := httptest.NewRecorder()

	f.handler.Webhook(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDepositHandler_Status(t *testing.T) {
	f := newDepositHandlerFixture()
	f.seedUserWithWallet("user-1", "wal-1", 0)
	f.txnRepo.Seed(&domain.Transaction{
		ID:        "txn-1",
		WalletID:  "wal-1",
		Kind:      domain.KindDeposit,
		Amount:    decimal.NewFromInt(500),
		Reference: "DEP_reference",
		Status:    domain.StatusPending,
	})

	req := httptest.NewRequest(http.MethodGet, "/wallet/deposit/DEP_reference/status", nil)
	req = withIdentity(req, "user-1")
	req = setChiURLParam(req, "reference", "DEP_reference")
	rec := httptest.NewRecorder()

	f.handler.Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.StatusPending) {
		t.Fatalf("expected pending status, got %+v", resp)
	}
}

func TestDepositHandler_Verify(t *testing.T) {
	f := newDepositHandlerFixture()
	f.seedUserWithWallet("user-1", "wal-1", 0)
	f.txnRepo.Seed(&domain.Transaction{
		ID:        "txn-1",
		WalletID:  "wal-1",
		Kind:      domain.KindDeposit,
		Amount:    decimal.NewFromInt(500),
		Reference: "DEP_reference",
		Status:    domain.StatusPending,
	})

	req := httptest.NewRequest(http.MethodGet, "/wallet/deposit/DEP_reference/verify", nil)
	req = withIdentity(req, "user-1")
	req = setChiURLParam(req, "reference", "DEP_reference")
	rec := httptest.NewRecorder()

	f.handler.Verify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.VerifyDepositResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Credited {
		t.Fatalf("expected deposit credited, got %+v", resp)
	}
	if !f.walletRepo.Wallet("wal-1").Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected wallet credited, got %s", f.walletRepo.Wallet("wal-1").Balance)
	}
}
