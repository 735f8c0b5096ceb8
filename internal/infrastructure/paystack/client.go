// Package paystack is a thin client for the Paystack transaction API. It
// covers the three touchpoints the ledger needs: initializing a checkout,
// verifying a reference and authenticating webhook deliveries.
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 15 * time.Second

// Client calls the Paystack REST API.
type Client struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	callbackURL   string
	httpClient    *http.Client
}

// Config holds Paystack client settings.
type Config struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	CallbackURL   string
}

// New creates a Paystack client.
func New(cfg Config) *Client {
	return &Client{
		baseURL:       cfg.BaseURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		callbackURL:   cfg.CallbackURL,
		httpClient:    &http.Client{Timeout: defaultTimeout},
	}
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// Initialize creates a Paystack checkout for the reference and returns the
// authorization URL the payer is redirected to.
func (c *Client) Initialize(ctx context.Context, email string, amount decimal.Decimal, reference string) (string, error) {
	body, err := json.Marshal(initializeRequest{
		Email:       email,
		Amount:      toMinorUnit(amount),
		Reference:   reference,
		CallbackURL: c.callbackURL,
	})
	if err != nil {
		return "", fmt.Errorf("encode initialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build initialize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	var out initializeResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("initialize transaction: %w", err)
	}
	if !out.Status {
		return "", fmt.Errorf("initialize transaction: provider rejected request: %s", out.Message)
	}

	return out.Data.AuthorizationURL, nil
}

// Verify queries Paystack for the settlement state of a reference. It
// returns true only when the provider reports the charge as successful.
func (c *Client) Verify(ctx context.Context, reference string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return false, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	var out verifyResponse
	if err := c.do(req, &out); err != nil {
		return false, fmt.Errorf("verify transaction: %w", err)
	}
	if !out.Status {
		return false, fmt.Errorf("verify transaction: provider rejected request: %s", out.Message)
	}

	return out.Data.Status == "success", nil
}

// VerifySignature checks the x-paystack-signature header against the raw
// webhook body. Paystack signs deliveries with HMAC-SHA512 keyed by the
// webhook secret.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}

	return nil
}

// toMinorUnit converts a major-unit amount to the smallest currency unit
// Paystack expects (e.g. naira to kobo).
func toMinorUnit(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
