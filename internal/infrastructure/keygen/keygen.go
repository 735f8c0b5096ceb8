// Package keygen produces the external-facing identifiers and credential
// material of the ledger: transaction references, wallet numbers and opaque
// API keys. All randomness comes from crypto/rand; uniqueness of generated
// values is enforced by unique indexes in the store, not by the generator.
package keygen

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/nnamdi/kobolet/internal/domain"
)

// Generator implements usecase.ReferenceGenerator and
// usecase.CredentialGenerator.
type Generator struct {
	keyPrefix string
}

// New creates a Generator. keyPrefix is prepended to API key material
// (e.g. "sk_live_").
func New(keyPrefix string) *Generator {
	return &Generator{keyPrefix: keyPrefix}
}

// Reference returns a transaction reference of the form
// {PREFIX}_{unix_timestamp}_{random_hex}.
func (g *Generator) Reference(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UTC().Unix(), randomHex(8))
}

// WalletNumber returns a random 13-digit routing number.
func (g *Generator) WalletNumber() string {
	digits := make([]byte, domain.WalletNumberLength)

	random := make([]byte, domain.WalletNumberLength)
	mustRead(random)

	for i := range digits {
		digits[i] = '0' + random[i]%10
	}

	return string(digits)
}

// NewKey returns fresh API key material and its hash. The plain key is shown
// to the caller once; only the hash is ever stored.
func (g *Generator) NewKey() (plain, hash string) {
	random := make([]byte, 32)
	mustRead(random)

	plain = g.keyPrefix + base64.RawURLEncoding.EncodeToString(random)

	return plain, g.Hash(plain)
}

// Hash returns the irreversible hex-encoded SHA-256 of the key material.
func (g *Generator) Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Verify compares key material against a stored hash in constant time.
func (g *Generator) Verify(plain, hash string) bool {
	return hmac.Equal([]byte(g.Hash(plain)), []byte(hash))
}

func randomHex(n int) string {
	b := make([]byte, n)
	mustRead(b)

	return hex.EncodeToString(b)
}

// mustRead fills b from crypto/rand. rand.Read only fails when the platform
// source is broken, which is a programming-contract violation here.
func mustRead(b []byte) {
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("keygen: crypto/rand unavailable: %v", err))
	}
}
