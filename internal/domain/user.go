package domain

import (
	"context"
	"time"
)

// User is the owner of a wallet.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Capabilities granted to an authenticated identity. A JWT session carries all
// of them; an API key carries the subset chosen at creation.
const (
	CapabilityRead     = "read"
	CapabilityDeposit  = "deposit"
	CapabilityTransfer = "transfer"
)

// AllCapabilities returns every capability. Session tokens are granted all of
// them.
func AllCapabilities() []string {
	return []string{CapabilityRead, CapabilityDeposit, CapabilityTransfer}
}

// Identity is the authenticated caller as resolved by the auth middleware.
type Identity struct {
	UserID       string
	Capabilities []string
}

// Can reports whether the identity holds the capability.
func (i Identity) Can(capability string) bool {
	for _, c := range i.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity attaches an authenticated identity to the context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}
