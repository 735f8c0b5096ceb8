package domain

import (
	"fmt"
	"strconv"
	"time"
)

// APIKey is a long-lived credential for service-to-service calls. Only the
// hash of the key material is ever stored.
type APIKey struct {
	ID          string
	UserID      string
	KeyHash     string
	Name        string
	Permissions []string
	ExpiresAt   time.Time
	Revoked     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsValid reports whether the key can still authenticate at the given time.
func (k *APIKey) IsValid(now time.Time) bool {
	return !k.Revoked && k.ExpiresAt.After(now)
}

// HasPermission reports whether the key grants the capability.
func (k *APIKey) HasPermission(permission string) bool {
	for _, p := range k.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermissions checks the requested permission set against the known
// capabilities.
func ValidatePermissions(permissions []string) error {
	if len(permissions) == 0 {
		return fmt.Errorf("%w: at least one permission is required", ErrInvalidCredentials)
	}
	for _, p := range permissions {
		switch p {
		case CapabilityRead, CapabilityDeposit, CapabilityTransfer:
		default:
			return fmt.Errorf("%w: unknown permission %q", ErrInvalidCredentials, p)
		}
	}
	return nil
}

// ParseExpiry converts an expiry shorthand ("1H", "7D", "1M", "1Y") into an
// absolute time relative to now. Months and years are approximate.
func ParseExpiry(expiry string, now time.Time) (time.Time, error) {
	if len(expiry) < 2 {
		return time.Time{}, fmt.Errorf("%w: %q, use 1H, 1D, 1M or 1Y", ErrInvalidExpiry, expiry)
	}

	quantity, err := strconv.Atoi(expiry[:len(expiry)-1])
	if err != nil || quantity <= 0 {
		return time.Time{}, fmt.Errorf("%w: %q, use 1H, 1D, 1M or 1Y", ErrInvalidExpiry, expiry)
	}

	switch expiry[len(expiry)-1] {
	case 'H':
		return now.Add(time.Duration(quantity) * time.Hour), nil
	case 'D':
		return now.AddDate(0, 0, quantity), nil
	case 'M':
		return now.AddDate(0, quantity, 0), nil
	case 'Y':
		return now.AddDate(quantity, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q, use 1H, 1D, 1M or 1Y", ErrInvalidExpiry, expiry)
	}
}
