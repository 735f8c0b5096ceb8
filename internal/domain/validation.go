package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrAmountTooLarge      = errors.New("amount exceeds maximum allowed")
	ErrAmountPrecision     = errors.New("amount has more than two decimal places")
	ErrInvalidWalletNumber = errors.New("invalid wallet number")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrInvalidKeyName      = errors.New("invalid api key name")
	ErrInvalidExpiry       = errors.New("invalid expiry format")
)

// Validation constants
const (
	MaxAmount      = "1000000000" // 1 billion, single-currency ledger
	MaxKeyNameLen  = 64
	MaxMetadataLen = 10240 // 10KB
)

var (
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	walletNumberRegex = regexp.MustCompile(`^[0-9]{13}$`)
)

// ValidateAmount validates a monetary amount: positive, at most two fractional
// digits, below the ledger maximum.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.Exponent() < -2 && !amount.Equal(amount.Truncate(2)) {
		return ErrAmountPrecision
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateWalletNumber validates the public 13-digit routing number.
func ValidateWalletNumber(number string) error {
	if !walletNumberRegex.MatchString(number) {
		return fmt.Errorf("%w: expected %d digits", ErrInvalidWalletNumber, WalletNumberLength)
	}
	return nil
}

// ValidateEmail validates email format.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(strings.TrimSpace(strings.ToLower(email))) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateKeyName validates an API key name.
func ValidateKeyName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxKeyNameLen {
		return ErrInvalidKeyName
	}
	return nil
}

// ValidatePagination clamps pagination parameters to sane bounds.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 100
	const defaultPageSize = 50

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
