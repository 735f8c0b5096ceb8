package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nnamdi/kobolet/internal/adapter/http/dto"
	"github.com/nnamdi/kobolet/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status code and writes it. Details are
// forwarded only for the domain error taxonomy; anything that maps to a 500
// (store failures, provider failures) gets a generic message so internal
// error text never reaches the client.
func writeDomainError(w http.ResponseWriter, err error, message string) {
	status := mapDomainError(err)
	details := err.Error()
	if status == http.StatusInternalServerError {
		details = "internal error"
	}
	writeError(w, status, message, details)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrRecipientNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAPIKeyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountPrecision),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidWalletNumber),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrNotADeposit),
		errors.Is(err, domain.ErrMissingIdempotencyKey),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidKeyName),
		errors.Is(err, domain.ErrInvalidExpiry),
		errors.Is(err, domain.ErrKeyStillActive):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateOperation),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrKeyNameTaken),
		errors.Is(err, domain.ErrAPIKeyLimitReached):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// identityFrom extracts the authenticated identity, writing a 401 when the
// middleware did not attach one.
func identityFrom(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return domain.Identity{}, false
	}
	return identity, true
}
