package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction.
	// This prevents long-running transactions from holding row locks.
	DefaultTransactionTimeout = 10 * time.Second

	// Reference prefixes by operation.
	DepositReferencePrefix  = "DEP"
	TransferReferencePrefix = "TRF"

	// balanceCacheTTL bounds staleness of the cached balance read path.
	balanceCacheTTL = 30 * time.Second
)

func balanceCacheKey(walletID string) string {
	return "wallet:balance:" + walletID
}

func walletIDCacheKey(userID string) string {
	return "wallet:id:" + userID
}
