package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/infrastructure/metrics"
)

// SweeperUseCase is the reconciliation safety net: it expires deposits stuck
// in pending and compensates transfers whose credit leg never committed. The
// normal transfer path writes both legs in one atomic unit, so orphans only
// appear after manual data repair or a crash around partial external side
// effects.
type SweeperUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	txnRepo    TransactionRepository
	retrier    Retrier
	cache      Cache
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	// DepositTimeout is how long a deposit may stay pending before it is
	// swept to failed.
	DepositTimeout time.Duration
	// BatchSize bounds how many orphans one pass will touch.
	BatchSize int
}

// NewSweeperUseCase creates a new SweeperUseCase.
func NewSweeperUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	retrier Retrier,
	cache Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
	depositTimeout time.Duration,
) *SweeperUseCase {
	return &SweeperUseCase{
		txManager:      txManager,
		walletRepo:     walletRepo,
		txnRepo:        txnRepo,
		retrier:        retrier,
		cache:          cache,
		metrics:        m,
		logger:         logger,
		DepositTimeout: depositTimeout,
		BatchSize:      100,
	}
}

// ExpireStaleDeposits marks deposits pending for longer than DepositTimeout
// as failed, bounding how long a stuck external payment can block a
// user-visible status.
func (uc *SweeperUseCase) ExpireStaleDeposits(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-uc.DepositTimeout)

	count, err := uc.txnRepo.FailStaleDeposits(ctx, cutoff, now)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.SweepErrors.WithLabelValues("stale_deposits").Inc()
		}
		return 0, err
	}

	if count > 0 {
		uc.logger.Info().Int64("count", count).Msg("expired stale pending deposits")
		if uc.metrics != nil {
			uc.metrics.SweepDepositsExpired.Add(float64(count))
		}
	}

	return count, nil
}

// CompensateOrphanedTransfers refunds transfer_out rows that committed
// without a successful paired transfer_in. Only successful transfer_out rows
// are candidates: the failed status written by a compensation is the durable
// marker that keeps re-runs from refunding twice.
func (uc *SweeperUseCase) CompensateOrphanedTransfers(ctx context.Context) (int, error) {
	candidates, err := uc.txnRepo.ListOrphanedTransferOuts(ctx, uc.BatchSize)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.SweepErrors.WithLabelValues("orphan_scan").Inc()
		}
		return 0, err
	}

	compensated := 0
	for _, candidate := range candidates {
		reference := candidate.Reference

		err := uc.retrier.Retry(ctx, func() error {
			return uc.compensate(ctx, reference)
		})
		if err != nil {
			uc.logger.Error().Err(err).Str("reference", reference).Msg("failed to compensate orphaned transfer")
			if uc.metrics != nil {
				uc.metrics.SweepErrors.WithLabelValues("compensation").Inc()
			}
			continue
		}

		compensated++
		uc.logger.Info().Str("reference", reference).Msg("compensated orphaned transfer")
	}

	if compensated > 0 && uc.metrics != nil {
		uc.metrics.SweepTransfersCompensated.Add(float64(compensated))
	}

	return compensated, nil
}

// compensate refunds a single orphaned transfer inside one database
// transaction. All conditions are re-checked under the row lock so a
// concurrent sweeper instance or an in-flight confirm cannot race it.
func (uc *SweeperUseCase) compensate(ctx context.Context, reference string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	out, err := uc.txnRepo.GetByReferenceForUpdate(txCtx, tx, reference)
	if err != nil {
		return err
	}
	if out.Kind != domain.KindTransferOut || out.Status != domain.StatusSuccess {
		// Already compensated by an earlier pass or another instance.
		return nil
	}

	in, err := uc.txnRepo.GetByReferenceForUpdate(txCtx, tx, out.InReference())
	switch {
	case err == nil:
		if in.Status == domain.StatusSuccess {
			// Pair is healthy after all; nothing to repair.
			return nil
		}
	case errors.Is(err, domain.ErrTransactionNotFound):
		in = nil
	default:
		return err
	}

	sender, err := uc.walletRepo.GetByIDForUpdate(txCtx, tx, out.WalletID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	recovery := map[string]any{
		"recovery_reason": "orphaned transfer compensated",
		"recovered_at":    now.Format(time.RFC3339),
	}

	if err := uc.walletRepo.UpdateBalance(txCtx, tx, sender.ID, sender.ApplyCredit(out.Amount), now); err != nil {
		return err
	}
	if err := uc.txnRepo.UpdateStatus(txCtx, tx, out.ID, domain.StatusFailed, recovery, now); err != nil {
		return err
	}
	if in != nil && in.Status == domain.StatusPending {
		if err := uc.txnRepo.UpdateStatus(txCtx, tx, in.ID, domain.StatusFailed, recovery, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	// Drop the cached balance like the engines do after a committed mutation.
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, balanceCacheKey(sender.ID))
	}

	return nil
}

// Run executes both passes on their intervals until the context is cancelled.
// It is started as a goroutine from main and never blocks request handlers.
func (uc *SweeperUseCase) Run(ctx context.Context, staleInterval, orphanInterval time.Duration) {
	uc.logger.Info().
		Dur("stale_interval", staleInterval).
		Dur("orphan_interval", orphanInterval).
		Msg("starting reconciliation sweeper")

	staleTicker := time.NewTicker(staleInterval)
	defer staleTicker.Stop()

	orphanTicker := time.NewTicker(orphanInterval)
	defer orphanTicker.Stop()

	for {
		select {
		case <-staleTicker.C:
			if _, err := uc.ExpireStaleDeposits(ctx); err != nil {
				uc.logger.Error().Err(err).Msg("stale deposit sweep failed")
			}
		case <-orphanTicker.C:
			if _, err := uc.CompensateOrphanedTransfers(ctx); err != nil {
				uc.logger.Error().Err(err).Msg("orphan compensation sweep failed")
			}
		case <-ctx.Done():
			uc.logger.Info().Msg("stopping reconciliation sweeper")
			return
		}
	}
}
