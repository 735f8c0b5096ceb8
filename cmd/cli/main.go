// Command kobolet-cli is the operator tool. It talks to the same database and
// payment provider as the server, so sweeps and verifications can run even
// when the API is down.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	postgresRepo "github.com/nnamdi/kobolet/internal/adapter/repository/postgres"
	redisRepo "github.com/nnamdi/kobolet/internal/adapter/repository/redis"
	"github.com/nnamdi/kobolet/internal/infrastructure/config"
	"github.com/nnamdi/kobolet/internal/infrastructure/keygen"
	"github.com/nnamdi/kobolet/internal/infrastructure/logger"
	"github.com/nnamdi/kobolet/internal/infrastructure/paystack"
	"github.com/nnamdi/kobolet/internal/infrastructure/postgres"
	"github.com/nnamdi/kobolet/internal/infrastructure/redis"
	"github.com/nnamdi/kobolet/internal/usecase"
)

var timeout time.Duration

func main() {
	rootCmd := &cobra.Command{
		Use:   "kobolet-cli",
		Short: "Kobolet operator tool",
		Long:  `Operational commands for the Kobolet wallet ledger: deposit verification and reconciliation sweeps.`,
	}

	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Command timeout")

	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit operations",
	}
	depositCmd.AddCommand(&cobra.Command{
		Use:   "verify <reference>",
		Short: "Verify a deposit against the provider and credit it if settled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDepositVerify(args[0])
		},
	})

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reconciliation sweeps",
	}
	sweepCmd.AddCommand(&cobra.Command{
		Use:   "stale",
		Short: "Expire pending deposits older than the deposit timeout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(func(ctx context.Context, uc *usecase.SweeperUseCase) error {
				n, err := uc.ExpireStaleDeposits(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("expired %d stale deposits\n", n)
				return nil
			})
		},
	})
	sweepCmd.AddCommand(&cobra.Command{
		Use:   "orphans",
		Short: "Compensate transfer_outs whose paired credit never settled",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(func(ctx context.Context, uc *usecase.SweeperUseCase) error {
				n, err := uc.CompensateOrphanedTransfers(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("compensated %d orphaned transfers\n", n)
				return nil
			})
		},
	})

	rootCmd.AddCommand(depositCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type env struct {
	cfg *config.Config
	log zerolog.Logger

	txManager  *postgresRepo.TxManager
	walletRepo *postgresRepo.WalletRepository
	txnRepo    *postgresRepo.TransactionRepository
	retrier    *postgresRepo.Retrier
	cache      *redisRepo.Cache
	provider   *paystack.Client
	keyGen     *keygen.Generator

	closers []func()
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &env{
		cfg:        cfg,
		log:        log,
		txManager:  postgresRepo.NewTxManager(pool),
		walletRepo: postgresRepo.NewWalletRepository(pool),
		txnRepo:    postgresRepo.NewTransactionRepository(pool),
		retrier:    postgresRepo.NewRetrier(log),
		cache:      redisRepo.NewCache(redisClient),
		provider: paystack.New(paystack.Config{
			BaseURL:       cfg.PaystackBaseURL,
			SecretKey:     cfg.PaystackSecretKey,
			WebhookSecret: cfg.PaystackWebhookSecret,
			CallbackURL:   cfg.CallbackURL,
		}),
		keyGen: keygen.New(cfg.APIKeyPrefix),
		closers: []func(){
			pool.Close,
			func() { redisClient.Close() },
		},
	}, nil
}

func runDepositVerify(reference string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	depositUC := usecase.NewDepositUseCase(
		e.txManager,
		e.walletRepo,
		e.txnRepo,
		e.provider,
		postgresRepo.NewULIDGenerator(),
		e.keyGen,
		e.cache,
		nil,
	)

	credited, err := depositUC.Verify(ctx, reference)
	if err != nil {
		return err
	}

	if credited {
		fmt.Printf("%s: credited\n", reference)
	} else {
		fmt.Printf("%s: no credit applied (not settled, or already credited)\n", reference)
	}
	return nil
}

func runSweep(fn func(ctx context.Context, uc *usecase.SweeperUseCase) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	sweeperUC := usecase.NewSweeperUseCase(
		e.txManager,
		e.walletRepo,
		e.txnRepo,
		e.retrier,
		e.cache,
		nil,
		e.log,
		e.cfg.DepositPendingTimeout,
	)

	return fn(ctx, sweeperUC)
}
