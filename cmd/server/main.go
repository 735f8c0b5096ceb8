package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/nnamdi/kobolet/internal/adapter/http"
	"github.com/nnamdi/kobolet/internal/adapter/http/handler"
	"github.com/nnamdi/kobolet/internal/adapter/http/middleware"
	postgresRepo "github.com/nnamdi/kobolet/internal/adapter/repository/postgres"
	redisRepo "github.com/nnamdi/kobolet/internal/adapter/repository/redis"
	"github.com/nnamdi/kobolet/internal/infrastructure/auth"
	"github.com/nnamdi/kobolet/internal/infrastructure/config"
	"github.com/nnamdi/kobolet/internal/infrastructure/keygen"
	"github.com/nnamdi/kobolet/internal/infrastructure/logger"
	"github.com/nnamdi/kobolet/internal/infrastructure/metrics"
	"github.com/nnamdi/kobolet/internal/infrastructure/paystack"
	"github.com/nnamdi/kobolet/internal/infrastructure/postgres"
	"github.com/nnamdi/kobolet/internal/infrastructure/redis"
	"github.com/nnamdi/kobolet/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err := postgres.RunMigrations(log, cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories and infrastructure
	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	idemRepo := postgresRepo.NewIdempotencyRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	apiKeyRepo := postgresRepo.NewAPIKeyRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)
	cache := redisRepo.NewCache(redisClient)
	keyGen := keygen.New(cfg.APIKeyPrefix)

	provider := paystack.New(paystack.Config{
		BaseURL:       cfg.PaystackBaseURL,
		SecretKey:     cfg.PaystackSecretKey,
		WebhookSecret: cfg.PaystackWebhookSecret,
		CallbackURL:   cfg.CallbackURL,
	})

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Use cases
	userUC := usecase.NewUserUseCase(txManager, userRepo, walletRepo, idGen, keyGen)
	walletUC := usecase.NewWalletUseCase(walletRepo, txnRepo, cache)
	transferUC := usecase.NewTransferUseCase(txManager, walletRepo, txnRepo, idemRepo, idGen, keyGen, cache, m)
	depositUC := usecase.NewDepositUseCase(txManager, walletRepo, txnRepo, provider, idGen, keyGen, cache, m)
	apiKeyUC := usecase.NewAPIKeyUseCase(apiKeyRepo, idGen, keyGen, cfg.MaxKeysPerUser)
	sweeperUC := usecase.NewSweeperUseCase(txManager, walletRepo, txnRepo, retrier, cache, m, log, cfg.DepositPendingTimeout)

	go sweeperUC.Run(ctx, cfg.SweepStaleInterval, cfg.SweepOrphanInterval)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rateLimiter.CleanupLimiters()
			}
		}
	}()

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:     handler.NewAuthHandler(userUC, jwtManager, m),
		WalletHandler:   handler.NewWalletHandler(walletUC),
		TransferHandler: handler.NewTransferHandler(transferUC, walletUC),
		DepositHandler:  handler.NewDepositHandler(depositUC, walletUC, userUC, provider, m, log),
		APIKeyHandler:   handler.NewAPIKeyHandler(apiKeyUC, m),
		HealthHandler:   handler.NewHealthHandler(pool, redisClient),
		JWTManager:      jwtManager,
		APIKeyUC:        apiKeyUC,
		Logger:          log,
		RateLimiter:     rateLimiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
