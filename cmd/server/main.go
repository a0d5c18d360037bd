package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/billsplit/internal/adapter/http"
	"github.com/iho/billsplit/internal/adapter/http/handler"
	postgresRepo "github.com/iho/billsplit/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/billsplit/internal/adapter/repository/redis"
	"github.com/iho/billsplit/internal/infrastructure/config"
	"github.com/iho/billsplit/internal/infrastructure/logger"
	"github.com/iho/billsplit/internal/infrastructure/metrics"
	"github.com/iho/billsplit/internal/infrastructure/postgres"
	"github.com/iho/billsplit/internal/infrastructure/redis"
	"github.com/iho/billsplit/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	txRepo := postgresRepo.NewTransactionRepository(pool).WithRetrier(postgresRepo.NewRetrier(appLogger))
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	withdrawalRepo := postgresRepo.NewWithdrawalRepository(pool)
	ruleRepo := postgresRepo.NewRuleRepository(pool)
	closingRepo := postgresRepo.NewClosingRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	m := metrics.New()

	reconcileUC := usecase.NewReconcileUseCase(txRepo, ruleRepo, invoiceRepo, idGen, appLogger, m)
	ledgerUC := usecase.NewLedgerUseCase(txRepo, paymentRepo, withdrawalRepo, closingRepo, invoiceRepo, idGen, cache, cfg.LedgerCacheTTL, appLogger, m)
	classifyUC := usecase.NewClassifyUseCase(txRepo, ruleRepo, idGen, appLogger)
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, idGen, appLogger)
	withdrawalUC := usecase.NewWithdrawalUseCase(withdrawalRepo, idGen, appLogger)
	maintenanceUC := usecase.NewMaintenanceUseCase(txRepo, idGen, appLogger, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ImportHandler:      handler.NewImportHandler(reconcileUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC),
		TransactionHandler: handler.NewTransactionHandler(classifyUC, ledgerUC),
		PaymentHandler:     handler.NewPaymentHandler(paymentUC),
		WithdrawalHandler:  handler.NewWithdrawalHandler(withdrawalUC),
		InvoiceHandler:     handler.NewInvoiceHandler(ledgerUC),
		MaintenanceHandler: handler.NewMaintenanceHandler(maintenanceUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Logger:             appLogger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
