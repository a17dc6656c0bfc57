package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paylock-gateway/config"
	httpHandler "paylock-gateway/internal/adapter/http/handler"
	pgStorage "paylock-gateway/internal/adapter/storage/postgres"
	redisStorage "paylock-gateway/internal/adapter/storage/redis"
	"paylock-gateway/internal/core/domain"
	"paylock-gateway/internal/core/ports"
	"paylock-gateway/internal/service"
	"paylock-gateway/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting PayLock Gateway")

	ctx := context.Background()

	// Protocol accounts come from config; all four are required.
	ownerID, err := uuid.Parse(cfg.Protocol.OwnerID)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid protocol.owner_id")
	}
	arbitratorID, err := uuid.Parse(cfg.Protocol.ArbitratorID)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid protocol.arbitrator_id")
	}
	feeCollectorID, err := uuid.Parse(cfg.Protocol.FeeCollectorID)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid protocol.fee_collector_id")
	}
	custodyID, err := uuid.Parse(cfg.Protocol.CustodyID)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid protocol.custody_id")
	}

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	balanceRepo := pgStorage.NewBalanceRepo(pool)
	entryRepo := pgStorage.NewLedgerEntryRepo(pool)
	escrowRepo := pgStorage.NewEscrowRepo(pool)
	linkRepo := pgStorage.NewPaymentLinkRepo(pool)
	receiptRepo := pgStorage.NewReceiptRepo(pool)
	currencyRepo := pgStorage.NewCurrencyRepo(pool)
	settingsRepo := pgStorage.NewSettingsRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Seed the protocol settings row; an existing row wins over config.
	if err := settingsRepo.Ensure(ctx, &domain.Settings{
		OwnerID:           ownerID,
		ArbitratorID:      arbitratorID,
		FeeCollectorID:    feeCollectorID,
		FeeRateBps:        int32(cfg.Protocol.FeeRateBps),
		DefaultEscrowDays: int32(cfg.Protocol.DefaultEscrowDays),
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed protocol settings")
	}

	// Initialize Redis stores
	receiptCache := redisStorage.NewReceiptCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc)
	ledgerSvc := service.NewLedgerService(balanceRepo, entryRepo, transactor, log)
	escrowSvc := service.NewEscrowService(escrowRepo, currencyRepo, settingsRepo, ledgerSvc, transactor, custodyID, log)
	linkSvc := service.NewPaymentLinkService(linkRepo, currencyRepo, settingsRepo, ledgerSvc, transactor, log)
	receiptSvc := service.NewReceiptService(escrowRepo, linkRepo, receiptRepo, receiptCache, log)
	adminSvc := service.NewAdminService(settingsRepo, currencyRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		EscrowSvc:      escrowSvc,
		LinkSvc:        linkSvc,
		ReceiptSvc:     receiptSvc,
		AdminSvc:       adminSvc,
		LedgerSvc:      ledgerSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
