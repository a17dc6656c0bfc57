package handler

import (
	"paylock-gateway/internal/adapter/http/middleware"
	redisStore "paylock-gateway/internal/adapter/storage/redis"
	"paylock-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	EscrowSvc      ports.EscrowService
	LinkSvc        ports.PaymentLinkService
	ReceiptSvc     ports.ReceiptService
	AdminSvc       ports.AdminService
	LedgerSvc      ports.LedgerService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check, pings PostgreSQL and Redis
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	adminHandler := NewAdminHandler(deps.AdminSvc)
	v1.GET("/currencies", adminHandler.ListCurrencies)

	receiptHandler := NewReceiptHandler(deps.ReceiptSvc)
	v1.GET("/receipts/:id/verify", rl("receipts"), receiptHandler.Verify)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	escrowHandler := NewEscrowHandler(deps.EscrowSvc)
	escrows := v1.Group("/escrows", jwtAuth)
	{
		escrows.POST("", rl("escrows"), escrowHandler.Create)
		escrows.GET("", rl("escrows"), escrowHandler.List)
		escrows.GET("/:id", rl("escrows"), escrowHandler.Get)
		escrows.GET("/:id/status", rl("escrows"), escrowHandler.Status)
		escrows.POST("/:id/fund", rl("escrows"), escrowHandler.Fund)
		escrows.POST("/:id/complete", rl("escrows"), escrowHandler.Complete)
		escrows.POST("/:id/refund", rl("escrows"), escrowHandler.Refund)
		escrows.POST("/:id/dispute", rl("escrows"), escrowHandler.Dispute)
		escrows.POST("/:id/resolve", rl("escrows"), escrowHandler.Resolve)
		escrows.POST("/:id/claim", rl("escrows"), escrowHandler.ClaimExpired)
	}

	linkHandler := NewLinkHandler(deps.LinkSvc)
	links := v1.Group("/links", jwtAuth)
	{
		links.POST("", rl("links"), linkHandler.Create)
		links.GET("", rl("links"), linkHandler.List)
		links.GET("/:id", rl("links"), linkHandler.Get)
		links.POST("/:id/pay", rl("links"), linkHandler.Pay)
		links.POST("/:id/deactivate", rl("links"), linkHandler.Deactivate)
	}

	receipts := v1.Group("/receipts", jwtAuth)
	{
		receipts.POST("", rl("receipts"), receiptHandler.Issue)
	}

	accountHandler := NewAccountHandler(deps.LedgerSvc)
	accounts := v1.Group("/accounts", jwtAuth)
	{
		accounts.GET("/balance", rl("escrows"), accountHandler.Balance)
		accounts.POST("/topup", rl("accounts_topup"), accountHandler.Topup)
	}

	admin := v1.Group("/admin", jwtAuth)
	{
		admin.GET("/settings", rl("admin"), adminHandler.GetSettings)
		admin.PUT("/fee-rate", rl("admin"), adminHandler.SetFeeRate)
		admin.PUT("/fee-collector", rl("admin"), adminHandler.SetFeeCollector)
		admin.PUT("/arbitrator", rl("admin"), adminHandler.SetArbitrator)
		admin.PUT("/escrow-duration", rl("admin"), adminHandler.SetEscrowDuration)
		admin.PUT("/currencies", rl("admin"), adminHandler.SetCurrency)
	}

	return r
}
