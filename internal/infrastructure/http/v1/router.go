// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appctx "pannpos/internal/core/context"
	"pannpos/internal/domain/catalogs/category"
	"pannpos/internal/domain/catalogs/product"
	"pannpos/internal/domain/catalogs/promotion"
	"pannpos/internal/domain/checkout"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/domain/sales"
	"pannpos/internal/infrastructure/http/v1/handlers"
	"pannpos/internal/infrastructure/http/v1/middleware"
	"pannpos/internal/infrastructure/storage/postgres"
	"pannpos/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (health checks, idempotency)
	Pool *postgres.Pool

	// TxManager coordinates transactions for the idempotency store
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// TokenValidator for bearer token validation
	TokenValidator middleware.TokenValidator

	// Checkout is the transaction pipeline
	Checkout *checkout.Service

	// Domain services
	Sales      *sales.Service
	Inventory  *inventory.Service
	Products   *product.Service
	Categories *category.Service
	Promotions *promotion.Service

	// IdempotencyEnabled enables idempotency middleware on mutating routes
	IdempotencyEnabled bool

	// IdempotencyTTL bounds how long completed keys replay (default 10m)
	IdempotencyTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Prometheus scrape endpoint (no auth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.TokenValidator))

		if cfg.IdempotencyEnabled {
			ttl := cfg.IdempotencyTTL
			if ttl <= 0 {
				ttl = 10 * time.Minute
			}
			store := postgres.NewIdempotencyStore(cfg.Pool, cfg.TxManager, ttl)
			protected.Use(middleware.Idempotency(store))
		}

		registerCheckoutRoutes(protected, cfg)
		registerInventoryRoutes(protected, cfg)
		registerCatalogRoutes(protected, cfg)
	}

	return router
}

// registerCheckoutRoutes registers the transaction pipeline and sales ledger.
func registerCheckoutRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	checkoutHandler := handlers.NewCheckoutHandler(baseHandler, cfg.Checkout)
	salesHandler := handlers.NewSalesHandler(baseHandler, cfg.Sales)

	rg.POST("/checkout", checkoutHandler.Checkout)

	salesGroup := rg.Group("/sales")
	{
		salesGroup.GET("", salesHandler.List)
		salesGroup.GET("/:id", salesHandler.Get)
		salesGroup.POST("/:id/void",
			middleware.RequireActorType(appctx.ActorTypeCashier), checkoutHandler.Void)
	}
}

// registerInventoryRoutes registers batch ledger endpoints.
func registerInventoryRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewInventoryHandler(baseHandler, cfg.Inventory)

	inv := rg.Group("/inventory")
	{
		staff := middleware.RequireActorType(appctx.ActorTypeCashier, appctx.ActorTypeSystem)
		inv.POST("/receipts", staff, handler.Receive)
		inv.POST("/batches/:id/adjust", staff, handler.Adjust)
		inv.GET("/products/:id/batches", handler.ListBatches)
		inv.GET("/products/:id/ledger", handler.LedgerHistory)
		inv.GET("/products/:id/availability", handler.Availability)
	}
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- PRODUCTS ---
	{
		handler := handlers.NewProductHandler(baseHandler, cfg.Products)
		group := catalogs.Group("/products")
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Retire)
	}

	// --- CATEGORIES ---
	{
		handler := handlers.NewCategoryHandler(baseHandler, cfg.Categories)
		group := catalogs.Group("/categories")
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
	}

	// --- PROMOTIONS ---
	{
		handler := handlers.NewPromotionHandler(baseHandler, cfg.Promotions)
		group := catalogs.Group("/promotions")
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
	}
}
