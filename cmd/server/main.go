// Package main is the entry point for the pannpos API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"pannpos/internal/core/id"
	"pannpos/internal/domain/catalogs/category"
	"pannpos/internal/domain/catalogs/product"
	"pannpos/internal/domain/catalogs/promotion"
	"pannpos/internal/domain/checkout"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/domain/sales"
	"pannpos/internal/infrastructure/auth"
	v1 "pannpos/internal/infrastructure/http/v1"
	"pannpos/internal/infrastructure/lock"
	"pannpos/internal/infrastructure/metrics"
	"pannpos/internal/infrastructure/notify"
	"pannpos/internal/infrastructure/storage/postgres"
	"pannpos/internal/infrastructure/storage/postgres/catalog_repo"
	"pannpos/internal/infrastructure/storage/postgres/checkout_repo"
	"pannpos/internal/infrastructure/storage/postgres/inventory_repo"
	"pannpos/internal/infrastructure/storage/postgres/sales_repo"
	"pannpos/pkg/logger"
	"pannpos/pkg/numerator"
)

// catalogAdapter joins the product and category services into the single
// catalog surface the checkout pipeline consumes.
type catalogAdapter struct {
	products   *product.Service
	categories *category.Service
}

func (a catalogAdapter) GetProduct(ctx context.Context, productID id.ID) (*product.Product, error) {
	return a.products.GetByID(ctx, productID)
}

func (a catalogAdapter) ResolveCategory(ctx context.Context, name string) (*category.Category, error) {
	return a.categories.ResolveCategory(ctx, name)
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting pannpos server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Redis advisory locks (optional) ---
	var locker checkout.Locker
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warnw("redis unreachable; checkout runs without advisory locks", "error", err)
		} else {
			locker = lock.NewRedisLocker(rdb, getEnvDuration("LOCK_TTL", 30*time.Second), log)
			defer rdb.Close()
			log.Infow("redis advisory locks enabled", "addr", addr)
		}
	}

	// --- Stock warning sink ---
	var notifier checkout.NotificationSink
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		sink, err := notify.NewKafkaSink(splitList(brokers), log)
		if err != nil {
			log.Fatalw("failed to create kafka sink", "error", err)
		}
		defer sink.Close()
		notifier = sink
	} else {
		notifier = notify.NewLogSink(log)
	}

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager, log)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	// --- Repositories ---
	inventoryRepo := inventory_repo.NewRepo(txManager)
	salesRepo := sales_repo.NewRepo(txManager)
	intentRepo := checkout_repo.NewIntentRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	categoryRepo := catalog_repo.NewCategoryRepo(txManager)
	promotionRepo := catalog_repo.NewPromotionRepo(txManager)

	// --- Domain services ---
	inventoryService := inventory.NewService(inventoryRepo, txManager)
	salesService := sales.NewService(salesRepo, log)
	productService := product.NewService(productRepo)
	categoryService := category.NewService(categoryRepo)
	promotionService := promotion.NewService(promotionRepo)

	checkoutService := checkout.NewService(checkout.Deps{
		Catalog:    catalogAdapter{products: productService, categories: categoryService},
		Promotions: promotionService,
		Inventory:  inventoryService,
		Sales:      salesRepo,
		Intents:    intentRepo,
		Notifier:   notifier,
		Locks:      locker,
		Numbers:    numerator.NewSaleNumbers(pool),
		Metrics:    metrics.NewCheckoutMetrics(),
		Audit:      auditService,
		TxManager:  txManager,
		Logger:     log,
	}, checkout.Config{
		TrustClientPrice: getEnv("TRUST_CLIENT_PRICE", "false") == "true",
		IntentCutoff:     getEnvDuration("INTENT_CUTOFF", 5*time.Minute),
	})

	// Restore anything a crashed instance left half-consumed before
	// accepting new checkouts.
	if err := checkoutService.ReconcileOrphanedIntents(ctx); err != nil {
		log.Warnw("intent reconciliation failed; orphans remain", "error", err)
	}

	// --- Token validation ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		TxManager:          txManager,
		Logger:             log,
		TokenValidator:     jwtService,
		Checkout:           checkoutService,
		Sales:              salesService,
		Inventory:          inventoryService,
		Products:           productService,
		Categories:         categoryService,
		Promotions:         promotionService,
		IdempotencyEnabled: getEnv("IDEMPOTENCY_ENABLED", "true") == "true",
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute),
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
