// Package main is the entry point for the pannpos maintenance worker.
// It restores orphaned consumption intents left by crashed terminals and
// prunes expired idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pannpos/internal/core/id"
	"pannpos/internal/domain/catalogs/category"
	"pannpos/internal/domain/catalogs/product"
	"pannpos/internal/domain/catalogs/promotion"
	"pannpos/internal/domain/checkout"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/infrastructure/storage/postgres"
	"pannpos/internal/infrastructure/storage/postgres/catalog_repo"
	"pannpos/internal/infrastructure/storage/postgres/checkout_repo"
	"pannpos/internal/infrastructure/storage/postgres/inventory_repo"
	"pannpos/internal/infrastructure/storage/postgres/sales_repo"
	"pannpos/pkg/logger"
	"pannpos/pkg/numerator"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting pannpos maintenance worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	// The worker needs the same pipeline wiring as the server, minus the
	// request-facing collaborators: no locks, no kafka, no metrics.
	inventoryService := inventory.NewService(inventory_repo.NewRepo(txManager), txManager)
	productService := product.NewService(catalog_repo.NewProductRepo(txManager))
	categoryService := category.NewService(catalog_repo.NewCategoryRepo(txManager))

	checkoutService := checkout.NewService(checkout.Deps{
		Catalog:    catalogAdapter{products: productService, categories: categoryService},
		Promotions: promotion.NewService(catalog_repo.NewPromotionRepo(txManager)),
		Inventory:  inventoryService,
		Sales:      sales_repo.NewRepo(txManager),
		Intents:    checkout_repo.NewIntentRepo(txManager),
		Notifier:   nopSink{},
		Numbers:    numerator.NewSaleNumbers(pool),
		TxManager:  txManager,
		Logger:     log,
	}, checkout.Config{
		IntentCutoff: getEnvDuration("INTENT_CUTOFF", 5*time.Minute),
	})

	worker := NewWorker(checkoutService, postgres.NewIdempotencyStore(pool, txManager, 10*time.Minute), log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs periodic maintenance jobs.
type Worker struct {
	checkout    *checkout.Service
	idempotency *postgres.IdempotencyStore
	log         *logger.Logger
}

func NewWorker(checkoutService *checkout.Service, idempotency *postgres.IdempotencyStore, log *logger.Logger) *Worker {
	return &Worker{
		checkout:    checkoutService,
		idempotency: idempotency,
		log:         log.WithComponent("worker"),
	}
}

// Run loops until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	reconcileTicker := time.NewTicker(getEnvDuration("RECONCILE_INTERVAL", time.Minute))
	defer reconcileTicker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	// Run once at startup so a crash loop cannot starve reconciliation.
	w.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-reconcileTicker.C:
			w.reconcile(ctx)
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
		}
	}
}

func (w *Worker) reconcile(ctx context.Context) {
	if err := w.checkout.ReconcileOrphanedIntents(ctx); err != nil {
		w.log.Errorw("intent reconciliation failed", "error", err)
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	count, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if count > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", count)
	}
}

// catalogAdapter mirrors the server's checkout catalog wiring.
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

// nopSink drops stock warnings; the server handles notification.
type nopSink struct{}

func (nopSink) Emit(context.Context, string, string, map[string]any) error { return nil }

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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
