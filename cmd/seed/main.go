// Package main provides a CLI tool for seeding the database with demo data:
// a small catalog, an opening promotion and a few inventory batches.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"pannpos/internal/core/types"
	"pannpos/internal/domain/catalogs/category"
	"pannpos/internal/domain/catalogs/product"
	"pannpos/internal/domain/catalogs/promotion"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/infrastructure/storage/postgres"
	"pannpos/internal/infrastructure/storage/postgres/catalog_repo"
	"pannpos/internal/infrastructure/storage/postgres/inventory_repo"
	"pannpos/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	categoryService := category.NewService(catalog_repo.NewCategoryRepo(txManager))
	productService := product.NewService(catalog_repo.NewProductRepo(txManager))
	promotionService := promotion.NewService(catalog_repo.NewPromotionRepo(txManager))
	inventoryService := inventory.NewService(inventory_repo.NewRepo(txManager), txManager)

	if err := seed(ctx, log, categoryService, productService, promotionService, inventoryService); err != nil {
		log.Fatalw("seeding failed", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seed(
	ctx context.Context,
	log *logger.Logger,
	categories *category.Service,
	products *product.Service,
	promotions *promotion.Service,
	stock *inventory.Service,
) error {
	// --- Categories ---
	dairy := category.NewCategory("Dairy")
	dairy.AddSubcategory("Milk")
	dairy.AddSubcategory("Yogurt")

	bakery := category.NewCategory("Bakery")
	bakery.AddSubcategory("Bread")
	bakery.AddSubcategory("Pastry")

	for _, c := range []*category.Category{dairy, bakery} {
		if existing, err := categories.ResolveCategory(ctx, c.Name); err == nil && existing != nil {
			log.Infow("category already exists, skipping", "name", c.Name)
			continue
		}
		if err := categories.Create(ctx, c); err != nil {
			return fmt.Errorf("create category %s: %w", c.Name, err)
		}
	}

	dairy, err := categories.ResolveCategory(ctx, "Dairy")
	if err != nil {
		return fmt.Errorf("resolve dairy: %w", err)
	}
	bakery, err = categories.ResolveCategory(ctx, "Bakery")
	if err != nil {
		return fmt.Errorf("resolve bakery: %w", err)
	}

	// --- Products ---
	type seedProduct struct {
		sku, name string
		cat       *category.Category
		subIdx    int
		cost      string
		sell      string
		threshold int64
		batches   []seedBatch
	}
	items := []seedProduct{
		{"MILK-1L", "Whole Milk 1L", dairy, 0, "0.80", "1.50", 20, []seedBatch{
			{50, 7, "0.80"},
			{100, 14, "0.78"},
		}},
		{"YOG-150G", "Greek Yogurt 150g", dairy, 1, "0.40", "0.95", 30, []seedBatch{
			{200, 10, "0.40"},
		}},
		{"BRD-WHT", "White Loaf", bakery, 0, "0.60", "1.20", 15, []seedBatch{
			{40, 2, "0.60"},
		}},
		{"CRSNT", "Butter Croissant", bakery, 1, "0.55", "1.40", 25, []seedBatch{
			{60, 3, "0.55"},
		}},
	}

	for _, item := range items {
		if existing, err := products.GetBySKU(ctx, item.sku); err == nil && existing != nil {
			log.Infow("product already exists, skipping", "sku", item.sku)
			continue
		}

		p := product.NewProduct(item.sku, item.name, item.cat.ID, item.cat.Subcategories[item.subIdx].ID)
		p.CostPrice = types.MustMoney(item.cost)
		p.SellPrice = types.MustMoney(item.sell)
		p.LowStockThreshold = types.NewQuantityFromUnits(item.threshold)
		if err := products.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", item.sku, err)
		}

		for _, b := range item.batches {
			_, err := stock.Receive(ctx,
				p.ID,
				types.NewQuantityFromUnits(b.units),
				time.Now().AddDate(0, 0, b.expiryDays),
				types.MustMoney(b.cost),
				inventory.UsageContext{Actor: "seed", Source: "receipt", Note: "demo data"},
			)
			if err != nil {
				return fmt.Errorf("receive batch for %s: %w", item.sku, err)
			}
		}

		log.Infow("seeded product", "sku", item.sku, "batches", len(item.batches))
	}

	// --- Promotion ---
	promoName := "opening-week"
	if existing, err := promotions.FindActive(ctx, promoName, time.Now()); err == nil && existing != nil {
		log.Infow("promotion already exists, skipping", "name", promoName)
		return nil
	}

	promo := promotion.NewPromotion(promoName, promotion.DiscountPercentage, types.MustMoney("10"))
	promo.Status = promotion.StatusActive
	promo.Categories = []string{"Dairy", "Bakery"}
	promo.Condition = "total >= 10.0"
	if err := promotions.Create(ctx, promo); err != nil {
		return fmt.Errorf("create promotion: %w", err)
	}
	log.Infow("seeded promotion", "name", promoName)

	return nil
}

type seedBatch struct {
	units      int64
	expiryDays int
	cost       string
}
