package product

import (
	"context"
	"fmt"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/pkg/logger"
)

// Service provides business operations for the product catalog.
type Service struct {
	repo Repository
}

// NewService creates a new product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new product, enforcing SKU uniqueness.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetBySKU(ctx, p.SKU); err == nil && existing != nil {
		return apperror.NewDuplicate("product", "sku", p.SKU)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	logger.Info(ctx, "product created", "id", p.ID, "sku", p.SKU)
	return nil
}

// Update validates and persists product changes.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.Touch()
	return s.repo.Update(ctx, p)
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// GetBySKU retrieves a product by SKU.
func (s *Service) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.GetBySKU(ctx, sku)
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.List(ctx, filter)
}

// Retire soft-deletes a product. Ledger and sales history stay intact.
func (s *Service) Retire(ctx context.Context, productID id.ID) error {
	if err := s.repo.MarkDeleted(ctx, productID); err != nil {
		return err
	}
	logger.Info(ctx, "product retired", "id", productID)
	return nil
}
