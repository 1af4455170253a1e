package category

import (
	"context"
	"fmt"

	"pannpos/internal/core/id"
	"pannpos/pkg/logger"
)

// Service provides business operations for the category catalog.
type Service struct {
	repo Repository
}

// NewService creates a new category service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new category.
func (s *Service) Create(ctx context.Context, c *Category) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	logger.Info(ctx, "category created", "id", c.ID, "name", c.Name)
	return nil
}

// Update validates and persists category changes.
func (s *Service) Update(ctx context.Context, c *Category) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

// GetByID retrieves a category with subcategories.
func (s *Service) GetByID(ctx context.Context, categoryID id.ID) (*Category, error) {
	return s.repo.GetByID(ctx, categoryID)
}

// ResolveCategory resolves a category name to its subcategory set.
// This is the lookup the promotion resolver depends on.
func (s *Service) ResolveCategory(ctx context.Context, name string) (*Category, error) {
	return s.repo.GetByName(ctx, name)
}

// List retrieves all live categories.
func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.List(ctx, false)
}
