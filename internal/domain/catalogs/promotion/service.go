package promotion

import (
	"context"
	"fmt"
	"time"

	"pannpos/internal/core/id"
	"pannpos/pkg/logger"
)

// Service provides business operations for the promotion catalog.
type Service struct {
	repo Repository
}

// NewService creates a new promotion service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new promotion.
func (s *Service) Create(ctx context.Context, p *Promotion) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create promotion: %w", err)
	}

	logger.Info(ctx, "promotion created",
		"id", p.ID,
		"name", p.Name,
		"type", string(p.DiscountType),
	)
	return nil
}

// Update validates and persists promotion changes.
func (s *Service) Update(ctx context.Context, p *Promotion) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	p.Version++
	return s.repo.Update(ctx, p)
}

// GetByID retrieves a promotion.
func (s *Service) GetByID(ctx context.Context, promotionID id.ID) (*Promotion, error) {
	return s.repo.GetByID(ctx, promotionID)
}

// FindActive returns the named promotion if active at the given time,
// or nil when none applies.
func (s *Service) FindActive(ctx context.Context, name string, at time.Time) (*Promotion, error) {
	return s.repo.FindActive(ctx, name, at)
}

// List retrieves all live promotions.
func (s *Service) List(ctx context.Context) ([]*Promotion, error) {
	return s.repo.List(ctx, false)
}
