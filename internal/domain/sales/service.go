package sales

import (
	"context"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/pkg/logger"
)

// Service exposes read access to the sales ledger. Writes go through the
// checkout orchestrator, which owns the transactional pipeline.
type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}
