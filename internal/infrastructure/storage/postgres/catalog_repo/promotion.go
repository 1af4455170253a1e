package catalog_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/domain/catalogs/promotion"
	"pannpos/internal/infrastructure/storage/postgres"
)

var promotionCols = postgres.ExtractDBColumns[promotion.Promotion]()

// Compile-time check.
var _ promotion.Repository = (*PromotionRepo)(nil)

// PromotionRepo implements promotion.Repository. The categories column is
// a text[] of category names.
type PromotionRepo struct {
	*BaseCatalogRepo[*promotion.Promotion]
}

func NewPromotionRepo(txManager *postgres.TxManager) *PromotionRepo {
	return &PromotionRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_promotions",
			promotionCols,
			func() *promotion.Promotion { return &promotion.Promotion{} },
		),
	}
}

func (r *PromotionRepo) GetByID(ctx context.Context, promotionID id.ID) (*promotion.Promotion, error) {
	p, err := r.BaseCatalogRepo.GetByID(ctx, promotionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("promotion", promotionID.String())
		}
		return nil, err
	}
	return p, nil
}

// FindActive returns the named promotion when it is live at the given
// time, or (nil, nil) when nothing applies. The validity window check
// here is a coarse SQL filter; IsActiveAt remains the authority.
func (r *PromotionRepo) FindActive(ctx context.Context, name string, at time.Time) (*promotion.Promotion, error) {
	q := r.BaseSelect().
		Where(squirrel.Expr("LOWER(name) = LOWER(?)", name)).
		Where(squirrel.Eq{"status": promotion.StatusActive}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Or{
			squirrel.Eq{"starts_at": nil},
			squirrel.LtOrEq{"starts_at": at},
		}).
		Where(squirrel.Or{
			squirrel.Eq{"ends_at": nil},
			squirrel.GtOrEq{"ends_at": at},
		}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PromotionRepo) List(ctx context.Context, includeDeleted bool) ([]*promotion.Promotion, error) {
	q := r.BaseSelect().OrderBy("name ASC")
	if !includeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	var promotions []*promotion.Promotion
	if err := r.Select(ctx, q, &promotions); err != nil {
		return nil, err
	}
	return promotions, nil
}
