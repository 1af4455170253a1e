package checkout

import (
	"context"
	"time"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/domain/catalogs/promotion"
	"pannpos/pkg/logger"
)

// Connection is a resolved promotion: the promotion itself, the category
// names that resolved successfully and the set of subcategory IDs the
// discount applies to.
type Connection struct {
	Promotion             *promotion.Promotion
	MatchedCategories     []string
	AffectedSubcategories map[id.ID]struct{}
}

// Applies reports whether the given subcategory is discounted.
func (c *Connection) Applies(subcategoryID id.ID) bool {
	if c == nil {
		return false
	}
	_, ok := c.AffectedSubcategories[subcategoryID]
	return ok
}

// Resolver maps a promotion name to the subcategories it discounts.
type Resolver struct {
	catalog Catalog
	promos  PromotionStore
	log     *logger.Logger
}

func NewResolver(catalog Catalog, promos PromotionStore, log *logger.Logger) *Resolver {
	return &Resolver{catalog: catalog, promos: promos, log: log.WithComponent("promotion-resolver")}
}

// Resolve looks up the named promotion at the given time and expands its
// category list into subcategory IDs. A nil Connection with a nil error
// means the promotion is not applicable, which callers treat as "no
// discount", never as a failure.
//
// Category names that fail to resolve are logged and skipped: promotions
// are allowed to carry stale category references, and partial matches
// still discount what did resolve. If nothing resolves the promotion is
// not applicable.
func (r *Resolver) Resolve(ctx context.Context, name string, at time.Time, facts promotion.CartFacts) (*Connection, error) {
	if name == "" {
		return nil, nil
	}

	promo, err := r.promos.FindActive(ctx, name, at)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if promo == nil || !promo.IsActiveAt(at) {
		return nil, nil
	}

	if promo.Condition != "" {
		ok, err := promotion.EvaluateCondition(promo.Condition, facts)
		if err != nil {
			r.log.WithContext(ctx).Warnw("promotion condition evaluation failed, skipping promotion",
				"promotion", promo.Name, "error", err)
			return nil, nil
		}
		if !ok {
			return nil, nil
		}
	}

	conn := &Connection{
		Promotion:             promo,
		AffectedSubcategories: make(map[id.ID]struct{}),
	}

	for _, catName := range promo.Categories {
		cat, err := r.catalog.ResolveCategory(ctx, catName)
		if err != nil {
			r.log.WithContext(ctx).Warnw("promotion category failed to resolve, skipping",
				"promotion", promo.Name, "category", catName, "error", err)
			continue
		}
		conn.MatchedCategories = append(conn.MatchedCategories, cat.Name)
		for _, subID := range cat.SubcategoryIDs() {
			conn.AffectedSubcategories[subID] = struct{}{}
		}
	}

	if len(conn.MatchedCategories) == 0 {
		r.log.WithContext(ctx).Warnw("promotion resolved no categories, treating as not applicable",
			"promotion", promo.Name)
		return nil, nil
	}

	return conn, nil
}
