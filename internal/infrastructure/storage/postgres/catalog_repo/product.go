package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/domain/catalogs/product"
	"pannpos/internal/infrastructure/storage/postgres"
)

var productCols = postgres.ExtractDBColumns[product.Product]()

// Compile-time check.
var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_products",
			productCols,
			func() *product.Product { return &product.Product{} },
		),
	}
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, err := r.BaseCatalogRepo.GetByID(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	q := r.BaseSelect().
		Where(squirrel.Eq{"sku": sku}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", sku)
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	q := r.BaseSelect().OrderBy("name ASC")

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if filter.SubcategoryID != nil {
		q = q.Where(squirrel.Eq{"subcategory_id": *filter.SubcategoryID})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"sku": pattern},
		})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	var products []*product.Product
	if err := r.Select(ctx, q, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepo) MarkDeleted(ctx context.Context, productID id.ID) error {
	return r.SetDeletionMark(ctx, productID, true)
}
