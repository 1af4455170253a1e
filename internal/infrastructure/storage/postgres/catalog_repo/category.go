package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/domain/catalogs/category"
	"pannpos/internal/infrastructure/storage/postgres"
)

var (
	categoryCols    = postgres.ExtractDBColumns[category.Category]()
	subcategoryCols = postgres.ExtractDBColumns[category.Subcategory]()
)

// Compile-time check.
var _ category.Repository = (*CategoryRepo)(nil)

// CategoryRepo implements category.Repository. Subcategories are a table
// part of the category: saved and loaded together with the header.
type CategoryRepo struct {
	*BaseCatalogRepo[*category.Category]
}

func NewCategoryRepo(txManager *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_categories",
			categoryCols,
			func() *category.Category { return &category.Category{} },
		),
	}
}

func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	return r.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.BaseCatalogRepo.Create(ctx, c); err != nil {
			return err
		}
		return r.replaceSubcategories(ctx, c)
	})
}

func (r *CategoryRepo) Update(ctx context.Context, c *category.Category) error {
	return r.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.BaseCatalogRepo.Update(ctx, c); err != nil {
			return err
		}
		return r.replaceSubcategories(ctx, c)
	})
}

// replaceSubcategories rewrites the table part. Subcategory IDs are stable
// across saves (the model keeps them), so promotion references survive.
func (r *CategoryRepo) replaceSubcategories(ctx context.Context, c *category.Category) error {
	querier := r.Querier(ctx)

	del := r.Builder().
		Delete("cat_subcategories").
		Where(squirrel.Eq{"category_id": c.ID})
	sql, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build subcategory delete: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete subcategories: %w", err)
	}

	if len(c.Subcategories) == 0 {
		return nil
	}

	ins := r.Builder().
		Insert("cat_subcategories").
		Columns(subcategoryCols...)
	for _, s := range c.Subcategories {
		ins = ins.Values(s.ID, c.ID, s.Name)
	}
	sql, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build subcategory insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert subcategories: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	c, err := r.BaseCatalogRepo.GetByID(ctx, categoryID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("category", categoryID.String())
		}
		return nil, err
	}
	if err := r.loadSubcategories(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*category.Category, error) {
	q := r.BaseSelect().
		Where(squirrel.Expr("LOWER(name) = LOWER(?)", name)).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("category", name)
		}
		return nil, err
	}
	if err := r.loadSubcategories(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CategoryRepo) List(ctx context.Context, includeDeleted bool) ([]*category.Category, error) {
	q := r.BaseSelect().OrderBy("name ASC")
	if !includeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	var categories []*category.Category
	if err := r.Select(ctx, q, &categories); err != nil {
		return nil, err
	}

	for _, c := range categories {
		if err := r.loadSubcategories(ctx, c); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

func (r *CategoryRepo) loadSubcategories(ctx context.Context, c *category.Category) error {
	q := r.Builder().
		Select(subcategoryCols...).
		From("cat_subcategories").
		Where(squirrel.Eq{"category_id": c.ID}).
		OrderBy("name ASC")

	if err := r.BaseCatalogRepo.Select(ctx, q, &c.Subcategories); err != nil {
		return fmt.Errorf("load subcategories: %w", err)
	}
	return nil
}
