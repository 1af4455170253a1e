// Package sales_repo provides the PostgreSQL implementation of the sales
// ledger repository.
package sales_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/domain/sales"
	"pannpos/internal/infrastructure/storage/postgres"
)

const (
	salesTable      = "pos_sales"
	linesTable      = "pos_sale_lines"
	deductionsTable = "pos_sale_deductions"
)

var salesCols = []string{
	"id", "number", "gross_total", "discount", "net_total",
	"promotion_id", "promotion_name", "payment_method",
	"actor", "actor_type", "timestamp", "status", "voided_at", "voided_by",
}

var lineCols = []string{
	"line_id", "line_no", "product_id", "product_name",
	"quantity", "unit_price", "gross_amount", "discount", "net_amount",
}

// Compile-time check.
var _ sales.Repository = (*Repo)(nil)

// Repo implements sales.Repository on PostgreSQL.
type Repo struct {
	txManager *postgres.TxManager
}

func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

func (r *Repo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Append writes the sale header, its lines and its deduction records in
// one transaction.
func (r *Repo) Append(ctx context.Context, rec *sales.Record) error {
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		head := postgres.StructToMap(rec)
		q := r.builder().Insert(salesTable).SetMap(head)
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build sale insert: %w", err)
		}
		if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		if err := r.insertLines(ctx, rec.ID, rec.Lines); err != nil {
			return err
		}
		return r.insertDeductions(ctx, rec.ID, rec.Deductions)
	})
}

func (r *Repo) insertLines(ctx context.Context, saleID id.ID, lines []sales.Line) error {
	if len(lines) == 0 {
		return nil
	}

	tx := r.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("sale lines insert requires transaction context")
	}

	rows := make([][]any, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []any{
			line.LineID, saleID, line.LineNo, line.ProductID, line.ProductName,
			line.Quantity, line.UnitPrice, line.GrossAmount, line.Discount, line.NetAmount,
		})
	}

	columns := append([]string{"line_id", "sale_id"}, lineCols[1:]...)
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{linesTable}, columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("insert sale lines: %w", err)
	}
	return nil
}

func (r *Repo) insertDeductions(ctx context.Context, saleID id.ID, records []inventory.DeductionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx := r.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("sale deductions insert requires transaction context")
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			saleID, rec.BatchID, rec.ProductID, rec.QuantityDeducted, rec.ExpiryDate, rec.CostPrice,
		})
	}

	columns := []string{"sale_id", "batch_id", "product_id", "quantity_deducted", "expiry_date", "cost_price"}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{deductionsTable}, columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("insert sale deductions: %w", err)
	}
	return nil
}

// MarkVoided flips status completed -> voided, conditionally on the
// current status. The WHERE clause is the double-void guard.
func (r *Repo) MarkVoided(ctx context.Context, saleID id.ID, at time.Time, voidedBy string) error {
	q := r.builder().
		Update(salesTable).
		Set("status", sales.StatusVoided).
		Set("voided_at", at).
		Set("voided_by", voidedBy).
		Where(squirrel.Eq{"id": saleID}).
		Where(squirrel.Eq{"status": sales.StatusCompleted})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build void update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark voided: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either absent or already voided; disambiguate for the caller.
		exists, err := r.exists(ctx, saleID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound("sale", saleID.String())
		}
		return apperror.NewSaleVoided(saleID.String())
	}
	return nil
}

func (r *Repo) exists(ctx context.Context, saleID id.ID) (bool, error) {
	var one int
	err := r.txManager.GetQuerier(ctx).
		QueryRow(ctx, "SELECT 1 FROM pos_sales WHERE id = $1", saleID).
		Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sale exists: %w", err)
	}
	return true, nil
}

func (r *Repo) GetByID(ctx context.Context, saleID id.ID) (*sales.Record, error) {
	q := r.builder().
		Select(salesCols...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec sales.Record
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	if err := r.loadLines(ctx, &rec); err != nil {
		return nil, err
	}
	if err := r.loadDeductions(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) loadLines(ctx context.Context, rec *sales.Record) error {
	q := r.builder().
		Select(lineCols...).
		From(linesTable).
		Where(squirrel.Eq{"sale_id": rec.ID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build lines query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rec.Lines, sql, args...); err != nil {
		return fmt.Errorf("load sale lines: %w", err)
	}
	return nil
}

func (r *Repo) loadDeductions(ctx context.Context, rec *sales.Record) error {
	q := r.builder().
		Select("batch_id", "product_id", "quantity_deducted", "expiry_date", "cost_price").
		From(deductionsTable).
		Where(squirrel.Eq{"sale_id": rec.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build deductions query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rec.Deductions, sql, args...); err != nil {
		return fmt.Errorf("load sale deductions: %w", err)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, filter sales.ListFilter) ([]*sales.Record, error) {
	q := r.builder().
		Select(salesCols...).
		From(salesTable).
		OrderBy("timestamp DESC")

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Actor != "" {
		q = q.Where(squirrel.Eq{"actor": filter.Actor})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"timestamp": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"timestamp": *filter.DateTo})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []*sales.Record
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	// Listing returns headers only; lines and deductions load on GetByID.
	return records, nil
}
