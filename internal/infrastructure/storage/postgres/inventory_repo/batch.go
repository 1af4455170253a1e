// Package inventory_repo provides the PostgreSQL implementation of the
// batch ledger repository.
package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/infrastructure/storage/postgres"
)

const (
	batchTable  = "inv_batches"
	ledgerTable = "inv_usage_ledger"
)

var batchCols = []string{
	"id", "product_id", "quantity_remaining", "expiry_date", "date_received",
	"status", "cost_price", "version", "created_at", "updated_at",
}

var ledgerCols = []string{
	"id", "batch_id", "product_id", "timestamp", "quantity_delta",
	"remaining_after", "adjustment_type", "actor", "source", "note",
}

// Compile-time check.
var _ inventory.Repository = (*Repo)(nil)

// Repo implements inventory.Repository on PostgreSQL.
type Repo struct {
	txManager *postgres.TxManager
}

func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

func (r *Repo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) CreateBatch(ctx context.Context, b *inventory.Batch) error {
	q := r.builder().
		Insert(batchTable).
		SetMap(postgres.StructToMap(b))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *Repo) UpdateBatch(ctx context.Context, b *inventory.Batch) error {
	// The version on the struct was already bumped by the domain mutation,
	// so the optimistic check expects version-1 in the row.
	q := r.builder().
		Update(batchTable).
		Set("quantity_remaining", b.QuantityRemaining).
		Set("status", b.Status).
		Set("version", b.Version).
		Set("updated_at", b.UpdatedAt).
		Where(squirrel.Eq{"id": b.ID}).
		Where(squirrel.Eq{"version": b.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("batch", b.ID.String())
	}
	return nil
}

func (r *Repo) GetBatch(ctx context.Context, batchID id.ID) (*inventory.Batch, error) {
	return r.getBatch(ctx, batchID, false)
}

func (r *Repo) GetBatchForUpdate(ctx context.Context, batchID id.ID) (*inventory.Batch, error) {
	return r.getBatch(ctx, batchID, true)
}

func (r *Repo) getBatch(ctx context.Context, batchID id.ID, forUpdate bool) (*inventory.Batch, error) {
	q := r.builder().
		Select(batchCols...).
		From(batchTable).
		Where(squirrel.Eq{"id": batchID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b inventory.Batch
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("batch", batchID.String())
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

// ListConsumableForUpdate locks the product's consumable batches in FIFO
// consumption order: expiry_date ASC, ties broken by date_received ASC.
func (r *Repo) ListConsumableForUpdate(ctx context.Context, productID id.ID) ([]*inventory.Batch, error) {
	q := r.builder().
		Select(batchCols...).
		From(batchTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"status": inventory.BatchActive}).
		Where(squirrel.Gt{"quantity_remaining": 0}).
		OrderBy("expiry_date ASC", "date_received ASC").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []*inventory.Batch
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("list consumable batches: %w", err)
	}
	return batches, nil
}

func (r *Repo) ListBatches(ctx context.Context, productID id.ID, filter inventory.BatchFilter) ([]*inventory.Batch, error) {
	q := r.builder().
		Select(batchCols...).
		From(batchTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("expiry_date ASC", "date_received ASC")

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.ExpiringBefore != nil {
		q = q.Where(squirrel.Lt{"expiry_date": *filter.ExpiringBefore})
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

	var batches []*inventory.Batch
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// AppendLedger inserts entries in a single round-trip. The ledger table is
// insert-only; there is no update path.
func (r *Repo) AppendLedger(ctx context.Context, entries []inventory.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx := r.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("ledger append requires transaction context")
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		q := r.builder().
			Insert(ledgerTable).
			SetMap(postgres.StructToMap(e))
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build ledger insert: %w", err)
		}
		batch.Queue(sql, args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
	}
	return nil
}

func (r *Repo) LedgerHistory(ctx context.Context, productID id.ID, filter inventory.LedgerFilter) ([]inventory.LedgerEntry, error) {
	q := r.builder().
		Select(ledgerCols...).
		From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("timestamp DESC")

	if filter.BatchID != nil {
		q = q.Where(squirrel.Eq{"batch_id": *filter.BatchID})
	}
	if filter.AdjustmentType != nil {
		q = q.Where(squirrel.Eq{"adjustment_type": *filter.AdjustmentType})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"timestamp": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"timestamp": *filter.ToDate})
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

	var entries []inventory.LedgerEntry
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("ledger history: %w", err)
	}
	return entries, nil
}

// Availability computes aggregate stock as the sum over the product's
// batches. There is no materialized aggregate to drift out of sync.
func (r *Repo) Availability(ctx context.Context, productID id.ID) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(quantity_remaining), 0)
		FROM inv_batches
		WHERE product_id = $1
	`

	var total int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("availability: %w", err)
	}
	return types.NewQuantityFromInt64Scaled(total), nil
}
