// Package checkout_repo provides PostgreSQL storage for checkout
// consumption intents.
package checkout_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pannpos/internal/core/id"
	"pannpos/internal/domain/checkout"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/infrastructure/storage/postgres"
)

const (
	intentTable           = "pos_consumption_intents"
	intentDeductionsTable = "pos_intent_deductions"
)

var intentCols = []string{
	"id", "sale_id", "actor", "opened_at", "status", "resolved_at",
}

// Compile-time check.
var _ checkout.IntentLog = (*IntentRepo)(nil)

// IntentRepo implements checkout.IntentLog on PostgreSQL.
//
// Intents work like a transactional outbox in reverse: the record is
// written before the side effect (consumption), and a row left open marks
// work that must be compensated on recovery.
type IntentRepo struct {
	txManager *postgres.TxManager
}

func NewIntentRepo(txManager *postgres.TxManager) *IntentRepo {
	return &IntentRepo{txManager: txManager}
}

func (r *IntentRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *IntentRepo) Open(ctx context.Context, intent *checkout.ConsumptionIntent) error {
	q := r.builder().
		Insert(intentTable).
		SetMap(postgres.StructToMap(intent))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build intent insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert intent: %w", err)
	}
	return nil
}

func (r *IntentRepo) AppendDeductions(ctx context.Context, intentID id.ID, records []inventory.DeductionRecord) error {
	if len(records) == 0 {
		return nil
	}

	// One multi-row insert. Deductions are recorded right after each line's
	// consume transaction commits, so the trail is durable before the next
	// line is touched.
	q := r.builder().
		Insert(intentDeductionsTable).
		Columns("intent_id", "batch_id", "product_id", "quantity_deducted", "expiry_date", "cost_price")
	for _, rec := range records {
		q = q.Values(intentID, rec.BatchID, rec.ProductID, rec.QuantityDeducted, rec.ExpiryDate, rec.CostPrice)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build deduction insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert intent deductions: %w", err)
	}
	return nil
}

func (r *IntentRepo) MarkCommitted(ctx context.Context, intentID id.ID, at time.Time) error {
	return r.resolve(ctx, intentID, checkout.IntentCommitted, at)
}

func (r *IntentRepo) MarkCompensated(ctx context.Context, intentID id.ID, at time.Time) error {
	return r.resolve(ctx, intentID, checkout.IntentCompensated, at)
}

func (r *IntentRepo) resolve(ctx context.Context, intentID id.ID, status checkout.IntentStatus, at time.Time) error {
	q := r.builder().
		Update(intentTable).
		Set("status", status).
		Set("resolved_at", at).
		Where(squirrel.Eq{"id": intentID}).
		Where(squirrel.Eq{"status": checkout.IntentOpen})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build intent update: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("resolve intent: %w", err)
	}
	return nil
}

func (r *IntentRepo) ListOrphaned(ctx context.Context, olderThan time.Time) ([]*checkout.ConsumptionIntent, error) {
	q := r.builder().
		Select(intentCols...).
		From(intentTable).
		Where(squirrel.Eq{"status": checkout.IntentOpen}).
		Where(squirrel.Lt{"opened_at": olderThan}).
		OrderBy("opened_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var intents []*checkout.ConsumptionIntent
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &intents, sql, args...); err != nil {
		return nil, fmt.Errorf("list orphaned intents: %w", err)
	}

	for _, intent := range intents {
		if err := r.loadDeductions(ctx, intent); err != nil {
			return nil, err
		}
	}
	return intents, nil
}

func (r *IntentRepo) loadDeductions(ctx context.Context, intent *checkout.ConsumptionIntent) error {
	q := r.builder().
		Select("batch_id", "product_id", "quantity_deducted", "expiry_date", "cost_price").
		From(intentDeductionsTable).
		Where(squirrel.Eq{"intent_id": intent.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build deductions query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &intent.Deductions, sql, args...); err != nil {
		return fmt.Errorf("load intent deductions: %w", err)
	}
	return nil
}
