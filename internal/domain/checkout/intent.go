package checkout

import (
	"context"
	"time"

	"pannpos/internal/core/id"
	"pannpos/internal/domain/inventory"
)

// IntentStatus tracks the lifecycle of a consumption intent.
type IntentStatus string

const (
	IntentOpen        IntentStatus = "open"
	IntentCommitted   IntentStatus = "committed"
	IntentCompensated IntentStatus = "compensated"
)

// ConsumptionIntent is written before any inventory is consumed and marked
// committed only after the sale is durably persisted. An intent left open
// (with recorded deductions) marks inventory that was consumed by a process
// that died before persisting its sale; the startup reconciler restores it.
type ConsumptionIntent struct {
	ID         id.ID                       `db:"id" json:"id"`
	SaleID     id.ID                       `db:"sale_id" json:"saleId"`
	Actor      string                      `db:"actor" json:"actor"`
	OpenedAt   time.Time                   `db:"opened_at" json:"openedAt"`
	Status     IntentStatus                `db:"status" json:"status"`
	ResolvedAt *time.Time                  `db:"resolved_at" json:"resolvedAt,omitempty"`
	Deductions []inventory.DeductionRecord `db:"-" json:"deductions,omitempty"`
}

// IntentLog persists consumption intents.
type IntentLog interface {
	// Open writes a new intent with status open and no deductions.
	Open(ctx context.Context, intent *ConsumptionIntent) error

	// AppendDeductions records deductions consumed so far. Called after each
	// line's consumption so a crash mid-cart leaves an exact reversal set.
	AppendDeductions(ctx context.Context, intentID id.ID, records []inventory.DeductionRecord) error

	MarkCommitted(ctx context.Context, intentID id.ID, at time.Time) error
	MarkCompensated(ctx context.Context, intentID id.ID, at time.Time) error

	// ListOrphaned returns open intents older than the cutoff, with their
	// recorded deductions loaded.
	ListOrphaned(ctx context.Context, olderThan time.Time) ([]*ConsumptionIntent, error)
}
