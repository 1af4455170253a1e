// Package inventory provides the batch ledger: per-product inventory batches,
// expiry-ordered consumption, and the append-only usage ledger that audits
// every quantity change.
package inventory

import (
	"time"

	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
)

// BatchStatus defines batch lifecycle state.
type BatchStatus string

const (
	// BatchActive has remaining stock available for consumption
	BatchActive BatchStatus = "active"
	// BatchDepleted has zero remaining stock; restoration reactivates it
	BatchDepleted BatchStatus = "depleted"
)

// AdjustmentType classifies a usage ledger entry.
type AdjustmentType string

const (
	// AdjustmentSale records consumption by a checkout transaction
	AdjustmentSale AdjustmentType = "sale"
	// AdjustmentRestoration records a compensating reversal or void
	AdjustmentRestoration AdjustmentType = "restoration"
	// AdjustmentReceipt records initial stock on batch creation
	AdjustmentReceipt AdjustmentType = "receipt"
	// AdjustmentManual records an operator correction
	AdjustmentManual AdjustmentType = "manual_adjustment"
)

// Batch is a discrete received quantity of a product with its own expiry
// date. Batches are drawn down independently in expiry order.
type Batch struct {
	ID        id.ID `db:"id" json:"id"`
	ProductID id.ID `db:"product_id" json:"productId"`

	// QuantityRemaining is never negative
	QuantityRemaining types.Quantity `db:"quantity_remaining" json:"quantityRemaining"`

	ExpiryDate   time.Time `db:"expiry_date" json:"expiryDate"`
	DateReceived time.Time `db:"date_received" json:"dateReceived"`

	Status BatchStatus `db:"status" json:"status"`

	// CostPrice at receipt time, carried into deduction records for margin reporting
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// Version for optimistic locking
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBatch creates an active batch with generated ID.
func NewBatch(productID id.ID, qty types.Quantity, expiry time.Time, costPrice types.Money, received time.Time) *Batch {
	now := time.Now().UTC()
	return &Batch{
		ID:                id.New(),
		ProductID:         productID,
		QuantityRemaining: qty,
		ExpiryDate:        expiry,
		DateReceived:      received,
		Status:            BatchActive,
		CostPrice:         costPrice,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Deduct removes qty from the batch, flipping status to depleted at zero.
// Caller guarantees qty <= QuantityRemaining.
func (b *Batch) Deduct(qty types.Quantity) {
	b.QuantityRemaining -= qty
	if b.QuantityRemaining <= 0 {
		b.QuantityRemaining = 0
		b.Status = BatchDepleted
	}
	b.touch()
}

// Restore adds qty back and reactivates the batch regardless of prior state.
func (b *Batch) Restore(qty types.Quantity) {
	b.QuantityRemaining += qty
	b.Status = BatchActive
	b.touch()
}

func (b *Batch) touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

// UsageContext carries the origin of a ledger mutation.
type UsageContext struct {
	// Actor is who drove the change (cashier ID, "system", ...)
	Actor string
	// Source names the operation ("checkout", "void", "receipt", ...)
	Source string
	// Note is an optional free-form annotation
	Note string
}

// LedgerEntry is an immutable, append-only usage ledger record.
// RemainingAfter equals the batch's quantity immediately after the entry was
// appended: the ledger is the audit trail, not a cache.
type LedgerEntry struct {
	ID        id.ID `db:"id" json:"id"`
	BatchID   id.ID `db:"batch_id" json:"batchId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	Timestamp time.Time `db:"timestamp" json:"timestamp"`

	// QuantityDelta is signed: negative for consumption, positive for restoration
	QuantityDelta  types.Quantity `db:"quantity_delta" json:"quantityDelta"`
	RemainingAfter types.Quantity `db:"remaining_after" json:"remainingAfter"`

	AdjustmentType AdjustmentType `db:"adjustment_type" json:"adjustmentType"`

	Actor  string `db:"actor" json:"actor"`
	Source string `db:"source" json:"source"`
	Note   string `db:"note" json:"note,omitempty"`
}

// newLedgerEntry captures the batch state after a mutation was applied.
func newLedgerEntry(b *Batch, delta types.Quantity, adj AdjustmentType, at time.Time, uc UsageContext) LedgerEntry {
	return LedgerEntry{
		ID:             id.New(),
		BatchID:        b.ID,
		ProductID:      b.ProductID,
		Timestamp:      at,
		QuantityDelta:  delta,
		RemainingAfter: b.QuantityRemaining,
		AdjustmentType: adj,
		Actor:          uc.Actor,
		Source:         uc.Source,
		Note:           uc.Note,
	}
}

// DeductionRecord is the reversible unit of work returned by Consume and
// required as input to Restore.
type DeductionRecord struct {
	BatchID   id.ID `db:"batch_id" json:"batchId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	QuantityDeducted types.Quantity `db:"quantity_deducted" json:"quantityDeducted"`

	ExpiryDate time.Time   `db:"expiry_date" json:"expiryDate"`
	CostPrice  types.Money `db:"cost_price" json:"costPrice"`
}

// TotalDeducted sums quantities across a deduction set.
func TotalDeducted(records []DeductionRecord) types.Quantity {
	var total types.Quantity
	for _, r := range records {
		total += r.QuantityDeducted
	}
	return total
}
