package inventory

import (
	"context"
	"time"

	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
)

// BatchFilter narrows batch listings.
type BatchFilter struct {
	Status         *BatchStatus
	ExpiringBefore *time.Time
	Limit          int
	Offset         int
}

// LedgerFilter narrows usage ledger queries.
type LedgerFilter struct {
	BatchID        *id.ID
	AdjustmentType *AdjustmentType
	FromDate       *time.Time
	ToDate         *time.Time
	Limit          int
	Offset         int
}

// Repository defines persistence operations for batches and the usage ledger.
//
// The ForUpdate variants take row locks and must be called inside a
// transaction; they are what makes concurrent consumption safe.
type Repository interface {
	CreateBatch(ctx context.Context, b *Batch) error

	// UpdateBatch persists quantity/status with an optimistic version check.
	// Returns ConcurrentModification when the stored version differs.
	UpdateBatch(ctx context.Context, b *Batch) error

	GetBatch(ctx context.Context, batchID id.ID) (*Batch, error)

	// GetBatchForUpdate locks and returns a single batch row.
	GetBatchForUpdate(ctx context.Context, batchID id.ID) (*Batch, error)

	// ListConsumableForUpdate locks and returns the product's batches with
	// status=active and quantity_remaining>0, ordered by expiry_date ASC,
	// ties broken by date_received ASC (FIFO consumption order).
	ListConsumableForUpdate(ctx context.Context, productID id.ID) ([]*Batch, error)

	ListBatches(ctx context.Context, productID id.ID, filter BatchFilter) ([]*Batch, error)

	// AppendLedger appends entries; the ledger is insert-only.
	AppendLedger(ctx context.Context, entries []LedgerEntry) error

	LedgerHistory(ctx context.Context, productID id.ID, filter LedgerFilter) ([]LedgerEntry, error)

	// Availability computes aggregate stock on read as
	// SUM(quantity_remaining) over the product's batches.
	Availability(ctx context.Context, productID id.ID) (types.Quantity, error)
}
