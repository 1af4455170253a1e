package dto

import (
	"time"

	"pannpos/internal/core/types"
	"pannpos/internal/domain/inventory"
)

// --- Request DTOs ---

// ReceiveBatchRequest is the body of POST /inventory/receipts.
type ReceiveBatchRequest struct {
	ProductID  string         `json:"productId" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
	ExpiryDate time.Time      `json:"expiryDate" binding:"required"`
	CostPrice  types.Money    `json:"costPrice"`
	Note       string         `json:"note,omitempty"`
}

// AdjustBatchRequest is the body of POST /inventory/batches/:id/adjust.
// Delta is signed: negative removes stock, positive adds it.
type AdjustBatchRequest struct {
	Delta types.Quantity `json:"delta" binding:"required"`
	Note  string         `json:"note,omitempty"`
}

// ListBatchesRequest filters batch listings.
type ListBatchesRequest struct {
	Status         string     `form:"status"`
	ExpiringBefore *time.Time `form:"expiringBefore" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit          int        `form:"limit"`
	Offset         int        `form:"offset"`
}

// ToFilter converts query params to the domain filter.
func (r *ListBatchesRequest) ToFilter() inventory.BatchFilter {
	f := inventory.BatchFilter{
		ExpiringBefore: r.ExpiringBefore,
		Limit:          r.Limit,
		Offset:         r.Offset,
	}
	if r.Status != "" {
		status := inventory.BatchStatus(r.Status)
		f.Status = &status
	}
	return f
}

// LedgerHistoryRequest filters usage ledger queries.
type LedgerHistoryRequest struct {
	BatchID        string     `form:"batchId"`
	AdjustmentType string     `form:"adjustmentType"`
	FromDate       *time.Time `form:"fromDate" time_format:"2006-01-02T15:04:05Z07:00"`
	ToDate         *time.Time `form:"toDate" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit          int        `form:"limit"`
	Offset         int        `form:"offset"`
}

// --- Response DTOs ---

// BatchResponse is a single inventory batch.
type BatchResponse struct {
	ID                string         `json:"id"`
	ProductID         string         `json:"productId"`
	QuantityRemaining types.Quantity `json:"quantityRemaining"`
	ExpiryDate        time.Time      `json:"expiryDate"`
	DateReceived      time.Time      `json:"dateReceived"`
	Status            string         `json:"status"`
	CostPrice         types.Money    `json:"costPrice"`
	Version           int            `json:"version"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// FromBatch converts a batch.
func FromBatch(b *inventory.Batch) *BatchResponse {
	return &BatchResponse{
		ID:                b.ID.String(),
		ProductID:         b.ProductID.String(),
		QuantityRemaining: b.QuantityRemaining,
		ExpiryDate:        b.ExpiryDate,
		DateReceived:      b.DateReceived,
		Status:            string(b.Status),
		CostPrice:         b.CostPrice,
		Version:           b.Version,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// FromBatches converts a batch list.
func FromBatches(batches []*inventory.Batch) []*BatchResponse {
	out := make([]*BatchResponse, len(batches))
	for i, b := range batches {
		out[i] = FromBatch(b)
	}
	return out
}

// LedgerEntryResponse is one usage ledger record.
type LedgerEntryResponse struct {
	ID             string         `json:"id"`
	BatchID        string         `json:"batchId"`
	ProductID      string         `json:"productId"`
	Timestamp      time.Time      `json:"timestamp"`
	QuantityDelta  types.Quantity `json:"quantityDelta"`
	RemainingAfter types.Quantity `json:"remainingAfter"`
	AdjustmentType string         `json:"adjustmentType"`
	Actor          string         `json:"actor"`
	Source         string         `json:"source"`
	Note           string         `json:"note,omitempty"`
}

// FromLedgerEntries converts ledger entries.
func FromLedgerEntries(entries []inventory.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntryResponse{
			ID:             e.ID.String(),
			BatchID:        e.BatchID.String(),
			ProductID:      e.ProductID.String(),
			Timestamp:      e.Timestamp,
			QuantityDelta:  e.QuantityDelta,
			RemainingAfter: e.RemainingAfter,
			AdjustmentType: string(e.AdjustmentType),
			Actor:          e.Actor,
			Source:         e.Source,
			Note:           e.Note,
		}
	}
	return out
}

// AvailabilityResponse is a product's aggregate stock.
type AvailabilityResponse struct {
	ProductID string         `json:"productId"`
	Available types.Quantity `json:"available"`
}
