package inventory

import (
	"context"
	"fmt"
	"time"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/core/tx"
	"pannpos/internal/core/types"
	"pannpos/pkg/logger"
)

// Service provides batch ledger operations.
//
// Consume and Restore each run inside a single database transaction across
// all touched batches: either every deduction lands together with its ledger
// entries, or nothing does.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new batch ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Consume draws quantityNeeded from the product's batches in expiry order
// (oldest-expiring first, ties by date_received) and returns one deduction
// record per touched batch.
//
// The availability check here is the authoritative one: it runs against
// row-locked batches inside the transaction, so two terminals cannot both
// win the last unit. InsufficientStock leaves no mutation behind.
func (s *Service) Consume(ctx context.Context, productID id.ID, quantityNeeded types.Quantity, at time.Time, uc UsageContext) ([]DeductionRecord, error) {
	if !quantityNeeded.IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("product_id", productID.String())
	}

	var records []DeductionRecord

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		batches, err := s.repo.ListConsumableForUpdate(ctx, productID)
		if err != nil {
			return fmt.Errorf("lock consumable batches: %w", err)
		}

		var available types.Quantity
		for _, b := range batches {
			available += b.QuantityRemaining
		}
		if available < quantityNeeded {
			return apperror.NewInsufficientStock(
				productID.String(),
				quantityNeeded.Float64(),
				available.Float64(),
			)
		}

		remaining := quantityNeeded
		entries := make([]LedgerEntry, 0, len(batches))

		for _, b := range batches {
			if remaining.IsZero() {
				break
			}

			deducted := remaining.Min(b.QuantityRemaining)
			b.Deduct(deducted)

			if err := s.repo.UpdateBatch(ctx, b); err != nil {
				return fmt.Errorf("update batch %s: %w", b.ID, err)
			}

			entries = append(entries, newLedgerEntry(b, deducted.Neg(), AdjustmentSale, at, uc))
			records = append(records, DeductionRecord{
				BatchID:          b.ID,
				ProductID:        b.ProductID,
				QuantityDeducted: deducted,
				ExpiryDate:       b.ExpiryDate,
				CostPrice:        b.CostPrice,
			})

			remaining -= deducted
		}

		if err := s.repo.AppendLedger(ctx, entries); err != nil {
			return fmt.Errorf("append usage ledger: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory consumed",
		"product_id", productID,
		"quantity", quantityNeeded,
		"batches", len(records),
		"source", uc.Source,
	)

	return records, nil
}

// Restore adds each record's quantity back to its batch and reactivates it
// regardless of prior state. All records are restored in one transaction.
//
// Restore performs no idempotence check of its own: applying it exactly once
// per consumption is the orchestrator's invariant, enforced through the sale
// status flag and the intent log.
func (s *Service) Restore(ctx context.Context, records []DeductionRecord, at time.Time, uc UsageContext) error {
	if len(records) == 0 {
		return nil
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entries := make([]LedgerEntry, 0, len(records))

		for _, r := range records {
			b, err := s.repo.GetBatchForUpdate(ctx, r.BatchID)
			if err != nil {
				return fmt.Errorf("lock batch %s: %w", r.BatchID, err)
			}

			b.Restore(r.QuantityDeducted)

			if err := s.repo.UpdateBatch(ctx, b); err != nil {
				return fmt.Errorf("update batch %s: %w", b.ID, err)
			}

			entries = append(entries, newLedgerEntry(b, r.QuantityDeducted, AdjustmentRestoration, at, uc))
		}

		if err := s.repo.AppendLedger(ctx, entries); err != nil {
			return fmt.Errorf("append usage ledger: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "inventory restored",
		"batches", len(records),
		"quantity", TotalDeducted(records),
		"source", uc.Source,
	)

	return nil
}

// Receive creates a batch on stock receipt with its opening ledger entry.
func (s *Service) Receive(ctx context.Context, productID id.ID, qty types.Quantity, expiry time.Time, costPrice types.Money, uc UsageContext) (*Batch, error) {
	if !qty.IsPositive() {
		return nil, apperror.NewValidation("received quantity must be positive").
			WithDetail("product_id", productID.String())
	}

	now := time.Now().UTC()
	b := NewBatch(productID, qty, expiry, costPrice, now)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateBatch(ctx, b); err != nil {
			return fmt.Errorf("create batch: %w", err)
		}
		entry := newLedgerEntry(b, qty, AdjustmentReceipt, now, uc)
		if err := s.repo.AppendLedger(ctx, []LedgerEntry{entry}); err != nil {
			return fmt.Errorf("append usage ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "batch received",
		"batch_id", b.ID,
		"product_id", productID,
		"quantity", qty,
		"expiry", expiry,
	)

	return b, nil
}

// Adjust applies a manual correction to a single batch. Negative deltas may
// not take the batch below zero.
func (s *Service) Adjust(ctx context.Context, batchID id.ID, delta types.Quantity, uc UsageContext) (*Batch, error) {
	if delta.IsZero() {
		return nil, apperror.NewValidation("adjustment delta cannot be zero").
			WithDetail("batch_id", batchID.String())
	}

	var adjusted *Batch

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetBatchForUpdate(ctx, batchID)
		if err != nil {
			return fmt.Errorf("lock batch %s: %w", batchID, err)
		}

		if delta.IsNegative() && b.QuantityRemaining < delta.Abs() {
			return apperror.NewInsufficientStock(
				b.ProductID.String(),
				delta.Abs().Float64(),
				b.QuantityRemaining.Float64(),
			).WithDetail("batch_id", batchID.String())
		}

		if delta.IsPositive() {
			b.Restore(delta)
		} else {
			b.Deduct(delta.Abs())
		}

		if err := s.repo.UpdateBatch(ctx, b); err != nil {
			return fmt.Errorf("update batch %s: %w", b.ID, err)
		}

		entry := newLedgerEntry(b, delta, AdjustmentManual, time.Now().UTC(), uc)
		if err := s.repo.AppendLedger(ctx, []LedgerEntry{entry}); err != nil {
			return fmt.Errorf("append usage ledger: %w", err)
		}

		adjusted = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return adjusted, nil
}

// Availability returns the product's aggregate stock, computed on read from
// its batches. There is no materialized stock field to drift out of sync.
func (s *Service) Availability(ctx context.Context, productID id.ID) (types.Quantity, error) {
	return s.repo.Availability(ctx, productID)
}

// ListBatches retrieves a product's batches.
func (s *Service) ListBatches(ctx context.Context, productID id.ID, filter BatchFilter) ([]*Batch, error) {
	return s.repo.ListBatches(ctx, productID, filter)
}

// LedgerHistory retrieves usage ledger entries for a product.
func (s *Service) LedgerHistory(ctx context.Context, productID id.ID, filter LedgerFilter) ([]LedgerEntry, error) {
	return s.repo.LedgerHistory(ctx, productID, filter)
}
