package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
)

// fakeRepo keeps batches and the ledger in memory, in insertion order.
type fakeRepo struct {
	batches []*Batch
	ledger  []LedgerEntry

	failUpdateFor id.ID
}

func (r *fakeRepo) CreateBatch(_ context.Context, b *Batch) error {
	cp := *b
	r.batches = append(r.batches, &cp)
	return nil
}

func (r *fakeRepo) UpdateBatch(_ context.Context, b *Batch) error {
	if b.ID == r.failUpdateFor {
		return apperror.NewPersistence("update batch", assert.AnError)
	}
	for i, existing := range r.batches {
		if existing.ID == b.ID {
			cp := *b
			r.batches[i] = &cp
			return nil
		}
	}
	return apperror.NewNotFound("batch", b.ID.String())
}

func (r *fakeRepo) GetBatch(_ context.Context, batchID id.ID) (*Batch, error) {
	for _, b := range r.batches {
		if b.ID == batchID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("batch", batchID.String())
}

func (r *fakeRepo) GetBatchForUpdate(ctx context.Context, batchID id.ID) (*Batch, error) {
	return r.GetBatch(ctx, batchID)
}

func (r *fakeRepo) ListConsumableForUpdate(_ context.Context, productID id.ID) ([]*Batch, error) {
	var out []*Batch
	for _, b := range r.batches {
		if b.ProductID == productID && b.Status == BatchActive && b.QuantityRemaining.IsPositive() {
			cp := *b
			out = append(out, &cp)
		}
	}
	// expiry ASC, ties by date received ASC
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if b.ExpiryDate.Before(a.ExpiryDate) ||
				(b.ExpiryDate.Equal(a.ExpiryDate) && b.DateReceived.Before(a.DateReceived)) {
				out[j-1], out[j] = out[j], out[j-1]
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) ListBatches(_ context.Context, productID id.ID, _ BatchFilter) ([]*Batch, error) {
	var out []*Batch
	for _, b := range r.batches {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) AppendLedger(_ context.Context, entries []LedgerEntry) error {
	r.ledger = append(r.ledger, entries...)
	return nil
}

func (r *fakeRepo) LedgerHistory(_ context.Context, productID id.ID, _ LedgerFilter) ([]LedgerEntry, error) {
	var out []LedgerEntry
	for _, e := range r.ledger {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) Availability(_ context.Context, productID id.ID) (types.Quantity, error) {
	var total types.Quantity
	for _, b := range r.batches {
		if b.ProductID == productID {
			total += b.QuantityRemaining
		}
	}
	return total, nil
}

// fakeTxManager snapshots the repo before fn and rolls it back on error,
// mirroring real transaction semantics.
type fakeTxManager struct {
	repo *fakeRepo
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	batchSnap := make([]*Batch, len(m.repo.batches))
	for i, b := range m.repo.batches {
		cp := *b
		batchSnap[i] = &cp
	}
	ledgerSnap := append([]LedgerEntry(nil), m.repo.ledger...)

	if err := fn(ctx); err != nil {
		m.repo.batches = batchSnap
		m.repo.ledger = ledgerSnap
		return err
	}
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	return NewService(repo, &fakeTxManager{repo: repo}), repo
}

func seedBatch(repo *fakeRepo, productID id.ID, units int64, expiryDays int) *Batch {
	b := NewBatch(
		productID,
		types.NewQuantityFromUnits(units),
		time.Now().AddDate(0, 0, expiryDays),
		types.MustMoney("2.00"),
		time.Now(),
	)
	repo.batches = append(repo.batches, b)
	return b
}

func TestConsume_DrawsInExpiryOrder(t *testing.T) {
	svc, repo := newTestService()
	productID := id.New()

	// Seed out of expiry order to prove ordering comes from the listing.
	later := seedBatch(repo, productID, 10, 10)
	sooner := seedBatch(repo, productID, 5, 5)

	uc := UsageContext{Actor: "cashier-1", Source: "checkout"}
	records, err := svc.Consume(context.Background(), productID, types.NewQuantityFromUnits(7), time.Now(), uc)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, sooner.ID, records[0].BatchID)
	assert.Equal(t, types.NewQuantityFromUnits(5), records[0].QuantityDeducted)
	assert.Equal(t, later.ID, records[1].BatchID)
	assert.Equal(t, types.NewQuantityFromUnits(2), records[1].QuantityDeducted)

	got, err := repo.GetBatch(context.Background(), sooner.ID)
	require.NoError(t, err)
	assert.True(t, got.QuantityRemaining.IsZero())
	assert.Equal(t, BatchDepleted, got.Status)

	got, err = repo.GetBatch(context.Background(), later.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromUnits(8), got.QuantityRemaining)
	assert.Equal(t, BatchActive, got.Status)

	require.Len(t, repo.ledger, 2)
	assert.Equal(t, AdjustmentSale, repo.ledger[0].AdjustmentType)
	assert.Equal(t, types.NewQuantityFromUnits(5).Neg(), repo.ledger[0].QuantityDelta)
	assert.True(t, repo.ledger[0].RemainingAfter.IsZero())
	assert.Equal(t, types.NewQuantityFromUnits(2).Neg(), repo.ledger[1].QuantityDelta)
	assert.Equal(t, types.NewQuantityFromUnits(8), repo.ledger[1].RemainingAfter)
	assert.Equal(t, "cashier-1", repo.ledger[0].Actor)
}

func TestConsume_ExpiryTieBrokenByDateReceived(t *testing.T) {
	svc, repo := newTestService()
	productID := id.New()

	expiry := time.Now().AddDate(0, 0, 5)
	newer := NewBatch(productID, types.NewQuantityFromUnits(4), expiry, types.MustMoney("1.00"), time.Now())
	older := NewBatch(productID, types.NewQuantityFromUnits(4), expiry, types.MustMoney("1.00"), time.Now().Add(-48*time.Hour))
	repo.batches = append(repo.batches, newer, older)

	records, err := svc.Consume(context.Background(), productID, types.NewQuantityFromUnits(5), time.Now(), UsageContext{Source: "checkout"})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, older.ID, records[0].BatchID)
	assert.Equal(t, newer.ID, records[1].BatchID)
}

func TestConsume_InsufficientStockLeavesNoMutation(t *testing.T) {
	svc, repo := newTestService()
	productID := id.New()

	seedBatch(repo, productID, 5, 5)
	seedBatch(repo, productID, 7, 10)

	_, err := svc.Consume(context.Background(), productID, types.NewQuantityFromUnits(15), time.Now(), UsageContext{Source: "checkout"})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, float64(15), appErr.Details["requested"])
	assert.Equal(t, float64(12), appErr.Details["available"])

	avail, err := repo.Availability(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromUnits(12), avail)
	assert.Empty(t, repo.ledger)
}

func TestConsume_MidwayFailureRollsBack(t *testing.T) {
	svc, repo := newTestService()
	productID := id.New()

	seedBatch(repo, productID, 5, 5)
	second := seedBatch(repo, productID, 10, 10)
	repo.failUpdateFor = second.ID

	_, err := svc.Consume(context.Background(), productID, types.NewQuantityFromUnits(7), time.Now(), UsageContext{Source: "checkout"})
	require.Error(t, err)

	// First batch's in-transaction deduction must not survive the rollback.
	avail, availErr := repo.Availability(context.Background(), productID)
	require.NoError(t, availErr)
	assert.Equal(t, types.NewQuantityFromUnits(15), avail)
	assert.Empty(t, repo.ledger)
}

func TestConsume_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newTestService()

	for _, qty := range []types.Quantity{0, types.NewQuantityFromUnits(-1)} {
		_, err := svc.Consume(context.Background(), id.New(), qty, time.Now(), UsageContext{})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
}

func TestRestore_ReversesDeductions(t *testing.T) {
	svc, repo := newTestService()
	productID := id.New()

	seedBatch(repo, productID, 5, 5)
	seedBatch(repo, productID, 10, 10)

	records, err := svc.Consume(context.Background(), productID, types.NewQuantityFromUnits(7), time.Now(), UsageContext{Source: "checkout"})
	require.NoError(t, err)

	err = svc.Restore(context.Background(), records, time.Now(), UsageContext{Actor: "system", Source: "void"})
	require.NoError(t, err)

	avail, err := repo.Availability(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromUnits(15), avail)

	// Depleted batch is active again.
	got, err := repo.GetBatch(context.Background(), records[0].BatchID)
	require.NoError(t, err)
	assert.Equal(t, BatchActive, got.Status)
	assert.Equal(t, types.NewQuantityFromUnits(5), got.QuantityRemaining)

	// Two sale entries plus two restorations, restorations positive.
	require.Len(t, repo.ledger, 4)
	assert.Equal(t, AdjustmentRestoration, repo.ledger[2].AdjustmentType)
	assert.True(t, repo.ledger[2].QuantityDelta.IsPositive())
	assert.Equal(t, "void", repo.ledger[2].Source)
}

func TestRestore_EmptyIsNoOp(t *testing.T) {
	svc, repo := newTestService()
	require.NoError(t, svc.Restore(context.Background(), nil, time.Now(), UsageContext{}))
	assert.Empty(t, repo.ledger)
}

func TestReceive_CreatesBatchWithOpeningEntry(t *testing.T) {
	svc, repo := newTestService()
	productID := id.New()
	expiry := time.Now().AddDate(0, 0, 14)

	b, err := svc.Receive(context.Background(), productID, types.NewQuantityFromUnits(50), expiry, types.MustMoney("0.80"), UsageContext{Actor: "seed", Source: "receipt"})
	require.NoError(t, err)

	assert.Equal(t, BatchActive, b.Status)
	assert.Equal(t, types.NewQuantityFromUnits(50), b.QuantityRemaining)
	assert.Equal(t, 1, b.Version)

	require.Len(t, repo.ledger, 1)
	assert.Equal(t, AdjustmentReceipt, repo.ledger[0].AdjustmentType)
	assert.Equal(t, types.NewQuantityFromUnits(50), repo.ledger[0].QuantityDelta)
	assert.Equal(t, types.NewQuantityFromUnits(50), repo.ledger[0].RemainingAfter)

	_, err = svc.Receive(context.Background(), productID, 0, expiry, types.MustMoney("0.80"), UsageContext{})
	assert.Error(t, err)
}

func TestAdjust(t *testing.T) {
	svc, repo := newTestService()
	productID := id.New()
	b := seedBatch(repo, productID, 10, 5)

	t.Run("positive delta", func(t *testing.T) {
		adjusted, err := svc.Adjust(context.Background(), b.ID, types.NewQuantityFromUnits(3), UsageContext{Actor: "mgr", Source: "manual"})
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromUnits(13), adjusted.QuantityRemaining)
	})

	t.Run("negative delta", func(t *testing.T) {
		adjusted, err := svc.Adjust(context.Background(), b.ID, types.NewQuantityFromUnits(-13), UsageContext{Source: "manual"})
		require.NoError(t, err)
		assert.True(t, adjusted.QuantityRemaining.IsZero())
		assert.Equal(t, BatchDepleted, adjusted.Status)
	})

	t.Run("negative below zero rejected", func(t *testing.T) {
		_, err := svc.Adjust(context.Background(), b.ID, types.NewQuantityFromUnits(-1), UsageContext{Source: "manual"})
		require.Error(t, err)
		assert.True(t, apperror.IsInsufficientStock(err))
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		_, err := svc.Adjust(context.Background(), b.ID, 0, UsageContext{Source: "manual"})
		require.Error(t, err)
	})

	assert.Equal(t, AdjustmentManual, repo.ledger[0].AdjustmentType)
}
