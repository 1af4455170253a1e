package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
	"pannpos/pkg/logger"
)

type fakeRepo struct {
	records    map[id.ID]*Record
	lastFilter ListFilter
}

func (f *fakeRepo) Append(_ context.Context, rec *Record) error {
	f.records[rec.ID] = rec
	return nil
}

func (f *fakeRepo) MarkVoided(_ context.Context, saleID id.ID, at time.Time, voidedBy string) error {
	rec, ok := f.records[saleID]
	if !ok {
		return apperror.NewNotFound("sale", saleID.String())
	}
	if rec.Status == StatusVoided {
		return apperror.NewSaleVoided(saleID.String())
	}
	rec.Status = StatusVoided
	rec.VoidedAt = &at
	rec.VoidedBy = voidedBy
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, saleID id.ID) (*Record, error) {
	return f.records[saleID], nil
}

func (f *fakeRepo) List(_ context.Context, filter ListFilter) ([]*Record, error) {
	f.lastFilter = filter
	var out []*Record
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{records: make(map[id.ID]*Record)}
	return NewService(repo, logger.Default()), repo
}

func sampleRecord() *Record {
	return &Record{
		ID:     id.New(),
		Number: "POS-2026-00001",
		Lines: []Line{{
			LineID:    id.New(),
			LineNo:    1,
			ProductID: id.New(),
			Quantity:  types.NewQuantityFromUnits(2),
			UnitPrice: types.MustMoney("1.50"),
		}},
		GrossTotal:    types.MustMoney("3.00"),
		NetTotal:      types.MustMoney("3.00"),
		PaymentMethod: PaymentCash,
		Actor:         "cashier-1",
		Timestamp:     time.Now().UTC(),
		Status:        StatusCompleted,
	}
}

func TestGetByID(t *testing.T) {
	svc, repo := newTestService()
	rec := sampleRecord()
	repo.records[rec.ID] = rec

	got, err := svc.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Number, got.Number)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetByID(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestList_ClampsLimit(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.lastFilter.Limit)

	_, err = svc.List(context.Background(), ListFilter{Limit: 9999})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.lastFilter.Limit)

	_, err = svc.List(context.Background(), ListFilter{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastFilter.Limit)
}

func TestRecordValidate(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, sampleRecord().Validate(ctx))

	tests := []struct {
		name string
		mod  func(r *Record)
	}{
		{"nil id", func(r *Record) { r.ID = id.Nil() }},
		{"no lines", func(r *Record) { r.Lines = nil }},
		{"missing actor", func(r *Record) { r.Actor = "" }},
		{"bad payment method", func(r *Record) { r.PaymentMethod = "barter" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleRecord()
			tt.mod(r)
			assert.Error(t, r.Validate(ctx))
		})
	}
}

func TestIsVoided(t *testing.T) {
	rec := sampleRecord()
	assert.False(t, rec.IsVoided())
	rec.Status = StatusVoided
	assert.True(t, rec.IsVoided())
}
