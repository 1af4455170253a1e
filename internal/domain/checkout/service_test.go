package checkout

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
	"pannpos/internal/domain/catalogs/category"
	"pannpos/internal/domain/catalogs/product"
	"pannpos/internal/domain/catalogs/promotion"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/domain/sales"
)

// --- fakes shared by the checkout package tests ---

type stockBatch struct {
	id   id.ID
	qty  types.Quantity
	cost types.Money
}

type fakeInventory struct {
	// batches per product, already in consumption order
	stock map[id.ID][]*stockBatch

	// fail Consume for this product after others succeeded
	failConsumeFor id.ID

	restores [][]inventory.DeductionRecord
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{stock: make(map[id.ID][]*stockBatch)}
}

func (f *fakeInventory) addBatch(productID id.ID, units int64) *stockBatch {
	b := &stockBatch{id: id.New(), qty: types.NewQuantityFromUnits(units), cost: types.MustMoney("1.00")}
	f.stock[productID] = append(f.stock[productID], b)
	return b
}

func (f *fakeInventory) Consume(_ context.Context, productID id.ID, needed types.Quantity, _ time.Time, _ inventory.UsageContext) ([]inventory.DeductionRecord, error) {
	if productID == f.failConsumeFor {
		return nil, apperror.NewPersistence("consume", assert.AnError)
	}

	var available types.Quantity
	for _, b := range f.stock[productID] {
		available += b.qty
	}
	if available < needed {
		return nil, apperror.NewInsufficientStock(productID.String(), needed.Float64(), available.Float64())
	}

	var records []inventory.DeductionRecord
	remaining := needed
	for _, b := range f.stock[productID] {
		if remaining.IsZero() {
			break
		}
		take := remaining.Min(b.qty)
		if take.IsZero() {
			continue
		}
		b.qty -= take
		remaining -= take
		records = append(records, inventory.DeductionRecord{
			BatchID:          b.id,
			ProductID:        productID,
			QuantityDeducted: take,
			CostPrice:        b.cost,
		})
	}
	return records, nil
}

func (f *fakeInventory) Restore(_ context.Context, records []inventory.DeductionRecord, _ time.Time, _ inventory.UsageContext) error {
	for _, r := range records {
		for _, b := range f.stock[r.ProductID] {
			if b.id == r.BatchID {
				b.qty += r.QuantityDeducted
			}
		}
	}
	f.restores = append(f.restores, records)
	return nil
}

func (f *fakeInventory) Availability(_ context.Context, productID id.ID) (types.Quantity, error) {
	var total types.Quantity
	for _, b := range f.stock[productID] {
		total += b.qty
	}
	return total, nil
}

type fakeCatalog struct {
	products    map[id.ID]*product.Product
	categories  map[string]*category.Category
	categoryErr map[string]error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products:    make(map[id.ID]*product.Product),
		categories:  make(map[string]*category.Category),
		categoryErr: make(map[string]error),
	}
}

func (f *fakeCatalog) GetProduct(_ context.Context, productID id.ID) (*product.Product, error) {
	return f.products[productID], nil
}

func (f *fakeCatalog) ResolveCategory(_ context.Context, name string) (*category.Category, error) {
	if err := f.categoryErr[name]; err != nil {
		return nil, err
	}
	if c, ok := f.categories[name]; ok {
		return c, nil
	}
	return nil, apperror.NewNotFound("category", name)
}

type fakePromos struct {
	promos map[string]*promotion.Promotion
}

func (f *fakePromos) FindActive(_ context.Context, name string, _ time.Time) (*promotion.Promotion, error) {
	if p, ok := f.promos[name]; ok {
		return p, nil
	}
	return nil, nil
}

type fakeSales struct {
	records    map[id.ID]*sales.Record
	failAppend bool
}

func newFakeSales() *fakeSales {
	return &fakeSales{records: make(map[id.ID]*sales.Record)}
}

func (f *fakeSales) Append(_ context.Context, rec *sales.Record) error {
	if f.failAppend {
		return assert.AnError
	}
	cp := *rec
	f.records[rec.ID] = &cp
	return nil
}

func (f *fakeSales) MarkVoided(_ context.Context, saleID id.ID, at time.Time, voidedBy string) error {
	rec, ok := f.records[saleID]
	if !ok {
		return apperror.NewNotFound("sale", saleID.String())
	}
	if rec.Status == sales.StatusVoided {
		return apperror.NewSaleVoided(saleID.String())
	}
	rec.Status = sales.StatusVoided
	rec.VoidedAt = &at
	rec.VoidedBy = voidedBy
	return nil
}

func (f *fakeSales) GetByID(_ context.Context, saleID id.ID) (*sales.Record, error) {
	rec, ok := f.records[saleID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

type fakeIntents struct {
	intents map[id.ID]*ConsumptionIntent

	failMarkCommitted bool
}

func newFakeIntents() *fakeIntents {
	return &fakeIntents{intents: make(map[id.ID]*ConsumptionIntent)}
}

func (f *fakeIntents) Open(_ context.Context, intent *ConsumptionIntent) error {
	cp := *intent
	f.intents[intent.ID] = &cp
	return nil
}

func (f *fakeIntents) AppendDeductions(_ context.Context, intentID id.ID, records []inventory.DeductionRecord) error {
	f.intents[intentID].Deductions = append(f.intents[intentID].Deductions, records...)
	return nil
}

func (f *fakeIntents) MarkCommitted(_ context.Context, intentID id.ID, at time.Time) error {
	if f.failMarkCommitted {
		return assert.AnError
	}
	f.intents[intentID].Status = IntentCommitted
	f.intents[intentID].ResolvedAt = &at
	return nil
}

func (f *fakeIntents) MarkCompensated(_ context.Context, intentID id.ID, at time.Time) error {
	f.intents[intentID].Status = IntentCompensated
	f.intents[intentID].ResolvedAt = &at
	return nil
}

func (f *fakeIntents) ListOrphaned(_ context.Context, olderThan time.Time) ([]*ConsumptionIntent, error) {
	var out []*ConsumptionIntent
	for _, intent := range f.intents {
		if intent.Status == IntentOpen && intent.OpenedAt.Before(olderThan) {
			out = append(out, intent)
		}
	}
	return out, nil
}

func (f *fakeIntents) single() *ConsumptionIntent {
	for _, intent := range f.intents {
		return intent
	}
	return nil
}

type emittedEvent struct {
	kind     string
	priority string
	payload  map[string]any
}

type fakeSink struct {
	events []emittedEvent
}

func (f *fakeSink) Emit(_ context.Context, kind, priority string, payload map[string]any) error {
	f.events = append(f.events, emittedEvent{kind: kind, priority: priority, payload: payload})
	return nil
}

type fakeNumbers struct {
	n int
}

func (f *fakeNumbers) Next(context.Context) (string, error) {
	f.n++
	return fmt.Sprintf("POS-2026-%05d", f.n), nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// snapshotTx rolls the sales and intent fakes back when fn fails, the way
// a real transaction would.
type snapshotTx struct {
	sales   *fakeSales
	intents *fakeIntents
}

func (s *snapshotTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	savedSales := make(map[id.ID]*sales.Record, len(s.sales.records))
	for k, v := range s.sales.records {
		cp := *v
		savedSales[k] = &cp
	}
	savedIntents := make(map[id.ID]*ConsumptionIntent, len(s.intents.intents))
	for k, v := range s.intents.intents {
		cp := *v
		savedIntents[k] = &cp
	}

	if err := fn(ctx); err != nil {
		s.sales.records = savedSales
		s.intents.intents = savedIntents
		return err
	}
	return nil
}

// --- fixture ---

type fixture struct {
	svc       *Service
	catalog   *fakeCatalog
	promos    *fakePromos
	inventory *fakeInventory
	sales     *fakeSales
	intents   *fakeIntents
	sink      *fakeSink

	milk  *product.Product
	bread *product.Product
	dairy *category.Category
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	f := &fixture{
		catalog:   newFakeCatalog(),
		promos:    &fakePromos{promos: make(map[string]*promotion.Promotion)},
		inventory: newFakeInventory(),
		sales:     newFakeSales(),
		intents:   newFakeIntents(),
		sink:      &fakeSink{},
	}

	f.dairy = category.NewCategory("Dairy")
	f.dairy.AddSubcategory("Milk")
	f.catalog.categories["Dairy"] = f.dairy

	f.milk = product.NewProduct("MILK-1L", "Whole Milk 1L", f.dairy.ID, f.dairy.Subcategories[0].ID)
	f.milk.SellPrice = types.MustMoney("1.50")
	f.milk.LowStockThreshold = types.NewQuantityFromUnits(20)
	f.catalog.products[f.milk.ID] = f.milk

	f.bread = product.NewProduct("BRD-WHT", "White Loaf", id.New(), id.New())
	f.bread.SellPrice = types.MustMoney("1.20")
	f.catalog.products[f.bread.ID] = f.bread

	f.inventory.addBatch(f.milk.ID, 100)
	f.inventory.addBatch(f.bread.ID, 50)

	f.svc = NewService(Deps{
		Catalog:    f.catalog,
		Promotions: f.promos,
		Inventory:  f.inventory,
		Sales:      f.sales,
		Intents:    f.intents,
		Notifier:   f.sink,
		Numbers:    &fakeNumbers{},
		TxManager:  passthroughTx{},
	}, cfg)

	return f
}

func (f *fixture) request(lines ...LineItem) Request {
	return Request{
		Lines:         lines,
		PaymentMethod: sales.PaymentCash,
		ActorID:       "cashier-1",
	}
}

func (f *fixture) milkLine(units int64) LineItem {
	return LineItem{ProductID: f.milk.ID, Quantity: types.NewQuantityFromUnits(units), UnitPrice: f.milk.SellPrice}
}

func (f *fixture) breadLine(units int64) LineItem {
	return LineItem{ProductID: f.bread.ID, Quantity: types.NewQuantityFromUnits(units), UnitPrice: f.bread.SellPrice}
}

// --- tests ---

func TestProcessCheckout_Completed(t *testing.T) {
	f := newFixture(t, Config{})

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(f.milkLine(2), f.breadLine(3)))
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, StageCompleted, res.Stage)
	require.NotNil(t, res.Sale)

	rec := res.Sale
	assert.Equal(t, "POS-2026-00001", rec.Number)
	assert.Equal(t, sales.StatusCompleted, rec.Status)
	assert.Equal(t, "cashier-1", rec.Actor)
	require.Len(t, rec.Lines, 2)
	assert.Equal(t, 1, rec.Lines[0].LineNo)
	assert.Equal(t, "Whole Milk 1L", rec.Lines[0].ProductName)

	// 2 * 1.50 + 3 * 1.20 = 6.60, no promotion
	assert.True(t, rec.GrossTotal.Equal(types.MustMoney("6.60")), "gross %s", rec.GrossTotal)
	assert.True(t, rec.Discount.IsZero())
	assert.True(t, rec.NetTotal.Equal(types.MustMoney("6.60")))

	// stock deducted
	milkLeft, _ := f.inventory.Availability(context.Background(), f.milk.ID)
	assert.Equal(t, types.NewQuantityFromUnits(98), milkLeft)

	// persisted with its deduction trail
	stored, err := f.sales.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, rec.Deductions, 2)

	// intent committed
	intent := f.intents.single()
	require.NotNil(t, intent)
	assert.Equal(t, IntentCommitted, intent.Status)
	assert.Equal(t, rec.ID, intent.SaleID)
}

func TestProcessCheckout_AppliesPromotion(t *testing.T) {
	f := newFixture(t, Config{})

	promo := promotion.NewPromotion("dairy-deal", promotion.DiscountPercentage, types.MustMoney("10"))
	promo.Status = promotion.StatusActive
	promo.Categories = []string{"Dairy"}
	f.promos.promos["dairy-deal"] = promo

	req := f.request(f.milkLine(2), f.breadLine(1))
	req.PromotionName = "dairy-deal"

	res, err := f.svc.ProcessCheckout(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, res.Status)

	rec := res.Sale
	// milk line 3.00 discounted 10% = 0.30; bread not in Dairy
	assert.True(t, rec.Discount.Equal(types.MustMoney("0.30")), "discount %s", rec.Discount)
	assert.True(t, rec.NetTotal.Equal(types.MustMoney("3.90")), "net %s", rec.NetTotal)
	require.NotNil(t, rec.PromotionID)
	assert.Equal(t, promo.ID, *rec.PromotionID)
	assert.Equal(t, "dairy-deal", rec.PromotionName)

	assert.True(t, rec.Lines[0].Discount.Equal(types.MustMoney("0.30")))
	assert.True(t, rec.Lines[1].Discount.IsZero())
}

func TestProcessCheckout_RejectsInsufficientStock(t *testing.T) {
	f := newFixture(t, Config{})

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(f.milkLine(101)))
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, StageValidateStock, res.Stage)
	assert.Equal(t, apperror.CodeInsufficientStock, res.Reason)
	assert.Nil(t, res.Sale)

	// no mutation, no sale, no intent
	milkLeft, _ := f.inventory.Availability(context.Background(), f.milk.ID)
	assert.Equal(t, types.NewQuantityFromUnits(100), milkLeft)
	assert.Empty(t, f.sales.records)
	assert.Empty(t, f.intents.intents)
}

func TestProcessCheckout_RejectsPriceMismatch(t *testing.T) {
	f := newFixture(t, Config{})

	line := f.milkLine(1)
	line.UnitPrice = types.MustMoney("0.99")

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(line))
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, apperror.CodePriceMismatch, res.Reason)
	assert.Empty(t, f.sales.records)
}

func TestProcessCheckout_TrustClientPrice(t *testing.T) {
	f := newFixture(t, Config{TrustClientPrice: true})

	line := f.milkLine(1)
	line.UnitPrice = types.MustMoney("0.99")

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(line))
	require.NoError(t, err)

	require.Equal(t, StatusCompleted, res.Status)
	assert.True(t, res.Sale.NetTotal.Equal(types.MustMoney("0.99")))
}

func TestProcessCheckout_ConsumeFailureCompensates(t *testing.T) {
	f := newFixture(t, Config{})
	f.inventory.failConsumeFor = f.bread.ID

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(f.milkLine(5), f.breadLine(2)))
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, StageConsumeInventory, res.Stage)
	assert.Equal(t, apperror.CodePartialConsumption, res.Reason)

	// the milk deduction was rolled back
	require.Len(t, f.inventory.restores, 1)
	milkLeft, _ := f.inventory.Availability(context.Background(), f.milk.ID)
	assert.Equal(t, types.NewQuantityFromUnits(100), milkLeft)

	assert.Empty(t, f.sales.records)
	assert.Equal(t, IntentCompensated, f.intents.single().Status)
}

func TestProcessCheckout_PersistFailureCompensates(t *testing.T) {
	f := newFixture(t, Config{})
	f.sales.failAppend = true

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(f.milkLine(5)))
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, StagePersistSale, res.Stage)
	assert.Equal(t, apperror.CodePersistence, res.Reason)

	milkLeft, _ := f.inventory.Availability(context.Background(), f.milk.ID)
	assert.Equal(t, types.NewQuantityFromUnits(100), milkLeft)
	assert.Equal(t, IntentCompensated, f.intents.single().Status)
}

func TestProcessCheckout_CommitFlipFailureRollsBackSale(t *testing.T) {
	f := newFixture(t, Config{})
	f.intents.failMarkCommitted = true

	f.svc = NewService(Deps{
		Catalog:    f.catalog,
		Promotions: f.promos,
		Inventory:  f.inventory,
		Sales:      f.sales,
		Intents:    f.intents,
		Notifier:   f.sink,
		Numbers:    &fakeNumbers{},
		TxManager:  &snapshotTx{sales: f.sales, intents: f.intents},
	}, Config{})

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(f.milkLine(10)))
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, StagePersistSale, res.Stage)
	assert.Equal(t, apperror.CodePersistence, res.Reason)

	// the sale record must not outlive its failed committed flip, otherwise
	// the reconciler would later restore stock that was sold
	assert.Empty(t, f.sales.records)

	milkLeft, _ := f.inventory.Availability(context.Background(), f.milk.ID)
	assert.Equal(t, types.NewQuantityFromUnits(100), milkLeft)
	assert.Equal(t, IntentCompensated, f.intents.single().Status)
}

func TestProcessCheckout_EmitsStockWarnings(t *testing.T) {
	f := newFixture(t, Config{})

	// 100 on hand, threshold 20: selling 85 leaves 15
	res, err := f.svc.ProcessCheckout(context.Background(), f.request(f.milkLine(85)))
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, res.Status)

	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, WarningLowStock, w.Kind)
	assert.Equal(t, PriorityHigh, w.Priority)
	assert.Equal(t, types.NewQuantityFromUnits(15), w.Remaining)
	assert.Equal(t, f.milk.ID, w.ProductID)

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, string(WarningLowStock), f.sink.events[0].kind)
	assert.Equal(t, f.milk.ID.String(), f.sink.events[0].payload["productId"])
}

func TestProcessCheckout_OutOfStockWarning(t *testing.T) {
	f := newFixture(t, Config{})

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(f.milkLine(100)))
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, res.Status)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarningOutOfStock, res.Warnings[0].Kind)
	assert.Equal(t, PriorityUrgent, res.Warnings[0].Priority)
}

func TestProcessCheckout_RequestValidation(t *testing.T) {
	f := newFixture(t, Config{})

	tests := []struct {
		name string
		req  Request
	}{
		{"no lines", Request{PaymentMethod: sales.PaymentCash, ActorID: "c1"}},
		{"missing actor", Request{Lines: []LineItem{f.milkLine(1)}, PaymentMethod: sales.PaymentCash}},
		{"zero quantity", f.request(LineItem{ProductID: f.milk.ID, UnitPrice: f.milk.SellPrice})},
		{"negative price", f.request(LineItem{ProductID: f.milk.ID, Quantity: types.NewQuantityFromUnits(1), UnitPrice: types.MustMoney("-1")})},
		{"duplicate product", f.request(f.milkLine(1), f.milkLine(2))},
		{"nil product", f.request(LineItem{Quantity: types.NewQuantityFromUnits(1)})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.ProcessCheckout(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, res)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestProcessCheckout_UnknownProduct(t *testing.T) {
	f := newFixture(t, Config{})

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(
		LineItem{ProductID: id.New(), Quantity: types.NewQuantityFromUnits(1), UnitPrice: types.MustMoney("1.00")}))
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, apperror.CodeNotFound, res.Reason)
}

func TestVoidSale(t *testing.T) {
	f := newFixture(t, Config{})

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(f.milkLine(10)))
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, res.Status)
	saleID := res.Sale.ID

	milkLeft, _ := f.inventory.Availability(context.Background(), f.milk.ID)
	require.Equal(t, types.NewQuantityFromUnits(90), milkLeft)

	voided, err := f.svc.VoidSale(context.Background(), saleID)
	require.NoError(t, err)

	assert.Equal(t, sales.StatusVoided, voided.Status)
	assert.NotNil(t, voided.VoidedAt)
	assert.NotEmpty(t, voided.VoidedBy)

	milkLeft, _ = f.inventory.Availability(context.Background(), f.milk.ID)
	assert.Equal(t, types.NewQuantityFromUnits(100), milkLeft)
}

func TestVoidSale_DoubleVoidRejected(t *testing.T) {
	f := newFixture(t, Config{})

	res, err := f.svc.ProcessCheckout(context.Background(), f.request(f.milkLine(10)))
	require.NoError(t, err)
	saleID := res.Sale.ID

	_, err = f.svc.VoidSale(context.Background(), saleID)
	require.NoError(t, err)

	_, err = f.svc.VoidSale(context.Background(), saleID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSaleVoided, appErr.Code)

	// no second restoration
	milkLeft, _ := f.inventory.Availability(context.Background(), f.milk.ID)
	assert.Equal(t, types.NewQuantityFromUnits(100), milkLeft)
	require.Len(t, f.inventory.restores, 1)
}

func TestVoidSale_UnknownSale(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.svc.VoidSale(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReconcileOrphanedIntents(t *testing.T) {
	f := newFixture(t, Config{IntentCutoff: time.Minute})

	b := f.inventory.addBatch(f.milk.ID, 0)
	b.qty = 0

	orphan := &ConsumptionIntent{
		ID:       id.New(),
		SaleID:   id.New(),
		Actor:    "cashier-1",
		OpenedAt: time.Now().UTC().Add(-time.Hour),
		Status:   IntentOpen,
	}
	require.NoError(t, f.intents.Open(context.Background(), orphan))
	require.NoError(t, f.intents.AppendDeductions(context.Background(), orphan.ID, []inventory.DeductionRecord{{
		BatchID:          b.id,
		ProductID:        f.milk.ID,
		QuantityDeducted: types.NewQuantityFromUnits(7),
	}}))

	// a fresh open intent must not be touched
	fresh := &ConsumptionIntent{ID: id.New(), SaleID: id.New(), OpenedAt: time.Now().UTC(), Status: IntentOpen}
	require.NoError(t, f.intents.Open(context.Background(), fresh))

	require.NoError(t, f.svc.ReconcileOrphanedIntents(context.Background()))

	assert.Equal(t, IntentCompensated, f.intents.intents[orphan.ID].Status)
	assert.Equal(t, IntentOpen, f.intents.intents[fresh.ID].Status)

	milkLeft, _ := f.inventory.Availability(context.Background(), f.milk.ID)
	assert.Equal(t, types.NewQuantityFromUnits(107), milkLeft)
}

func TestReconcileOrphanedIntents_PersistedSaleNotRestored(t *testing.T) {
	f := newFixture(t, Config{IntentCutoff: time.Minute})

	// the checkout died after its sale committed but before the intent
	// flip became visible; the deductions belong to a real sale
	res, err := f.svc.ProcessCheckout(context.Background(), f.request(f.milkLine(10)))
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, res.Status)

	intent := f.intents.single()
	intent.Status = IntentOpen
	intent.OpenedAt = time.Now().UTC().Add(-time.Hour)
	intent.ResolvedAt = nil

	require.NoError(t, f.svc.ReconcileOrphanedIntents(context.Background()))

	// sold stock stays sold
	milkLeft, _ := f.inventory.Availability(context.Background(), f.milk.ID)
	assert.Equal(t, types.NewQuantityFromUnits(90), milkLeft)
	assert.Empty(t, f.inventory.restores)

	assert.Equal(t, IntentCommitted, intent.Status)
	stored, err := f.sales.GetByID(context.Background(), res.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusCompleted, stored.Status)
}
