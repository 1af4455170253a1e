package checkout

import (
	"context"
	"sort"
	"time"

	"pannpos/internal/core/apperror"
	appctx "pannpos/internal/core/context"
	"pannpos/internal/core/id"
	"pannpos/internal/core/tx"
	"pannpos/internal/domain/catalogs/promotion"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/domain/sales"
	"pannpos/pkg/logger"
)

// Config tunes orchestrator behavior.
type Config struct {
	// TrustClientPrice accepts caller-supplied unit prices verbatim instead
	// of verifying them against the catalog sell price. Off by default;
	// exists only for migration of legacy terminals.
	TrustClientPrice bool

	// IntentCutoff is the minimum age before an open consumption intent is
	// considered orphaned by the reconciler.
	IntentCutoff time.Duration
}

const defaultIntentCutoff = 5 * time.Minute

// Deps are the orchestrator's collaborators.
type Deps struct {
	Catalog    Catalog
	Promotions PromotionStore
	Inventory  Inventory
	Sales      SalesLedger
	Intents    IntentLog
	Notifier   NotificationSink
	Locks      Locker
	Numbers    SaleNumberer
	Metrics    Metrics
	Audit      Auditor
	TxManager  tx.Manager
	Logger     *logger.Logger
}

// Service sequences the checkout pipeline:
//
//	VALIDATE_STOCK -> RESOLVE_PROMOTION -> PRICE_CART ->
//	CONSUME_INVENTORY -> PERSIST_SALE -> EMIT_STOCK_WARNINGS -> COMPLETED
//
// Each stage fails terminally to a rejected result; nothing is retried.
// Consumption and persistence failures trigger a compensating restore of
// everything already consumed, so no rejection leaves inventory mutated.
type Service struct {
	cfg Config

	validator *Validator
	resolver  *Resolver
	pricer    *Pricer

	catalog   Catalog
	inventory Inventory
	sales     SalesLedger
	intents   IntentLog
	notifier  NotificationSink
	locks     Locker
	numbers   SaleNumberer
	metrics   Metrics
	audit     Auditor
	txManager tx.Manager
	log       *logger.Logger
}

func NewService(deps Deps, cfg Config) *Service {
	if cfg.IntentCutoff <= 0 {
		cfg.IntentCutoff = defaultIntentCutoff
	}
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Audit == nil {
		deps.Audit = nopAuditor{}
	}
	if deps.Locks == nil {
		deps.Locks = nopLocker{}
	}

	return &Service{
		cfg:       cfg,
		validator: NewValidator(deps.Inventory),
		resolver:  NewResolver(deps.Catalog, deps.Promotions, log),
		pricer:    NewPricer(),
		catalog:   deps.Catalog,
		inventory: deps.Inventory,
		sales:     deps.Sales,
		intents:   deps.Intents,
		notifier:  deps.Notifier,
		locks:     deps.Locks,
		numbers:   deps.Numbers,
		metrics:   deps.Metrics,
		audit:     deps.Audit,
		txManager: deps.TxManager,
		log:       log.WithComponent("checkout"),
	}
}

// ProcessCheckout runs the full pipeline for one cart.
//
// Malformed requests fail with a validation error before any ledger
// access. Stage failures come back as a rejected Result with a nil error;
// a non-nil error means infrastructure trouble where neither outcome can
// be reported.
func (s *Service) ProcessCheckout(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()

	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	log := s.log.WithContext(ctx)

	resolved, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok {
			s.reject(appErr.Code)
			return rejected(StageValidateStock, err), nil
		}
		return nil, err
	}

	// VALIDATE_STOCK: advisory, fail-fast. The authoritative check runs
	// inside the consume transaction under row locks.
	vr, err := s.validator.Validate(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	if !vr.OK {
		s.reject(apperror.CodeInsufficientStock)
		return rejected(StageValidateStock, apperror.NewInsufficientStock(
			vr.ProductID.String(), vr.Requested.Float64(), vr.Available.Float64())), nil
	}

	// RESOLVE_PROMOTION: nil connection means no discount, never an error.
	conn, err := s.resolver.Resolve(ctx, req.PromotionName, now, cartFacts(resolved))
	if err != nil {
		return nil, err
	}

	// PRICE_CART
	pricing := s.pricer.Price(resolved, conn)

	// Best-effort serialization of consumption per product. Locks are
	// acquired in sorted order; failure to obtain one is not fatal.
	release := s.acquireLocks(ctx, req.Lines)
	defer release()

	saleID := id.New()
	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, apperror.NewPersistence("next sale number", err)
	}

	// Intent is written before any consumption so a crash mid-pipeline
	// leaves a reversible trail for the startup reconciler.
	intent := &ConsumptionIntent{
		ID:       id.New(),
		SaleID:   saleID,
		Actor:    req.ActorID,
		OpenedAt: now,
		Status:   IntentOpen,
	}
	if err := s.intents.Open(ctx, intent); err != nil {
		return nil, apperror.NewPersistence("open consumption intent", err)
	}

	uc := inventory.UsageContext{
		Actor:  req.ActorID,
		Source: "sale:" + number,
	}

	// CONSUME_INVENTORY: once per line. Any failure reverses everything
	// already consumed in this checkout before reporting rejection.
	var consumed []inventory.DeductionRecord
	for _, line := range pricing.Lines {
		records, err := s.inventory.Consume(ctx, line.ProductID, line.Quantity, now, uc)
		if err != nil {
			s.compensate(ctx, intent.ID, consumed, now, req.ActorID, number)

			if apperror.IsInsufficientStock(err) {
				s.reject(apperror.CodeInsufficientStock)
				return rejected(StageConsumeInventory, err), nil
			}
			s.reject(apperror.CodePartialConsumption)
			return rejected(StageConsumeInventory,
				apperror.NewPartialConsumption(line.ProductID.String(), err)), nil
		}
		consumed = append(consumed, records...)

		if err := s.intents.AppendDeductions(ctx, intent.ID, records); err != nil {
			// The sale still completes correctly without it; only the
			// crash-recovery trail is degraded.
			log.Errorw("failed to record intent deductions",
				"intentId", intent.ID, "productId", line.ProductID, "error", err)
		}
	}

	rec := s.buildRecord(saleID, number, req, pricing, conn, consumed, now)

	// PERSIST_SALE: the record and the intent's committed flip land in one
	// transaction. A sale must never become durable while its intent stays
	// open, or the reconciler would restore stock that was genuinely sold.
	// A failure here after successful consumption would strand inventory
	// with no sale, so it compensates too.
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.sales.Append(ctx, rec); err != nil {
			return err
		}
		return s.intents.MarkCommitted(ctx, intent.ID, time.Now().UTC())
	})
	if err != nil {
		s.compensate(ctx, intent.ID, consumed, now, req.ActorID, number)
		s.reject(apperror.CodePersistence)
		return rejected(StagePersistSale, apperror.NewPersistence("append sale", err)), nil
	}

	// EMIT_STOCK_WARNINGS: advisory only, never fails the sale.
	warnings := s.emitStockWarnings(ctx, pricing.Lines)

	s.audit.Record(ctx, "checkout.completed", "sale", saleID, rec)
	s.metrics.ObserveCheckout(string(StatusCompleted), time.Since(started))
	log.Infow("checkout completed",
		"saleId", saleID, "number", number,
		"net", rec.NetTotal.String(), "lines", len(rec.Lines), "warnings", len(warnings))

	return completed(rec, warnings), nil
}

// VoidSale reverses a completed sale: flips its status and restores every
// batch deduction captured at consumption time, atomically. The status
// flip is conditional on the sale still being completed, which is what
// makes a second void fail instead of double-restoring stock.
func (s *Service) VoidSale(ctx context.Context, saleID id.ID) (*sales.Record, error) {
	rec, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}

	now := time.Now().UTC()
	actor := appctx.GetActorID(ctx)
	if actor == "" {
		actor = appctx.SystemActor().ActorID
	}

	uc := inventory.UsageContext{
		Actor:  actor,
		Source: "void:" + rec.Number,
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.sales.MarkVoided(ctx, saleID, now, actor); err != nil {
			return err
		}
		return s.inventory.Restore(ctx, rec.Deductions, now, uc)
	})
	if err != nil {
		return nil, err
	}

	rec.Status = sales.StatusVoided
	rec.VoidedAt = &now
	rec.VoidedBy = actor

	s.audit.Record(ctx, "checkout.voided", "sale", saleID, rec)
	s.metrics.IncVoid()
	s.log.WithContext(ctx).Infow("sale voided",
		"saleId", saleID, "number", rec.Number, "deductions", len(rec.Deductions))

	return rec, nil
}

// ReconcileOrphanedIntents restores inventory consumed by checkouts that
// died between consumption and sale persistence. Run at process startup.
func (s *Service) ReconcileOrphanedIntents(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.cfg.IntentCutoff)
	orphans, err := s.intents.ListOrphaned(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(orphans) == 0 {
		return nil
	}

	log := s.log.WithContext(ctx)
	log.Warnw("reconciling orphaned consumption intents", "count", len(orphans))

	for _, intent := range orphans {
		now := time.Now().UTC()

		// An open intent whose sale made it to the ledger is a lost
		// committed flip, not a dead checkout. Restoring it would re-add
		// stock that was sold, so the sales ledger is the tiebreaker.
		rec, err := s.sales.GetByID(ctx, intent.SaleID)
		if err != nil {
			log.Errorw("sale lookup failed for orphaned intent",
				"intentId", intent.ID, "saleId", intent.SaleID, "error", err)
			continue
		}
		if rec != nil {
			if err := s.intents.MarkCommitted(ctx, intent.ID, now); err != nil {
				log.Errorw("failed to mark intent committed",
					"intentId", intent.ID, "error", err)
			}
			continue
		}

		if len(intent.Deductions) > 0 {
			uc := inventory.UsageContext{
				Actor:  appctx.SystemActor().ActorID,
				Source: "reconcile:" + intent.ID.String(),
				Note:   "orphaned checkout intent",
			}
			if err := s.inventory.Restore(ctx, intent.Deductions, now, uc); err != nil {
				log.Errorw("failed to restore orphaned intent",
					"intentId", intent.ID, "error", err)
				continue
			}
		}
		if err := s.intents.MarkCompensated(ctx, intent.ID, now); err != nil {
			log.Errorw("failed to mark intent compensated",
				"intentId", intent.ID, "error", err)
		}
	}
	return nil
}

// resolveLines joins request lines with their catalog products and, unless
// configured otherwise, verifies the caller-supplied unit price against
// the catalog sell price.
func (s *Service) resolveLines(ctx context.Context, lines []LineItem) ([]resolvedLine, error) {
	resolved := make([]resolvedLine, 0, len(lines))
	for _, li := range lines {
		p, err := s.catalog.GetProduct(ctx, li.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.DeletionMark {
			return nil, apperror.NewNotFound("product", li.ProductID.String())
		}
		if !s.cfg.TrustClientPrice && !li.UnitPrice.Equal(p.SellPrice) {
			return nil, apperror.NewPriceMismatch(
				li.ProductID.String(), li.UnitPrice.String(), p.SellPrice.String())
		}
		resolved = append(resolved, resolvedLine{LineItem: li, Product: p})
	}
	return resolved, nil
}

// cartFacts aggregates the cart for promotion condition evaluation.
func cartFacts(lines []resolvedLine) promotion.CartFacts {
	total := 0.0
	for _, line := range lines {
		total += line.UnitPrice.InexactFloat64() * line.Quantity.Float64()
	}
	return promotion.CartFacts{
		Total:     total,
		ItemCount: int64(len(lines)),
	}
}

// acquireLocks obtains per-product locks in sorted key order and returns
// a single release for all of them.
func (s *Service) acquireLocks(ctx context.Context, lines []LineItem) func() {
	keys := make([]string, 0, len(lines))
	for _, li := range lines {
		keys = append(keys, "checkout:product:"+li.ProductID.String())
	}
	sort.Strings(keys)

	releases := make([]func(), 0, len(keys))
	for _, key := range keys {
		if release, ok := s.locks.Acquire(ctx, key); ok {
			releases = append(releases, release)
		}
	}
	return func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
}

// compensate restores everything consumed so far and closes the intent.
func (s *Service) compensate(ctx context.Context, intentID id.ID, consumed []inventory.DeductionRecord, at time.Time, actor, number string) {
	log := s.log.WithContext(ctx)

	if len(consumed) > 0 {
		uc := inventory.UsageContext{
			Actor:  actor,
			Source: "rollback:" + number,
			Note:   "checkout compensation",
		}
		if err := s.inventory.Restore(ctx, consumed, at, uc); err != nil {
			// Inventory is now short with no sale to show for it; the
			// reconciler will retry from the intent's deduction trail.
			log.Errorw("compensating restore failed",
				"intentId", intentID, "deductions", len(consumed), "error", err)
			return
		}
	}

	if err := s.intents.MarkCompensated(ctx, intentID, time.Now().UTC()); err != nil {
		log.Errorw("failed to mark intent compensated", "intentId", intentID, "error", err)
	}
}

func (s *Service) buildRecord(saleID id.ID, number string, req Request, pricing *CartPricing, conn *Connection, consumed []inventory.DeductionRecord, at time.Time) *sales.Record {
	rec := &sales.Record{
		ID:            saleID,
		Number:        number,
		GrossTotal:    pricing.GrossTotal,
		Discount:      pricing.TotalDiscount,
		NetTotal:      pricing.NetTotal,
		PaymentMethod: req.PaymentMethod,
		Actor:         req.ActorID,
		ActorType:     string(appctx.ActorTypeCashier),
		Timestamp:     at,
		Status:        sales.StatusCompleted,
		Deductions:    consumed,
	}

	if conn != nil {
		promoID := conn.Promotion.ID
		rec.PromotionID = &promoID
		rec.PromotionName = conn.Promotion.Name
	}

	rec.Lines = make([]sales.Line, 0, len(pricing.Lines))
	for i, line := range pricing.Lines {
		rec.Lines = append(rec.Lines, sales.Line{
			LineID:      id.New(),
			LineNo:      i + 1,
			ProductID:   line.ProductID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			GrossAmount: line.Gross,
			Discount:    line.Discount,
			NetAmount:   line.Net,
		})
	}

	return rec
}

// emitStockWarnings recomputes availability per sold product and notifies
// the sink about products at or below zero or their low-stock threshold.
func (s *Service) emitStockWarnings(ctx context.Context, lines []PricedLine) []StockWarning {
	log := s.log.WithContext(ctx)

	var warnings []StockWarning
	for _, line := range lines {
		remaining, err := s.inventory.Availability(ctx, line.ProductID)
		if err != nil {
			log.Warnw("availability read failed, skipping stock warning",
				"productId", line.ProductID, "error", err)
			continue
		}

		var warning StockWarning
		switch {
		case remaining <= 0:
			warning = StockWarning{
				Kind:     WarningOutOfStock,
				Priority: PriorityUrgent,
			}
		case line.Product.LowStockThreshold.IsPositive() && remaining <= line.Product.LowStockThreshold:
			warning = StockWarning{
				Kind:     WarningLowStock,
				Priority: PriorityHigh,
			}
		default:
			continue
		}

		warning.ProductID = line.ProductID
		warning.ProductName = line.Product.Name
		warning.Remaining = remaining
		warning.Threshold = line.Product.LowStockThreshold
		warnings = append(warnings, warning)

		s.metrics.IncWarning(string(warning.Kind))

		if s.notifier != nil {
			payload := map[string]any{
				"productId":   warning.ProductID.String(),
				"productName": warning.ProductName,
				"remaining":   warning.Remaining.String(),
				"threshold":   warning.Threshold.String(),
			}
			if err := s.notifier.Emit(ctx, string(warning.Kind), string(warning.Priority), payload); err != nil {
				log.Warnw("stock warning emission failed",
					"productId", warning.ProductID, "kind", warning.Kind, "error", err)
			}
		}
	}
	return warnings
}

func (s *Service) reject(reason string) {
	s.metrics.IncRejection(reason)
	s.metrics.ObserveCheckout(string(StatusRejected), 0)
}

// no-op collaborator defaults

type nopMetrics struct{}

func (nopMetrics) ObserveCheckout(string, time.Duration) {}
func (nopMetrics) IncRejection(string)                   {}
func (nopMetrics) IncVoid()                              {}
func (nopMetrics) IncWarning(string)                     {}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, string, string, id.ID, any) {}

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string) (func(), bool) {
	return func() {}, true
}
