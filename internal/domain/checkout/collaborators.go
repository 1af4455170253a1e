package checkout

import (
	"context"
	"time"

	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
	"pannpos/internal/domain/catalogs/category"
	"pannpos/internal/domain/catalogs/product"
	"pannpos/internal/domain/catalogs/promotion"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/domain/sales"
)

// Catalog is the product/category catalog as the pipeline sees it.
type Catalog interface {
	GetProduct(ctx context.Context, productID id.ID) (*product.Product, error)
	ResolveCategory(ctx context.Context, name string) (*category.Category, error)
}

// PromotionStore looks up live promotions.
type PromotionStore interface {
	// FindActive returns (nil, nil) when no active promotion matches
	FindActive(ctx context.Context, name string, at time.Time) (*promotion.Promotion, error)
}

// Inventory is the batch ledger surface the pipeline consumes.
type Inventory interface {
	Consume(ctx context.Context, productID id.ID, quantityNeeded types.Quantity, at time.Time, uc inventory.UsageContext) ([]inventory.DeductionRecord, error)
	Restore(ctx context.Context, records []inventory.DeductionRecord, at time.Time, uc inventory.UsageContext) error
	Availability(ctx context.Context, productID id.ID) (types.Quantity, error)
}

// SalesLedger persists and voids sale records.
type SalesLedger interface {
	Append(ctx context.Context, rec *sales.Record) error
	MarkVoided(ctx context.Context, saleID id.ID, at time.Time, voidedBy string) error
	GetByID(ctx context.Context, saleID id.ID) (*sales.Record, error)
}

// NotificationSink receives advisory events. Emit is fire-and-forget:
// the pipeline logs sink errors and never fails a transaction on them.
type NotificationSink interface {
	Emit(ctx context.Context, kind, priority string, payload map[string]any) error
}

// Locker serializes consumption per product across terminals. Acquisition
// is best-effort: when the lock cannot be obtained the pipeline proceeds
// anyway, because batch row locks inside the consume transaction remain
// the authoritative guard against oversell.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool)
}

// SaleNumberer issues human-facing sale numbers.
type SaleNumberer interface {
	Next(ctx context.Context) (string, error)
}

// Metrics counts checkout outcomes.
type Metrics interface {
	ObserveCheckout(status string, duration time.Duration)
	IncRejection(reason string)
	IncVoid()
	IncWarning(kind string)
}

// Auditor records an operation snapshot for offline inspection.
type Auditor interface {
	Record(ctx context.Context, operation, entity string, entityID id.ID, payload any)
}
