// Package checkout implements the point-of-sale transaction pipeline:
// stock validation, promotion resolution, cart pricing, expiry-ordered
// batch consumption, sale persistence and compensating reversal.
package checkout

import (
	"context"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
	"pannpos/internal/domain/catalogs/product"
	"pannpos/internal/domain/sales"
)

// Stage identifies a step of the checkout pipeline. A rejected result
// carries the stage that failed.
type Stage string

const (
	StageValidateStock    Stage = "VALIDATE_STOCK"
	StageResolvePromotion Stage = "RESOLVE_PROMOTION"
	StagePriceCart        Stage = "PRICE_CART"
	StageConsumeInventory Stage = "CONSUME_INVENTORY"
	StagePersistSale      Stage = "PERSIST_SALE"
	StageEmitWarnings     Stage = "EMIT_STOCK_WARNINGS"
	StageCompleted        Stage = "COMPLETED"
)

// Status is the terminal outcome of a checkout.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
)

// LineItem is a strict boundary type for a requested cart line.
// Unit price is caller-supplied and, unless the service is configured to
// trust it, verified against the catalog sell price before pricing.
type LineItem struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// Validate rejects malformed lines before any ledger access.
func (li LineItem) Validate(ctx context.Context) error {
	if id.IsNil(li.ProductID) {
		return apperror.NewValidation("product id is required").
			WithDetail("field", "productId")
	}
	if !li.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("productId", li.ProductID.String())
	}
	if li.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice").
			WithDetail("productId", li.ProductID.String())
	}
	return nil
}

// Request is a checkout submission from a terminal.
type Request struct {
	Lines         []LineItem          `json:"lines"`
	PromotionName string              `json:"promotionName,omitempty"`
	PaymentMethod sales.PaymentMethod `json:"paymentMethod"`
	ActorID       string              `json:"actorId"`
}

// Validate checks the request boundary. Ledger state is not consulted.
func (r Request) Validate(ctx context.Context) error {
	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one line item is required").
			WithDetail("field", "lines")
	}
	if r.ActorID == "" {
		return apperror.NewValidation("actor id is required").
			WithDetail("field", "actorId")
	}
	seen := make(map[id.ID]struct{}, len(r.Lines))
	for _, li := range r.Lines {
		if err := li.Validate(ctx); err != nil {
			return err
		}
		if _, dup := seen[li.ProductID]; dup {
			return apperror.NewValidation("duplicate product in cart").
				WithDetail("productId", li.ProductID.String())
		}
		seen[li.ProductID] = struct{}{}
	}
	return nil
}

// resolvedLine is a request line joined with its catalog product.
type resolvedLine struct {
	LineItem
	Product *product.Product
}

// WarningKind classifies a post-sale stock warning.
type WarningKind string

const (
	WarningOutOfStock WarningKind = "out_of_stock"
	WarningLowStock   WarningKind = "low_stock"
)

// WarningPriority orders warnings for the notification sink.
type WarningPriority string

const (
	PriorityUrgent WarningPriority = "urgent"
	PriorityHigh   WarningPriority = "high"
)

// StockWarning is an advisory emitted after a completed sale when a
// product's remaining stock crossed zero or its low-stock threshold.
type StockWarning struct {
	ProductID   id.ID           `json:"productId"`
	ProductName string          `json:"productName"`
	Kind        WarningKind     `json:"kind"`
	Priority    WarningPriority `json:"priority"`
	Remaining   types.Quantity  `json:"remaining"`
	Threshold   types.Quantity  `json:"threshold"`
}

// Result is the terminal outcome returned to the caller.
//
// Completed results carry the persisted sale and any stock warnings.
// Rejected results carry the failing stage, the error code as Reason and
// a human-readable Detail; no inventory mutation survives a rejection.
type Result struct {
	Status   Status         `json:"status"`
	Stage    Stage          `json:"stage"`
	Sale     *sales.Record  `json:"sale,omitempty"`
	Warnings []StockWarning `json:"warnings,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Detail   string         `json:"detail,omitempty"`
}

func completed(rec *sales.Record, warnings []StockWarning) *Result {
	return &Result{
		Status:   StatusCompleted,
		Stage:    StageCompleted,
		Sale:     rec,
		Warnings: warnings,
	}
}

func rejected(stage Stage, err error) *Result {
	res := &Result{Status: StatusRejected, Stage: stage}
	if appErr, ok := apperror.AsAppError(err); ok {
		res.Reason = appErr.Code
		res.Detail = appErr.Message
	} else if err != nil {
		res.Reason = apperror.CodeInternal
		res.Detail = err.Error()
	}
	return res
}
