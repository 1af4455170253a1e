// Package sales provides the sales ledger: the durable record of completed
// and voided checkout transactions.
package sales

import (
	"context"
	"time"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
	"pannpos/internal/domain/inventory"
)

// Status defines sale lifecycle state.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusVoided    Status = "voided"
)

// PaymentMethod identifies how the sale was settled.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
)

// Line is a priced line item on a sale.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`

	GrossAmount types.Money `db:"gross_amount" json:"grossAmount"`
	Discount    types.Money `db:"discount" json:"discount"`
	NetAmount   types.Money `db:"net_amount" json:"netAmount"`
}

// Record is a persisted sale.
//
// Deductions captures the batch deduction records from consumption time;
// they are the input a void needs to reverse the sale exactly.
type Record struct {
	ID id.ID `db:"id" json:"id"`

	// Number is the human-facing sale number (auto-generated)
	Number string `db:"number" json:"number"`

	Lines []Line `db:"-" json:"lines"`

	GrossTotal types.Money `db:"gross_total" json:"grossTotal"`
	Discount   types.Money `db:"discount" json:"discount"`
	NetTotal   types.Money `db:"net_total" json:"netTotal"`

	// PromotionID is nil when no promotion applied
	PromotionID   *id.ID `db:"promotion_id" json:"promotionId,omitempty"`
	PromotionName string `db:"promotion_name" json:"promotionName,omitempty"`

	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`

	// Actor is the cashier or customer who drove the sale
	Actor     string `db:"actor" json:"actor"`
	ActorType string `db:"actor_type" json:"actorType"`

	Timestamp time.Time `db:"timestamp" json:"timestamp"`

	Status Status `db:"status" json:"status"`

	VoidedAt *time.Time `db:"voided_at" json:"voidedAt,omitempty"`
	VoidedBy string     `db:"voided_by" json:"voidedBy,omitempty"`

	Deductions []inventory.DeductionRecord `db:"-" json:"deductions,omitempty"`
}

// Validate checks record invariants before persistence.
func (r *Record) Validate(ctx context.Context) error {
	if id.IsNil(r.ID) {
		return apperror.NewValidation("sale id is required")
	}
	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	if r.Actor == "" {
		return apperror.NewValidation("actor is required").
			WithDetail("field", "actor")
	}

	switch r.PaymentMethod {
	case PaymentCash, PaymentCard, PaymentMobile:
	default:
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(r.PaymentMethod))
	}

	return nil
}

// IsVoided reports whether the sale has been voided.
func (r *Record) IsVoided() bool {
	return r.Status == StatusVoided
}
