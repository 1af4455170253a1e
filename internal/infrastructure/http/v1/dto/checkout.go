package dto

import (
	"time"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
	"pannpos/internal/domain/checkout"
	"pannpos/internal/domain/sales"
)

// --- Request DTOs ---

// CheckoutLineRequest is one requested cart line.
type CheckoutLineRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// CheckoutRequest is the body of POST /checkout.
type CheckoutRequest struct {
	Lines         []CheckoutLineRequest `json:"lines" binding:"required"`
	PromotionName string                `json:"promotionName"`
	PaymentMethod string                `json:"paymentMethod" binding:"required"`
}

// ToDomain converts the request; actorID comes from the token, never the body.
func (r *CheckoutRequest) ToDomain(actorID string) (checkout.Request, error) {
	lines := make([]checkout.LineItem, len(r.Lines))
	for i, l := range r.Lines {
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			return checkout.Request{}, apperror.NewValidation("invalid product id: " + l.ProductID)
		}
		lines[i] = checkout.LineItem{
			ProductID: productID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return checkout.Request{
		Lines:         lines,
		PromotionName: r.PromotionName,
		PaymentMethod: sales.PaymentMethod(r.PaymentMethod),
		ActorID:       actorID,
	}, nil
}

// --- Response DTOs ---

// StockWarningResponse is one advisory stock warning.
type StockWarningResponse struct {
	ProductID   string         `json:"productId"`
	ProductName string         `json:"productName"`
	Kind        string         `json:"kind"`
	Priority    string         `json:"priority"`
	Remaining   types.Quantity `json:"remaining"`
	Threshold   types.Quantity `json:"threshold"`
}

// CheckoutResponse is the terminal outcome of a checkout.
type CheckoutResponse struct {
	Status   string                 `json:"status"`
	Stage    string                 `json:"stage"`
	Sale     *SaleResponse          `json:"sale,omitempty"`
	Warnings []StockWarningResponse `json:"warnings,omitempty"`
	Reason   string                 `json:"reason,omitempty"`
	Detail   string                 `json:"detail,omitempty"`
}

// FromCheckoutResult converts a pipeline result.
func FromCheckoutResult(res *checkout.Result) *CheckoutResponse {
	resp := &CheckoutResponse{
		Status: string(res.Status),
		Stage:  string(res.Stage),
		Reason: res.Reason,
		Detail: res.Detail,
	}
	if res.Sale != nil {
		resp.Sale = FromSale(res.Sale)
	}
	if len(res.Warnings) > 0 {
		resp.Warnings = make([]StockWarningResponse, len(res.Warnings))
		for i, w := range res.Warnings {
			resp.Warnings[i] = StockWarningResponse{
				ProductID:   w.ProductID.String(),
				ProductName: w.ProductName,
				Kind:        string(w.Kind),
				Priority:    string(w.Priority),
				Remaining:   w.Remaining,
				Threshold:   w.Threshold,
			}
		}
	}
	return resp
}

// VoidResponse is the outcome of voiding a sale.
type VoidResponse struct {
	ID       string     `json:"id"`
	Number   string     `json:"number"`
	Status   string     `json:"status"`
	VoidedAt *time.Time `json:"voidedAt,omitempty"`
	VoidedBy string     `json:"voidedBy,omitempty"`
}

// FromVoidedSale converts a voided sale record.
func FromVoidedSale(rec *sales.Record) *VoidResponse {
	return &VoidResponse{
		ID:       rec.ID.String(),
		Number:   rec.Number,
		Status:   string(rec.Status),
		VoidedAt: rec.VoidedAt,
		VoidedBy: rec.VoidedBy,
	}
}
