package dto

import (
	"time"

	"pannpos/internal/core/types"
	"pannpos/internal/domain/sales"
)

// --- Request DTOs ---

// ListSalesRequest filters sale listings.
type ListSalesRequest struct {
	Status   string     `form:"status"`
	Actor    string     `form:"actor"`
	DateFrom *time.Time `form:"dateFrom" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo   *time.Time `form:"dateTo" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit    int        `form:"limit"`
	Offset   int        `form:"offset"`
}

// ToFilter converts query params to the domain filter.
func (r *ListSalesRequest) ToFilter() sales.ListFilter {
	return sales.ListFilter{
		Status:   sales.Status(r.Status),
		Actor:    r.Actor,
		DateFrom: r.DateFrom,
		DateTo:   r.DateTo,
		Limit:    r.Limit,
		Offset:   r.Offset,
	}
}

// --- Response DTOs ---

// SaleLineResponse is one priced line on a sale.
type SaleLineResponse struct {
	LineID      string         `json:"lineId"`
	LineNo      int            `json:"lineNo"`
	ProductID   string         `json:"productId"`
	ProductName string         `json:"productName"`
	Quantity    types.Quantity `json:"quantity"`
	UnitPrice   types.Money    `json:"unitPrice"`
	GrossAmount types.Money    `json:"grossAmount"`
	Discount    types.Money    `json:"discount"`
	NetAmount   types.Money    `json:"netAmount"`
}

// SaleResponse is a persisted sale.
type SaleResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	Lines         []SaleLineResponse `json:"lines,omitempty"`
	GrossTotal    types.Money        `json:"grossTotal"`
	Discount      types.Money        `json:"discount"`
	NetTotal      types.Money        `json:"netTotal"`
	PromotionID   *string            `json:"promotionId,omitempty"`
	PromotionName string             `json:"promotionName,omitempty"`
	PaymentMethod string             `json:"paymentMethod"`
	Actor         string             `json:"actor"`
	ActorType     string             `json:"actorType"`
	Timestamp     time.Time          `json:"timestamp"`
	Status        string             `json:"status"`
	VoidedAt      *time.Time         `json:"voidedAt,omitempty"`
	VoidedBy      string             `json:"voidedBy,omitempty"`
}

// FromSale converts a sale record.
func FromSale(rec *sales.Record) *SaleResponse {
	resp := &SaleResponse{
		ID:            rec.ID.String(),
		Number:        rec.Number,
		GrossTotal:    rec.GrossTotal,
		Discount:      rec.Discount,
		NetTotal:      rec.NetTotal,
		PromotionName: rec.PromotionName,
		PaymentMethod: string(rec.PaymentMethod),
		Actor:         rec.Actor,
		ActorType:     rec.ActorType,
		Timestamp:     rec.Timestamp,
		Status:        string(rec.Status),
		VoidedAt:      rec.VoidedAt,
		VoidedBy:      rec.VoidedBy,
	}

	if rec.PromotionID != nil {
		promoID := rec.PromotionID.String()
		resp.PromotionID = &promoID
	}

	resp.Lines = make([]SaleLineResponse, len(rec.Lines))
	for i, line := range rec.Lines {
		resp.Lines[i] = SaleLineResponse{
			LineID:      line.LineID.String(),
			LineNo:      line.LineNo,
			ProductID:   line.ProductID.String(),
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			GrossAmount: line.GrossAmount,
			Discount:    line.Discount,
			NetAmount:   line.NetAmount,
		}
	}

	return resp
}

// FromSales converts a list of sale records.
func FromSales(recs []*sales.Record) []*SaleResponse {
	out := make([]*SaleResponse, len(recs))
	for i, rec := range recs {
		out[i] = FromSale(rec)
	}
	return out
}
