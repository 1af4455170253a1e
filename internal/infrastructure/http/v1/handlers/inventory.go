package handlers

import (
	"github.com/gin-gonic/gin"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/domain/inventory"
	"pannpos/internal/infrastructure/http/v1/dto"
)

// InventoryHandler exposes the batch ledger over HTTP.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// Receive creates a batch from a stock receipt.
// POST /inventory/receipts
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req dto.ReceiveBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id").
			WithDetail("value", req.ProductID))
		return
	}

	b, err := h.service.Receive(c.Request.Context(), productID, req.Quantity, req.ExpiryDate, req.CostPrice, inventory.UsageContext{
		Actor:  h.GetActorID(c),
		Source: "receipt",
		Note:   req.Note,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBatch(b))
}

// Adjust applies a manual correction to a batch.
// POST /inventory/batches/:id/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	batchID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Adjust(c.Request.Context(), batchID, req.Delta, inventory.UsageContext{
		Actor:  h.GetActorID(c),
		Source: "manual",
		Note:   req.Note,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBatch(b))
}

// ListBatches retrieves a product's batches.
// GET /inventory/products/:id/batches
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ListBatchesRequest
	if !h.BindQuery(c, &req) {
		return
	}

	batches, err := h.service.ListBatches(c.Request.Context(), productID, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromBatches(batches),
		Count:  len(batches),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

// LedgerHistory retrieves a product's usage ledger entries.
// GET /inventory/products/:id/ledger
func (h *InventoryHandler) LedgerHistory(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.LedgerHistoryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := inventory.LedgerFilter{
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if req.BatchID != "" {
		batchID, err := id.Parse(req.BatchID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid batch id").
				WithDetail("value", req.BatchID))
			return
		}
		filter.BatchID = &batchID
	}
	if req.AdjustmentType != "" {
		adj := inventory.AdjustmentType(req.AdjustmentType)
		filter.AdjustmentType = &adj
	}

	entries, err := h.service.LedgerHistory(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromLedgerEntries(entries),
		Count:  len(entries),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

// Availability returns a product's aggregate stock.
// GET /inventory/products/:id/availability
func (h *InventoryHandler) Availability(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	available, err := h.service.Availability(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AvailabilityResponse{
		ProductID: productID.String(),
		Available: available,
	})
}
