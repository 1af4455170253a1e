package handlers

import (
	"github.com/gin-gonic/gin"

	"pannpos/internal/domain/sales"
	"pannpos/internal/infrastructure/http/v1/dto"
)

// SalesHandler exposes read access to the sales ledger.
type SalesHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(base *BaseHandler, service *sales.Service) *SalesHandler {
	return &SalesHandler{BaseHandler: base, service: service}
}

// Get retrieves a single sale with lines.
// GET /sales/:id
func (h *SalesHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(rec))
}

// List retrieves sale headers with filtering.
// GET /sales
func (h *SalesHandler) List(c *gin.Context) {
	var req dto.ListSalesRequest
	if !h.BindQuery(c, &req) {
		return
	}

	recs, err := h.service.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromSales(recs),
		Count:  len(recs),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}
