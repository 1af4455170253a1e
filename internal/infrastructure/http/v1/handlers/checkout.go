package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pannpos/internal/domain/checkout"
	"pannpos/internal/infrastructure/http/v1/dto"
)

// CheckoutHandler exposes the checkout pipeline over HTTP.
type CheckoutHandler struct {
	*BaseHandler
	service *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(base *BaseHandler, service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{BaseHandler: base, service: service}
}

// Checkout processes a sale.
// POST /checkout
//
// A rejected checkout is still HTTP 200: the pipeline ran to a terminal
// outcome and the response body carries the failing stage and reason.
// Errors (malformed request, infrastructure failure) go through the
// error middleware as usual.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToDomain(h.GetActorID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.ProcessCheckout(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromCheckoutResult(result)
	if result.Status == checkout.StatusCompleted {
		h.OK(c, resp)
		return
	}

	h.CompleteIdempotency(c, http.StatusUnprocessableEntity, "application/json", resp)
	c.JSON(http.StatusUnprocessableEntity, resp)
}

// Void reverses a completed sale.
// POST /sales/:id/void
func (h *CheckoutHandler) Void(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.VoidSale(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromVoidedSale(rec))
}
