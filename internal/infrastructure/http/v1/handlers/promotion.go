package handlers

import (
	"github.com/gin-gonic/gin"

	"pannpos/internal/domain/catalogs/promotion"
	"pannpos/internal/infrastructure/http/v1/dto"
)

// PromotionHandler exposes the promotion catalog over HTTP.
type PromotionHandler struct {
	*BaseHandler
	service *promotion.Service
}

// NewPromotionHandler creates a new promotion handler.
func NewPromotionHandler(base *BaseHandler, service *promotion.Service) *PromotionHandler {
	return &PromotionHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/promotions.
func (h *PromotionHandler) Create(c *gin.Context) {
	var req dto.CreatePromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p.ID.String())
}

// Update handles PUT /catalog/promotions/:id.
func (h *PromotionHandler) Update(c *gin.Context) {
	promotionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), promotionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(existing)
	if err := h.service.Update(c.Request.Context(), existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPromotion(existing))
}

// Get handles GET /catalog/promotions/:id.
func (h *PromotionHandler) Get(c *gin.Context) {
	promotionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), promotionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPromotion(p))
}

// List handles GET /catalog/promotions.
func (h *PromotionHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items: dto.FromPromotions(items),
		Count: len(items),
	})
}
