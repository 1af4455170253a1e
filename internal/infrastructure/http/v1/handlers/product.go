package handlers

import (
	"github.com/gin-gonic/gin"

	"pannpos/internal/domain/catalogs/product"
	"pannpos/internal/infrastructure/http/v1/dto"
)

// ProductHandler exposes the product catalog over HTTP.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
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

// Update handles PUT /catalog/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(existing)
	if err := h.service.Update(c.Request.Context(), existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(existing))
}

// Get handles GET /catalog/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// List handles GET /catalog/products.
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	items, err := h.service.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromProducts(items),
		Count:  len(items),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

// Retire handles DELETE /catalog/products/:id (soft delete).
func (h *ProductHandler) Retire(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Retire(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
