package handlers

import (
	"github.com/gin-gonic/gin"

	"pannpos/internal/domain/catalogs/category"
	"pannpos/internal/infrastructure/http/v1/dto"
)

// CategoryHandler exposes the category catalog over HTTP.
type CategoryHandler struct {
	*BaseHandler
	service *category.Service
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHandler {
	return &CategoryHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), cat); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cat.ID.String())
}

// Update handles PUT /catalog/categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	categoryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(existing)
	if err := h.service.Update(c.Request.Context(), existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCategory(existing))
}

// Get handles GET /catalog/categories/:id.
func (h *CategoryHandler) Get(c *gin.Context) {
	categoryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	cat, err := h.service.GetByID(c.Request.Context(), categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCategory(cat))
}

// List handles GET /catalog/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items: dto.FromCategories(items),
		Count: len(items),
	})
}
