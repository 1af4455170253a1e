package dto

import (
	"time"

	"pannpos/internal/core/types"
	"pannpos/internal/domain/catalogs/promotion"
)

// --- Request DTOs ---

// CreatePromotionRequest is the body for creating a promotion.
type CreatePromotionRequest struct {
	Name          string      `json:"name" binding:"required"`
	DiscountType  string      `json:"discountType" binding:"required"`
	DiscountValue types.Money `json:"discountValue"`
	StartsAt      *time.Time  `json:"startsAt,omitempty"`
	EndsAt        *time.Time  `json:"endsAt,omitempty"`
	Categories    []string    `json:"categories" binding:"required"`
	Condition     string      `json:"condition,omitempty"`
	Activate      bool        `json:"activate"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePromotionRequest) ToEntity() *promotion.Promotion {
	p := promotion.NewPromotion(r.Name, promotion.DiscountType(r.DiscountType), r.DiscountValue)
	p.StartsAt = r.StartsAt
	p.EndsAt = r.EndsAt
	p.Categories = r.Categories
	p.Condition = r.Condition
	if r.Activate {
		p.Status = promotion.StatusActive
	}
	return p
}

// UpdatePromotionRequest is the body for updating a promotion.
type UpdatePromotionRequest struct {
	Name          *string      `json:"name,omitempty"`
	Status        *string      `json:"status,omitempty"`
	DiscountType  *string      `json:"discountType,omitempty"`
	DiscountValue *types.Money `json:"discountValue,omitempty"`
	StartsAt      *time.Time   `json:"startsAt,omitempty"`
	EndsAt        *time.Time   `json:"endsAt,omitempty"`
	Categories    []string     `json:"categories,omitempty"`
	Condition     *string      `json:"condition,omitempty"`
	Version       int          `json:"version" binding:"required,min=1"`
}

// ApplyTo merges non-nil fields onto the entity.
func (r *UpdatePromotionRequest) ApplyTo(p *promotion.Promotion) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Status != nil {
		p.Status = promotion.Status(*r.Status)
	}
	if r.DiscountType != nil {
		p.DiscountType = promotion.DiscountType(*r.DiscountType)
	}
	if r.DiscountValue != nil {
		p.DiscountValue = *r.DiscountValue
	}
	if r.StartsAt != nil {
		p.StartsAt = r.StartsAt
	}
	if r.EndsAt != nil {
		p.EndsAt = r.EndsAt
	}
	if r.Categories != nil {
		p.Categories = r.Categories
	}
	if r.Condition != nil {
		p.Condition = *r.Condition
	}
	p.Version = r.Version
}

// --- Response DTOs ---

// PromotionResponse is a catalog promotion.
type PromotionResponse struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Status        string      `json:"status"`
	DiscountType  string      `json:"discountType"`
	DiscountValue types.Money `json:"discountValue"`
	StartsAt      *time.Time  `json:"startsAt,omitempty"`
	EndsAt        *time.Time  `json:"endsAt,omitempty"`
	Categories    []string    `json:"categories"`
	Condition     string      `json:"condition,omitempty"`
	DeletionMark  bool        `json:"deletionMark"`
	Version       int         `json:"version"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// FromPromotion converts a promotion.
func FromPromotion(p *promotion.Promotion) *PromotionResponse {
	return &PromotionResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Status:        string(p.Status),
		DiscountType:  string(p.DiscountType),
		DiscountValue: p.DiscountValue,
		StartsAt:      p.StartsAt,
		EndsAt:        p.EndsAt,
		Categories:    p.Categories,
		Condition:     p.Condition,
		DeletionMark:  p.DeletionMark,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// FromPromotions converts a promotion list.
func FromPromotions(items []*promotion.Promotion) []*PromotionResponse {
	out := make([]*PromotionResponse, len(items))
	for i, p := range items {
		out[i] = FromPromotion(p)
	}
	return out
}
