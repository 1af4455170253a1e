// Package promotion provides the promotion catalog.
// Promotions are read-only to the checkout core; lifecycle (activation,
// windows, category lists) is managed through this catalog.
package promotion

import (
	"context"
	"strings"
	"time"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
)

// DiscountType defines how the discount value is interpreted.
type DiscountType string

const (
	// DiscountPercentage discounts itemTotal * value/100 per matched item
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed discounts min(value, itemTotal) per matched item
	DiscountFixed DiscountType = "fixed"
)

// Status defines promotion lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Promotion defines a category-scoped discount.
type Promotion struct {
	ID id.ID `db:"id" json:"id"`

	// Name is the handle checkout requests reference (unique among live promotions)
	Name string `db:"name" json:"name"`

	Status Status `db:"status" json:"status"`

	DiscountType  DiscountType `db:"discount_type" json:"discountType"`
	DiscountValue types.Money  `db:"discount_value" json:"discountValue"`

	// Validity window. Nil means unbounded on that side.
	StartsAt *time.Time `db:"starts_at" json:"startsAt,omitempty"`
	EndsAt   *time.Time `db:"ends_at" json:"endsAt,omitempty"`

	// Categories lists the top-level category names this promotion discounts.
	// Stale entries are tolerated: resolution failures skip the category.
	Categories []string `db:"categories" json:"categories"`

	// Condition is an optional CEL expression over cart aggregates
	// (total, item_count). Empty means unconditional.
	Condition string `db:"condition" json:"condition,omitempty"`

	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`
	Version      int  `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewPromotion creates an inactive promotion with generated ID.
func NewPromotion(name string, discountType DiscountType, value types.Money) *Promotion {
	now := time.Now().UTC()
	return &Promotion{
		ID:            id.New(),
		Name:          strings.TrimSpace(name),
		Status:        StatusInactive,
		DiscountType:  discountType,
		DiscountValue: value,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsActiveAt reports whether the promotion applies at the given time:
// status active and, when bounds are present, t inside [StartsAt, EndsAt].
func (p *Promotion) IsActiveAt(t time.Time) bool {
	if p.Status != StatusActive || p.DeletionMark {
		return false
	}
	if p.StartsAt != nil && t.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && t.After(*p.EndsAt) {
		return false
	}
	return true
}

// Validate checks promotion invariants.
func (p *Promotion) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("promotion name is required").
			WithDetail("field", "name")
	}

	switch p.DiscountType {
	case DiscountPercentage:
		hundred := types.NewMoney(100)
		if p.DiscountValue.IsNegative() || p.DiscountValue.GreaterThan(hundred) {
			return apperror.NewValidation("percentage discount must be between 0 and 100").
				WithDetail("field", "discountValue")
		}
	case DiscountFixed:
		if p.DiscountValue.IsNegative() {
			return apperror.NewValidation("fixed discount cannot be negative").
				WithDetail("field", "discountValue")
		}
	default:
		return apperror.NewValidation("invalid discount type").
			WithDetail("field", "discountType").
			WithDetail("value", string(p.DiscountType))
	}

	if p.StartsAt != nil && p.EndsAt != nil && p.EndsAt.Before(*p.StartsAt) {
		return apperror.NewValidation("validity window end precedes start").
			WithDetail("field", "endsAt")
	}

	if len(p.Categories) == 0 {
		return apperror.NewValidation("at least one category is required").
			WithDetail("field", "categories")
	}

	if p.Condition != "" {
		if err := CheckCondition(p.Condition); err != nil {
			return apperror.NewValidation("invalid condition expression").
				WithDetail("field", "condition").
				WithCause(err)
		}
	}

	return nil
}
