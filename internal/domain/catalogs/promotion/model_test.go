package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pannpos/internal/core/types"
)

func validPromotion() *Promotion {
	p := NewPromotion("deal", DiscountPercentage, types.MustMoney("10"))
	p.Categories = []string{"Dairy"}
	return p
}

func TestIsActiveAt(t *testing.T) {
	now := time.Now()
	hourAgo := now.Add(-time.Hour)
	hourAhead := now.Add(time.Hour)

	tests := []struct {
		name string
		mod  func(p *Promotion)
		want bool
	}{
		{"active unbounded", func(p *Promotion) { p.Status = StatusActive }, true},
		{"inactive status", func(p *Promotion) {}, false},
		{"deletion mark", func(p *Promotion) { p.Status = StatusActive; p.DeletionMark = true }, false},
		{"inside window", func(p *Promotion) {
			p.Status = StatusActive
			p.StartsAt = &hourAgo
			p.EndsAt = &hourAhead
		}, true},
		{"before start", func(p *Promotion) {
			p.Status = StatusActive
			p.StartsAt = &hourAhead
		}, false},
		{"after end", func(p *Promotion) {
			p.Status = StatusActive
			p.EndsAt = &hourAgo
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPromotion()
			tt.mod(p)
			assert.Equal(t, tt.want, p.IsActiveAt(now))
		})
	}
}

func TestPromotionValidate(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, validPromotion().Validate(ctx))

	tests := []struct {
		name string
		mod  func(p *Promotion)
	}{
		{"blank name", func(p *Promotion) { p.Name = "  " }},
		{"percentage above 100", func(p *Promotion) { p.DiscountValue = types.MustMoney("101") }},
		{"negative percentage", func(p *Promotion) { p.DiscountValue = types.MustMoney("-5") }},
		{"negative fixed", func(p *Promotion) {
			p.DiscountType = DiscountFixed
			p.DiscountValue = types.MustMoney("-1")
		}},
		{"unknown discount type", func(p *Promotion) { p.DiscountType = "bogo" }},
		{"window end before start", func(p *Promotion) {
			start := time.Now()
			end := start.Add(-time.Hour)
			p.StartsAt = &start
			p.EndsAt = &end
		}},
		{"no categories", func(p *Promotion) { p.Categories = nil }},
		{"invalid condition", func(p *Promotion) { p.Condition = "total >" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPromotion()
			tt.mod(p)
			assert.Error(t, p.Validate(ctx))
		})
	}
}
