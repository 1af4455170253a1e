package promotion

import (
	"context"
	"time"

	"pannpos/internal/core/id"
)

// Repository defines persistence operations for the promotion catalog.
type Repository interface {
	Create(ctx context.Context, p *Promotion) error
	Update(ctx context.Context, p *Promotion) error
	GetByID(ctx context.Context, promotionID id.ID) (*Promotion, error)

	// FindActive returns the promotion with the given name when it is
	// active at the given time, or (nil, nil) when no promotion applies.
	// Absence is not an error: callers treat nil as "no discount".
	FindActive(ctx context.Context, name string, at time.Time) (*Promotion, error)

	List(ctx context.Context, includeDeleted bool) ([]*Promotion, error)
}
