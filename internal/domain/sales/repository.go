package sales

import (
	"context"
	"time"

	"pannpos/internal/core/id"
)

// ListFilter narrows List results.
type ListFilter struct {
	Status   Status
	Actor    string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// Repository persists sale records.
type Repository interface {
	// Append writes a completed sale with its lines and deduction records.
	Append(ctx context.Context, rec *Record) error

	// MarkVoided flips status completed -> voided. The update is
	// conditional on the current status: if the sale is already voided it
	// returns CodeSaleVoided, if absent CodeNotFound. This is what makes
	// a double void impossible regardless of caller races.
	MarkVoided(ctx context.Context, saleID id.ID, at time.Time, voidedBy string) error

	// GetByID loads a sale with lines and deduction records.
	GetByID(ctx context.Context, saleID id.ID) (*Record, error)

	List(ctx context.Context, filter ListFilter) ([]*Record, error)
}
