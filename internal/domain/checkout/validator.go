package checkout

import (
	"context"

	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
)

// ValidationResult is the outcome of a pre-flight stock check.
type ValidationResult struct {
	OK bool

	// First offending product when OK is false
	ProductID id.ID
	Requested types.Quantity
	Available types.Quantity
}

// Validator performs the advisory aggregate stock check. It is a pure
// read and fail-fast: it stops at the first shortfall. Stock can change
// between this check and consumption, so the authoritative check lives
// inside the batch ledger's consume transaction.
type Validator struct {
	inv Inventory
}

func NewValidator(inv Inventory) *Validator {
	return &Validator{inv: inv}
}

// Validate compares each line's requested quantity to the product's
// aggregate availability.
func (v *Validator) Validate(ctx context.Context, lines []LineItem) (*ValidationResult, error) {
	for _, li := range lines {
		available, err := v.inv.Availability(ctx, li.ProductID)
		if err != nil {
			return nil, err
		}
		if available < li.Quantity {
			return &ValidationResult{
				ProductID: li.ProductID,
				Requested: li.Quantity,
				Available: available,
			}, nil
		}
	}
	return &ValidationResult{OK: true}, nil
}
