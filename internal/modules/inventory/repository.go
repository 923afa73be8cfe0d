package inventory

import "context"

// Repository defines data access for the stock ledger. RecordAdjustment
// applies the stock change and the movement row in one transaction.
type Repository interface {
	RecordAdjustment(ctx context.Context, m *Movement) error
	ListMovements(ctx context.Context, productID string) ([]*Movement, error)
}
