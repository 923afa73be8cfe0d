package refund

import "context"

// Repository persists refund records.
type Repository interface {
	Create(ctx context.Context, r *Refund) error
	GetByID(ctx context.Context, id string) (*Refund, error)
	GetBySale(ctx context.Context, saleID string) (*Refund, error)
	List(ctx context.Context) ([]*Refund, error)
}
