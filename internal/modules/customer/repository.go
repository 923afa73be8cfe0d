package customer

import "context"

// Repository defines data access for the customer directory.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
	AddLoyaltyPoints(ctx context.Context, id string, points int) error
}
