package promotion

import "context"

// Repository is the read-mostly promo catalog.
type Repository interface {
	Create(ctx context.Context, p *Promotion) error
	// FindByCode matches active promotions case-insensitively.
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	List(ctx context.Context) ([]*Promotion, error)
}
