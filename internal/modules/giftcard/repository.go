package giftcard

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines data access for gift cards.
type Repository interface {
	Create(ctx context.Context, c *Card) error
	GetByNumber(ctx context.Context, number string) (*Card, error)
	// Deduct atomically lowers the balance; it fails with
	// ErrInsufficientBalance when the card cannot cover the amount.
	Deduct(ctx context.Context, number string, amount decimal.Decimal) error
	// Restore adds value back to a card, reversing a deduction.
	Restore(ctx context.Context, number string, amount decimal.Decimal) error
}
