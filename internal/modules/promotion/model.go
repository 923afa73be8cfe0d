package promotion

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind enumerates the supported discount strategies.
type Kind string

const (
	KindPercentage Kind = "PERCENTAGE"
	KindFixed      Kind = "FIXED"
)

var (
	ErrNotFound        = errors.New("promotion not found")
	ErrAlreadyApplied  = errors.New("promotion already applied")
	ErrMinAmountNotMet = errors.New("cart subtotal below promotion minimum")
	ErrExpired         = errors.New("promotion has expired")
)

// Promotion is an immutable definition from the promo catalog.
type Promotion struct {
	ID          uuid.UUID        `json:"id"`
	Code        string           `json:"code"`
	Description string           `json:"description,omitempty"`
	Kind        Kind             `json:"kind"`
	Value       decimal.Decimal  `json:"value"`
	MinAmount   *decimal.Decimal `json:"min_amount,omitempty"`
	MaxDiscount *decimal.Decimal `json:"max_discount,omitempty"`
	ValidUntil  *time.Time       `json:"valid_until,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Applied is a promotion plus the discount it contributed at the moment
// of application. The amount is locked: removing it restores exactly
// what it took, no matter how the cart changed in between.
type Applied struct {
	Promotion Promotion       `json:"promotion"`
	Discount  decimal.Decimal `json:"discount"`
	AppliedAt time.Time       `json:"applied_at"`
}

// CreatePromotionRequest holds the data for issuing a promotion.
type CreatePromotionRequest struct {
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
	Kind        string `json:"kind" validate:"required,oneof=PERCENTAGE FIXED percentage fixed"`
	Value       string `json:"value" validate:"required"`
	MinAmount   string `json:"min_amount"`
	MaxDiscount string `json:"max_discount"`
	ValidUntil  string `json:"valid_until"` // RFC3339
}
