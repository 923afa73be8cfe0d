package promotion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukapos/dukapos-backend/internal/money"
)

var oneHundred = decimal.NewFromInt(100)

// Engine validates promo codes against a cart snapshot and computes the
// discount to lock in. It holds no state of its own; applied promotions
// live on the cart.
type Engine interface {
	// Apply returns the Applied record for code, or one of ErrNotFound,
	// ErrAlreadyApplied, ErrMinAmountNotMet, ErrExpired — checked in that
	// order, first failure wins.
	Apply(ctx context.Context, code string, subtotal, discountTotal decimal.Decimal, applied []Applied, now time.Time) (*Applied, error)

	CreatePromotion(ctx context.Context, req CreatePromotionRequest) (*Promotion, error)
	ListPromotions(ctx context.Context) ([]*Promotion, error)
}

type engine struct{ repo Repository }

func NewEngine(repo Repository) Engine { return &engine{repo: repo} }

func (e *engine) Apply(ctx context.Context, code string, subtotal, discountTotal decimal.Decimal, applied []Applied, now time.Time) (*Applied, error) {
	p, err := e.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	for _, a := range applied {
		if a.Promotion.ID == p.ID {
			return nil, ErrAlreadyApplied
		}
	}
	if p.MinAmount != nil && subtotal.LessThan(*p.MinAmount) {
		return nil, ErrMinAmountNotMet
	}
	if p.ValidUntil != nil && p.ValidUntil.Before(now) {
		return nil, ErrExpired
	}

	discount := computeDiscount(p, subtotal)

	// A stacked discount can never push discountTotal past the subtotal.
	headroom := subtotal.Sub(discountTotal)
	if headroom.IsNegative() {
		headroom = decimal.Zero
	}
	if discount.GreaterThan(headroom) {
		discount = headroom
	}

	return &Applied{Promotion: *p, Discount: discount, AppliedAt: now}, nil
}

// computeDiscount evaluates the promotion against the subtotal at
// application time. The result is locked into the Applied record and
// never recomputed.
func computeDiscount(p *Promotion, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch p.Kind {
	case KindPercentage:
		discount = money.Round2(subtotal.Mul(p.Value).Div(oneHundred))
		if p.MaxDiscount != nil && discount.GreaterThan(*p.MaxDiscount) {
			discount = *p.MaxDiscount
		}
	case KindFixed:
		discount = p.Value
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return money.Round2(discount)
}

func (e *engine) CreatePromotion(ctx context.Context, req CreatePromotionRequest) (*Promotion, error) {
	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid value: %w", err)
	}
	p := &Promotion{
		ID:          uuid.New(),
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Description: req.Description,
		Kind:        Kind(strings.ToUpper(req.Kind)),
		Value:       value,
		IsActive:    true,
	}
	if req.MinAmount != "" {
		d, err := decimal.NewFromString(req.MinAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid min_amount: %w", err)
		}
		p.MinAmount = &d
	}
	if req.MaxDiscount != "" {
		d, err := decimal.NewFromString(req.MaxDiscount)
		if err != nil {
			return nil, fmt.Errorf("invalid max_discount: %w", err)
		}
		p.MaxDiscount = &d
	}
	if req.ValidUntil != "" {
		t, err := time.Parse(time.RFC3339, req.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("invalid valid_until: %w", err)
		}
		p.ValidUntil = &t
	}
	if err := e.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (e *engine) ListPromotions(ctx context.Context) ([]*Promotion, error) {
	return e.repo.List(ctx)
}
