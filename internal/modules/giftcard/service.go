package giftcard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines gift card business logic.
type Service interface {
	IssueCard(ctx context.Context, req IssueCardRequest) (*Card, error)
	// Validate checks a card can tender: it exists, is active and is not
	// expired. The returned card carries the redeemable balance.
	Validate(ctx context.Context, number string) (*Card, error)
	// Debit redeems value from a validated card.
	Debit(ctx context.Context, number string, amount decimal.Decimal) error
	// Credit puts value back on a card, reversing an earlier debit.
	Credit(ctx context.Context, number string, amount decimal.Decimal) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) IssueCard(ctx context.Context, req IssueCardRequest) (*Card, error) {
	balance, err := decimal.NewFromString(req.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("balance must not be negative")
	}
	c := &Card{
		ID:       uuid.New(),
		Number:   req.Number,
		Balance:  balance,
		IsActive: true,
	}
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("invalid expires_at: %w", err)
		}
		c.ExpiresAt = &t
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Validate(ctx context.Context, number string) (*Card, error) {
	c, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, ErrCardInactive
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now()) {
		return nil, ErrCardExpired
	}
	return c, nil
}

func (s *service) Debit(ctx context.Context, number string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("debit amount must be positive")
	}
	return s.repo.Deduct(ctx, number, amount)
}

func (s *service) Credit(ctx context.Context, number string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("credit amount must be positive")
	}
	return s.repo.Restore(ctx, number, amount)
}
