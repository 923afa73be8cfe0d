package giftcard

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCardNotFound        = errors.New("gift card not found")
	ErrCardInactive        = errors.New("gift card is inactive")
	ErrCardExpired         = errors.New("gift card has expired")
	ErrInsufficientBalance = errors.New("insufficient gift card balance")
)

// Card is a stored-value card redeemable as a tender.
type Card struct {
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	Balance   decimal.Decimal `json:"balance"`
	IsActive  bool            `json:"is_active"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// IssueCardRequest holds the data for issuing a card.
type IssueCardRequest struct {
	Number    string `json:"number" validate:"required"`
	Balance   string `json:"balance" validate:"required"`
	ExpiresAt string `json:"expires_at"` // RFC3339
}
