package refund

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukapos/dukapos-backend/internal/modules/sale"
)

var (
	ErrRefundNotFound = errors.New("refund not found")
	ErrMissingReason  = errors.New("a refund reason is required")
)

// Refund reverses a completed sale in full: stock comes back and the
// sale flips to REFUNDED. The tender-side reversal happens outside the
// engine (cash drawer, acquirer portal), so the record carries the
// amount owed back rather than a payout instruction.
type Refund struct {
	ID            uuid.UUID       `json:"id"`
	SaleID        uuid.UUID       `json:"sale_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Reason        string          `json:"reason"`
	Items         []sale.Item     `json:"items"`
	Amount        decimal.Decimal `json:"amount"`
	Warnings      []string        `json:"warnings,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CreateRefundRequest reverses one sale.
type CreateRefundRequest struct {
	SaleID string `json:"sale_id" validate:"required,uuid"`
	Reason string `json:"reason" validate:"required"`
}
