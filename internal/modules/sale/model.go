package sale

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukapos/dukapos-backend/internal/modules/catalog"
	"github.com/dukapos/dukapos-backend/internal/modules/payment"
)

// Status is the post-finalization lifecycle of a sale.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusRefunded  Status = "REFUNDED"
)

var (
	ErrSaleNotFound         = errors.New("sale not found")
	ErrEmptyCart            = errors.New("cannot finalize an empty cart")
	ErrPaymentNotCompleted  = errors.New("payment attempt is not completed")
	ErrPaymentCartMismatch  = errors.New("payment attempt belongs to a different cart")
	ErrPaymentTotalMismatch = errors.New("payment total does not match the cart total")
	ErrStockConflict        = errors.New("insufficient stock to finalize sale")
	ErrReceiptCollision     = errors.New("receipt number already exists")
	ErrAlreadyRefunded      = errors.New("sale has already been refunded")
)

// Item is an immutable snapshot of one cart line at finalization time.
// Later catalog edits never change what a receipt says.
type Item struct {
	ProductID  uuid.UUID        `json:"product_id"`
	Name       string           `json:"name"`
	UnitKind   catalog.UnitKind `json:"unit_kind"`
	Quantity   int              `json:"quantity"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	TotalPrice decimal.Decimal  `json:"total_price"`
}

// AppliedPromotion is the receipt-level record of one locked discount.
type AppliedPromotion struct {
	PromotionID uuid.UUID       `json:"promotion_id"`
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
}

// Sale is the durable ledger record a completed checkout produces.
type Sale struct {
	ID            uuid.UUID          `json:"id"`
	ReceiptNumber string             `json:"receipt_number"`
	CartID        uuid.UUID          `json:"cart_id"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	Items         []Item             `json:"items"`
	Promotions    []AppliedPromotion `json:"promotions,omitempty"`
	Tenders       []payment.Tender   `json:"tenders"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	ChangeDue     decimal.Decimal    `json:"change_due"`
	Status        Status             `json:"status"`
	RefundedAt    *time.Time         `json:"refunded_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// FinalizeRequest turns a cart plus its completed payment into a sale.
type FinalizeRequest struct {
	CartID    string `json:"cart_id" validate:"required,uuid"`
	PaymentID string `json:"payment_id" validate:"required,uuid"`
}
