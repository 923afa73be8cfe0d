package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method represents how a tender was paid.
type Method string

const (
	MethodCash     Method = "CASH"
	MethodCard     Method = "CARD"
	MethodMobile   Method = "MOBILE"
	MethodGiftCard Method = "GIFT_CARD"
)

// Status represents the lifecycle of one checkout attempt.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
)

var (
	ErrPaymentNotFound     = errors.New("payment attempt not found")
	ErrInsufficientCash    = errors.New("cash tendered is below the sale total")
	ErrOvertender          = errors.New("tendered amount exceeds the remaining total")
	ErrInvalidTenderAmount = errors.New("tender amount must be positive")
	ErrNotPending          = errors.New("payment attempt is not open for tenders")
	ErrSplitInProgress     = errors.New("attempt already holds split tenders")
	ErrAlreadyCompleted    = errors.New("payment attempt already completed")
	ErrInvalidMethod       = errors.New("unsupported payment method")
)

// Tender is one discrete payment contribution toward a sale total.
type Tender struct {
	ID        uuid.UUID       `json:"id"`
	Method    Method          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// Payment is one checkout attempt against a cart. Attempts never reach
// the ledger: cancellation pre-COMPLETED simply discards them.
type Payment struct {
	ID             uuid.UUID       `json:"id"`
	CartID         uuid.UUID       `json:"cart_id"`
	Total          decimal.Decimal `json:"total"`
	Status         Status          `json:"status"`
	Tenders        []Tender        `json:"tenders"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	ChangeDue      decimal.Decimal `json:"change_due"`
	ProviderRef    string          `json:"provider_ref,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Remaining is the amount still uncovered by tenders.
func (p *Payment) Remaining() decimal.Decimal {
	return p.Total.Sub(p.AmountTendered)
}

func (p *Payment) recompute() {
	sum := decimal.Zero
	for _, t := range p.Tenders {
		sum = sum.Add(t.Amount)
	}
	p.AmountTendered = sum
	p.UpdatedAt = time.Now()
}

// ── Request DTOs ──────────────────────────────────────────────────────────────

// BeginRequest opens a payment attempt for a cart.
type BeginRequest struct {
	CartID string `json:"cart_id" validate:"required,uuid"`
	Total  string `json:"total" validate:"required"`
}

// CashRequest settles an attempt with a single cash tender.
type CashRequest struct {
	AmountTendered string `json:"amount_tendered" validate:"required"`
}

// AuthorizeRequest starts a single-tender card or mobile payment that
// resolves asynchronously via the confirmation webhook.
type AuthorizeRequest struct {
	Method      string `json:"method" validate:"required,oneof=CARD MOBILE"`
	Reference   string `json:"reference"`
	PhoneNumber string `json:"phone_number"`
}

// TenderRequest appends one tender to a split payment.
type TenderRequest struct {
	Method         string `json:"method" validate:"required,oneof=CASH CARD MOBILE GIFT_CARD"`
	Amount         string `json:"amount" validate:"required"`
	Reference      string `json:"reference"`
	GiftCardNumber string `json:"gift_card_number"`
}

// ConfirmationRequest is the inbound provider webhook payload.
type ConfirmationRequest struct {
	ProviderRef string `json:"provider_ref" validate:"required"`
	Status      string `json:"status" validate:"required"`
	Message     string `json:"message"`
}
