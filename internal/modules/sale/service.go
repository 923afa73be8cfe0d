package sale

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dukapos/dukapos-backend/internal/money"
	"github.com/dukapos/dukapos-backend/internal/modules/cart"
	"github.com/dukapos/dukapos-backend/internal/modules/inventory"
	"github.com/dukapos/dukapos-backend/internal/modules/payment"
)

// Carts is the slice of the cart service the finalizer needs.
type Carts interface {
	GetCart(id string) (*cart.Cart, error)
	Totals(c *cart.Cart) money.Totals
	ClearCart(cartID string) error
}

// Payments is the slice of the payment service the finalizer needs.
type Payments interface {
	Get(id string) (*payment.Payment, error)
	Discard(id string)
}

// Loyalty accrues points for identified customers. Accrual failures
// never fail a sale.
type Loyalty interface {
	AccrueLoyalty(ctx context.Context, id string, points int) error
}

// Service defines sale finalization and lookup.
type Service interface {
	// Finalize atomically turns a cart with a completed payment into a
	// durable sale: stock is decremented, a receipt number is minted and
	// the cart and payment attempt are discarded.
	Finalize(ctx context.Context, req FinalizeRequest) (*Sale, error)
	GetSale(ctx context.Context, id string) (*Sale, error)
	GetByReceipt(ctx context.Context, receiptNumber string) (*Sale, error)
	ListSales(ctx context.Context) ([]*Sale, error)
}

const (
	receiptAttempts = 5
	loyaltyDivisor  = 10
)

type service struct {
	repo     Repository
	carts    Carts
	payments Payments
	stock    inventory.Adjuster
	loyalty  Loyalty
	logger   *zap.Logger
}

func NewService(repo Repository, carts Carts, payments Payments, stock inventory.Adjuster, loyalty Loyalty, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		carts:    carts,
		payments: payments,
		stock:    stock,
		loyalty:  loyalty,
		logger:   logger,
	}
}

func (s *service) Finalize(ctx context.Context, req FinalizeRequest) (*Sale, error) {
	c, err := s.carts.GetCart(req.CartID)
	if err != nil {
		return nil, err
	}
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	p, err := s.payments.Get(req.PaymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != payment.StatusCompleted {
		return nil, ErrPaymentNotCompleted
	}
	if p.CartID != c.ID {
		return nil, ErrPaymentCartMismatch
	}

	// The attempt must have been settled for what the cart costs now; a
	// cart edited after Begin leaves a stale payment total behind.
	totals := s.carts.Totals(c)
	if p.Total.Sub(totals.Total).Abs().GreaterThanOrEqual(money.Epsilon) {
		return nil, fmt.Errorf("%w: paid %s, cart totals %s",
			ErrPaymentTotalMismatch, p.Total, totals.Total)
	}

	sale := s.snapshot(c, p, totals)

	// Stock leaves the shelf line by line; any failure rolls back the
	// lines already taken and leaves the cart untouched.
	if err := s.decrementStock(ctx, sale); err != nil {
		return nil, err
	}

	if err := s.persistWithReceipt(ctx, sale); err != nil {
		s.restoreStock(ctx, sale, len(sale.Items))
		return nil, err
	}

	s.accrueLoyalty(ctx, sale)

	if err := s.carts.ClearCart(req.CartID); err != nil {
		s.logger.Warn("cart cleanup failed after finalize",
			zap.String("cart_id", req.CartID), zap.Error(err))
	}
	s.payments.Discard(req.PaymentID)

	s.logger.Info("sale finalized",
		zap.String("sale_id", sale.ID.String()),
		zap.String("receipt", sale.ReceiptNumber),
		zap.String("total", sale.Total.String()),
		zap.Int("items", len(sale.Items)))
	return sale, nil
}

func (s *service) GetSale(ctx context.Context, id string) (*Sale, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid sale id: %w", err)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByReceipt(ctx context.Context, receiptNumber string) (*Sale, error) {
	return s.repo.GetByReceipt(ctx, receiptNumber)
}

func (s *service) ListSales(ctx context.Context) ([]*Sale, error) {
	return s.repo.List(ctx)
}

// snapshot freezes the cart and payment into an immutable sale record.
func (s *service) snapshot(c *cart.Cart, p *payment.Payment, totals money.Totals) *Sale {
	sale := &Sale{
		ID:         uuid.New(),
		CartID:     c.ID,
		CustomerID: c.CustomerID,
		Tenders:    p.Tenders,
		Subtotal:   totals.Subtotal,
		Tax:        totals.Tax,
		Discount:   totals.Discount,
		Total:      totals.Total,
		ChangeDue:  p.ChangeDue,
		Status:     StatusCompleted,
		CreatedAt:  time.Now(),
	}
	for _, l := range c.Lines {
		sale.Items = append(sale.Items, Item{
			ProductID:  l.ProductID,
			Name:       l.Name,
			UnitKind:   l.UnitKind,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.TotalPrice,
		})
	}
	for _, a := range c.Applied {
		sale.Promotions = append(sale.Promotions, AppliedPromotion{
			PromotionID: a.Promotion.ID,
			Code:        a.Promotion.Code,
			Discount:    a.Discount,
		})
	}
	return sale
}

func (s *service) decrementStock(ctx context.Context, sale *Sale) error {
	for i, item := range sale.Items {
		err := s.stock.AdjustStock(ctx, item.ProductID, -item.Quantity, "SALE", sale.ID.String())
		if err == nil {
			continue
		}
		s.restoreStock(ctx, sale, i)
		if errors.Is(err, inventory.ErrInsufficientStock) {
			return fmt.Errorf("%w: %s", ErrStockConflict, item.Name)
		}
		return err
	}
	return nil
}

// restoreStock compensates the first n decremented items.
func (s *service) restoreStock(ctx context.Context, sale *Sale, n int) {
	for _, item := range sale.Items[:n] {
		err := s.stock.AdjustStock(ctx, item.ProductID, item.Quantity, "SALE_REVERSAL", sale.ID.String())
		if err != nil {
			s.logger.Error("stock compensation failed",
				zap.String("sale_id", sale.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

// persistWithReceipt mints a receipt number and retries on the rare
// collision against the unique index.
func (s *service) persistWithReceipt(ctx context.Context, sale *Sale) error {
	for attempt := 0; attempt < receiptAttempts; attempt++ {
		sale.ReceiptNumber = newReceiptNumber(sale.CreatedAt)
		err := s.repo.Create(ctx, sale)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrReceiptCollision) {
			return err
		}
	}
	return ErrReceiptCollision
}

func (s *service) accrueLoyalty(ctx context.Context, sale *Sale) {
	if s.loyalty == nil || sale.CustomerID == nil {
		return
	}
	points := int(sale.Total.Div(decimal.NewFromInt(loyaltyDivisor)).IntPart())
	if points <= 0 {
		return
	}
	if err := s.loyalty.AccrueLoyalty(ctx, sale.CustomerID.String(), points); err != nil {
		s.logger.Warn("loyalty accrual failed",
			zap.String("sale_id", sale.ID.String()),
			zap.String("customer_id", sale.CustomerID.String()),
			zap.Int("points", points),
			zap.Error(err))
	}
}

func newReceiptNumber(at time.Time) string {
	return fmt.Sprintf("RCT-%s-%04d", at.Format("20060102"), rand.Intn(10000))
}
