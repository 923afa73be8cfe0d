package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukapos/dukapos-backend/internal/money"
	"github.com/dukapos/dukapos-backend/internal/modules/catalog"
	"github.com/dukapos/dukapos-backend/internal/modules/promotion"
)

var (
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrLineNotFound        = errors.New("line item not found")
	ErrPromotionNotApplied = errors.New("promotion is not applied to this cart")
)

// LineItem is one priced line of an in-progress sale. Lines are owned by
// the cart that created them; two lines with the same (product, unit
// kind) merge instead of duplicating.
type LineItem struct {
	ID         uuid.UUID        `json:"id"`
	ProductID  uuid.UUID        `json:"product_id"`
	Name       string           `json:"name"`
	UnitKind   catalog.UnitKind `json:"unit_kind"`
	Quantity   int              `json:"quantity"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	TotalPrice decimal.Decimal  `json:"total_price"`
}

func (l *LineItem) recompute() {
	l.TotalPrice = money.Round2(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// Cart is the in-memory staging structure for a sale. Nothing here
// touches stock or the ledger until the finalizer runs.
type Cart struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    *uuid.UUID          `json:"customer_id,omitempty"`
	Lines         []*LineItem         `json:"lines"`
	Applied       []promotion.Applied `json:"applied_promotions"`
	DiscountTotal decimal.Decimal     `json:"discount_total"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func New() *Cart {
	now := time.Now()
	return &Cart{
		ID:            uuid.New(),
		DiscountTotal: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AddLine merges quantity into an existing (product, unit kind) line or
// appends a new one priced from the product at this moment.
func (c *Cart) AddLine(p *catalog.Product, quantity int, kind catalog.UnitKind) (*LineItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	for _, l := range c.Lines {
		if l.ProductID == p.ID && l.UnitKind == kind {
			l.Quantity += quantity
			l.recompute()
			c.touch()
			return l, nil
		}
	}
	l := &LineItem{
		ID:        uuid.New(),
		ProductID: p.ID,
		Name:      p.Name,
		UnitKind:  kind,
		Quantity:  quantity,
		UnitPrice: p.UnitPrice(kind),
	}
	l.recompute()
	c.Lines = append(c.Lines, l)
	c.touch()
	return l, nil
}

// SetQuantity updates a line's quantity; zero or less removes the line.
func (c *Cart) SetQuantity(lineID uuid.UUID, quantity int) error {
	for i, l := range c.Lines {
		if l.ID != lineID {
			continue
		}
		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			l.Quantity = quantity
			l.recompute()
		}
		c.touch()
		return nil
	}
	return ErrLineNotFound
}

// Subtotal is the sum of line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.TotalPrice)
	}
	return money.Round2(sum)
}

// ApplyPromotion records a locked discount.
func (c *Cart) ApplyPromotion(a promotion.Applied) {
	c.Applied = append(c.Applied, a)
	c.DiscountTotal = c.DiscountTotal.Add(a.Discount)
	c.touch()
}

// RemovePromotion subtracts exactly the locked amount — never a
// recomputation against a changed subtotal.
func (c *Cart) RemovePromotion(promotionID uuid.UUID) (*promotion.Applied, error) {
	for i, a := range c.Applied {
		if a.Promotion.ID != promotionID {
			continue
		}
		c.Applied = append(c.Applied[:i], c.Applied[i+1:]...)
		c.DiscountTotal = c.DiscountTotal.Sub(a.Discount)
		if c.DiscountTotal.IsNegative() {
			c.DiscountTotal = decimal.Zero
		}
		c.touch()
		return &a, nil
	}
	return nil, ErrPromotionNotApplied
}

// Clear empties lines and applied promotions, returning the cart to its
// just-created state.
func (c *Cart) Clear() {
	c.Lines = nil
	c.Applied = nil
	c.DiscountTotal = decimal.Zero
	c.touch()
}

// Totals prices the cart through the money kernel.
func (c *Cart) Totals(taxRate decimal.Decimal) money.Totals {
	lineTotals := make([]decimal.Decimal, 0, len(c.Lines))
	for _, l := range c.Lines {
		lineTotals = append(lineTotals, l.TotalPrice)
	}
	return money.ComputeTotals(lineTotals, taxRate, c.DiscountTotal)
}

func (c *Cart) touch() { c.UpdatedAt = time.Now() }
