package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dukapos/dukapos-backend/internal/money"
	"github.com/dukapos/dukapos-backend/internal/modules/catalog"
	"github.com/dukapos/dukapos-backend/internal/modules/promotion"
)

// ProductSource is the slice of the catalog the cart needs: pricing at
// add-to-cart time.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// Service defines cart business logic.
type Service interface {
	CreateCart(ctx context.Context) *Cart
	GetCart(id string) (*Cart, error)
	AddItem(ctx context.Context, cartID string, req AddItemRequest) (*Cart, error)
	SetQuantity(ctx context.Context, cartID, lineID string, quantity int) (*Cart, error)
	AttachCustomer(ctx context.Context, cartID, customerID string) (*Cart, error)
	ApplyPromotion(ctx context.Context, cartID, code string) (*Cart, error)
	RemovePromotion(ctx context.Context, cartID, promotionID string) (*Cart, error)
	ClearCart(cartID string) error
	Totals(c *Cart) money.Totals
}

// AddItemRequest is the payload for adding a product to a cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"`
	UnitKind  string `json:"unit_kind" validate:"omitempty,oneof=PACK UNIT"`
}

type service struct {
	store    *Store
	products ProductSource
	promos   promotion.Engine
	taxRate  decimal.Decimal
	logger   *zap.Logger
}

func NewService(store *Store, products ProductSource, promos promotion.Engine, taxRate decimal.Decimal, logger *zap.Logger) Service {
	return &service{
		store:    store,
		products: products,
		promos:   promos,
		taxRate:  taxRate,
		logger:   logger,
	}
}

func (s *service) CreateCart(ctx context.Context) *Cart {
	c := New()
	s.store.Put(c)
	return c
}

func (s *service) GetCart(id string) (*Cart, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid cart id: %w", err)
	}
	return s.store.Get(cid)
}

func (s *service) AddItem(ctx context.Context, cartID string, req AddItemRequest) (*Cart, error) {
	c, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}

	p, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	if !p.IsActive {
		return nil, fmt.Errorf("product %s is not active", p.ID)
	}

	kind := catalog.UnitKind(req.UnitKind)
	if kind == "" {
		kind = catalog.UnitPack
	}
	if _, err := c.AddLine(p, req.Quantity, kind); err != nil {
		return nil, err
	}
	s.store.Put(c)
	return c, nil
}

func (s *service) SetQuantity(ctx context.Context, cartID, lineID string, quantity int) (*Cart, error) {
	c, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}
	lid, err := uuid.Parse(lineID)
	if err != nil {
		return nil, fmt.Errorf("invalid line id: %w", err)
	}
	if err := c.SetQuantity(lid, quantity); err != nil {
		return nil, err
	}
	s.store.Put(c)
	return c, nil
}

func (s *service) AttachCustomer(ctx context.Context, cartID, customerID string) (*Cart, error) {
	c, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}
	// Weak reference: the engine never owns customer lifecycle.
	cid, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	c.CustomerID = &cid
	s.store.Put(c)
	return c, nil
}

func (s *service) ApplyPromotion(ctx context.Context, cartID, code string) (*Cart, error) {
	c, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}

	a, err := s.promos.Apply(ctx, code, c.Subtotal(), c.DiscountTotal, c.Applied, time.Now())
	if err != nil {
		return nil, err
	}
	c.ApplyPromotion(*a)
	s.store.Put(c)

	s.logger.Info("promotion applied",
		zap.String("cart_id", c.ID.String()),
		zap.String("code", a.Promotion.Code),
		zap.String("discount", a.Discount.String()))
	return c, nil
}

func (s *service) RemovePromotion(ctx context.Context, cartID, promotionID string) (*Cart, error) {
	c, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}
	pid, err := uuid.Parse(promotionID)
	if err != nil {
		return nil, fmt.Errorf("invalid promotion id: %w", err)
	}
	removed, err := c.RemovePromotion(pid)
	if err != nil {
		return nil, err
	}
	s.store.Put(c)

	s.logger.Info("promotion removed",
		zap.String("cart_id", c.ID.String()),
		zap.String("code", removed.Promotion.Code),
		zap.String("restored", removed.Discount.String()))
	return c, nil
}

func (s *service) ClearCart(cartID string) error {
	c, err := s.GetCart(cartID)
	if err != nil {
		return err
	}
	c.Clear()
	s.store.Put(c)
	return nil
}

func (s *service) Totals(c *Cart) money.Totals {
	return c.Totals(s.taxRate)
}
