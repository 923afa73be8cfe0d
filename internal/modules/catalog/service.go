package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, category string, activeOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, id string, req CreateProductRequest) (*Product, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}
	unitsPerPack := req.UnitsPerPack
	if unitsPerPack < 1 {
		unitsPerPack = 1
	}
	p := &Product{
		ID:           uuid.New(),
		Name:         req.Name,
		SKU:          req.SKU,
		Category:     req.Category,
		Price:        price,
		UnitsPerPack: unitsPerPack,
		UnitLabel:    req.UnitLabel,
		SubUnitLabel: req.SubUnitLabel,
		Stock:        req.Stock,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, category string, activeOnly bool) ([]*Product, error) {
	return s.repo.List(ctx, category, activeOnly)
}

func (s *service) UpdateProduct(ctx context.Context, id string, req CreateProductRequest) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}
	p.Name = req.Name
	p.SKU = req.SKU
	p.Category = req.Category
	p.Price = price
	if req.UnitsPerPack >= 1 {
		p.UnitsPerPack = req.UnitsPerPack
	}
	p.UnitLabel = req.UnitLabel
	p.SubUnitLabel = req.SubUnitLabel
	p.Stock = req.Stock
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
