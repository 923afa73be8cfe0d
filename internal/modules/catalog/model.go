package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukapos/dukapos-backend/internal/money"
)

// UnitKind selects whether a line sells whole packs or loose sub-units.
type UnitKind string

const (
	UnitPack UnitKind = "PACK"
	UnitEach UnitKind = "UNIT"
)

// Product is the catalog's source of truth for pricing at add-to-cart time.
type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku,omitempty"`
	Category     string          `json:"category,omitempty"`
	Price        decimal.Decimal `json:"price"`
	UnitsPerPack int             `json:"units_per_pack"`
	UnitLabel    string          `json:"unit_label,omitempty"`
	SubUnitLabel string          `json:"sub_unit_label,omitempty"`
	Stock        int             `json:"stock"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// UnitPrice resolves the price of one unit for the given kind:
// the pack price itself, or the pack price divided across its sub-units.
func (p *Product) UnitPrice(kind UnitKind) decimal.Decimal {
	if kind == UnitEach && p.UnitsPerPack > 1 {
		return money.Round2(p.Price.Div(decimal.NewFromInt(int64(p.UnitsPerPack))))
	}
	return p.Price
}

// CreateProductRequest holds the data for registering a product.
type CreateProductRequest struct {
	Name         string `json:"name" validate:"required"`
	SKU          string `json:"sku"`
	Category     string `json:"category"`
	Price        string `json:"price" validate:"required"`
	UnitsPerPack int    `json:"units_per_pack" validate:"omitempty,min=1"`
	UnitLabel    string `json:"unit_label"`
	SubUnitLabel string `json:"sub_unit_label"`
	Stock        int    `json:"stock" validate:"min=0"`
}
