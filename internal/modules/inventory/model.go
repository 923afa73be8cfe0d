package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock for adjustment")
	ErrInvalidDelta      = errors.New("stock delta must not be zero")
)

// Movement is one entry in the stock ledger. Every sale decrement and
// refund restoration leaves a movement, which doubles as the
// reconciliation trail for failed restorations.
type Movement struct {
	ID        uuid.UUID    `json:"id"`
	ProductID uuid.UUID    `json:"product_id"`
	Type      MovementType `json:"type"`
	Quantity  int          `json:"quantity"`
	Reason    string       `json:"reason,omitempty"`
	Reference string       `json:"reference,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
