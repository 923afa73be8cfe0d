package sale

import (
	"context"
	"time"
)

// Repository persists finalized sales.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id string) (*Sale, error)
	GetByReceipt(ctx context.Context, receiptNumber string) (*Sale, error)
	List(ctx context.Context) ([]*Sale, error)
	// MarkRefunded flips COMPLETED to REFUNDED exactly once.
	MarkRefunded(ctx context.Context, id string, at time.Time) error
}
