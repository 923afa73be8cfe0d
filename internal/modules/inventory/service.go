package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Adjuster is the contract the sale finalizer and refund engine consume:
// negative delta decrements stock (sale), positive delta restores it (refund).
type Adjuster interface {
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int, reason, reference string) error
}

// Service defines inventory business logic.
type Service interface {
	Adjuster
	ListMovements(ctx context.Context, productID string) ([]*Movement, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) AdjustStock(ctx context.Context, productID uuid.UUID, delta int, reason, reference string) error {
	if delta == 0 {
		return ErrInvalidDelta
	}

	m := &Movement{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  delta,
		Reason:    reason,
		Reference: reference,
	}
	if delta < 0 {
		m.Type = MovementOut
		m.Quantity = -delta
	} else {
		m.Type = MovementIn
	}

	if err := s.repo.RecordAdjustment(ctx, m); err != nil {
		s.logger.Warn("stock adjustment failed",
			zap.String("product_id", productID.String()),
			zap.Int("delta", delta),
			zap.String("reference", reference),
			zap.Error(err))
		return err
	}

	s.logger.Info("stock adjusted",
		zap.String("product_id", productID.String()),
		zap.Int("delta", delta),
		zap.String("reason", reason),
		zap.String("reference", reference))
	return nil
}

func (s *service) ListMovements(ctx context.Context, productID string) ([]*Movement, error) {
	return s.repo.ListMovements(ctx, productID)
}
