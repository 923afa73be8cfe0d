package refund

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dukapos/dukapos-backend/internal/modules/inventory"
	"github.com/dukapos/dukapos-backend/internal/modules/sale"
)

// Sales is the slice of sale persistence the refund engine needs.
type Sales interface {
	GetByID(ctx context.Context, id string) (*sale.Sale, error)
	GetByReceipt(ctx context.Context, receiptNumber string) (*sale.Sale, error)
	MarkRefunded(ctx context.Context, id string, at time.Time) error
}

// Service defines refund business logic.
type Service interface {
	// CreateRefund reverses a completed sale in full. Stock restoration
	// failures are reported as warnings, never as a failed refund.
	CreateRefund(ctx context.Context, req CreateRefundRequest) (*Refund, error)
	// Lookup finds the sale behind a receipt so a cashier can start a
	// refund from the paper slip.
	Lookup(ctx context.Context, receiptNumber string) (*sale.Sale, error)
	GetRefund(ctx context.Context, id string) (*Refund, error)
	GetBySale(ctx context.Context, saleID string) (*Refund, error)
	ListRefunds(ctx context.Context) ([]*Refund, error)
}

type service struct {
	repo   Repository
	sales  Sales
	stock  inventory.Adjuster
	logger *zap.Logger
}

func NewService(repo Repository, sales Sales, stock inventory.Adjuster, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		sales:  sales,
		stock:  stock,
		logger: logger,
	}
}

func (s *service) CreateRefund(ctx context.Context, req CreateRefundRequest) (*Refund, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrMissingReason
	}

	sl, err := s.sales.GetByID(ctx, req.SaleID)
	if err != nil {
		return nil, err
	}

	// Claiming the sale first makes the double-refund check atomic:
	// only one caller wins the guarded status flip.
	now := time.Now()
	if err := s.sales.MarkRefunded(ctx, sl.ID.String(), now); err != nil {
		return nil, err
	}

	ref := &Refund{
		ID:            uuid.New(),
		SaleID:        sl.ID,
		ReceiptNumber: sl.ReceiptNumber,
		Reason:        strings.TrimSpace(req.Reason),
		Items:         sl.Items,
		Amount:        sl.Total,
		CreatedAt:     now,
	}

	// Stock goes back line by line. A line that cannot be restored (for
	// example a product deleted since the sale) downgrades to a warning.
	for _, item := range sl.Items {
		err := s.stock.AdjustStock(ctx, item.ProductID, item.Quantity, "REFUND", ref.ID.String())
		if err != nil {
			warning := fmt.Sprintf("stock not restored for %s (x%d): %v", item.Name, item.Quantity, err)
			ref.Warnings = append(ref.Warnings, warning)
			s.logger.Warn("refund stock restoration failed",
				zap.String("refund_id", ref.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}

	if err := s.repo.Create(ctx, ref); err != nil {
		// The sale is already REFUNDED at this point; without a refund
		// record the books need a manual entry for this sale.
		s.logger.Error("refund record not persisted, sale needs manual reconciliation",
			zap.String("sale_id", sl.ID.String()),
			zap.String("receipt", sl.ReceiptNumber),
			zap.String("amount", ref.Amount.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale refunded",
		zap.String("refund_id", ref.ID.String()),
		zap.String("sale_id", sl.ID.String()),
		zap.String("receipt", sl.ReceiptNumber),
		zap.String("amount", ref.Amount.String()),
		zap.Int("warnings", len(ref.Warnings)))
	return ref, nil
}

func (s *service) Lookup(ctx context.Context, receiptNumber string) (*sale.Sale, error) {
	return s.sales.GetByReceipt(ctx, receiptNumber)
}

func (s *service) GetRefund(ctx context.Context, id string) (*Refund, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid refund id: %w", err)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySale(ctx context.Context, saleID string) (*Refund, error) {
	if _, err := uuid.Parse(saleID); err != nil {
		return nil, fmt.Errorf("invalid sale id: %w", err)
	}
	return s.repo.GetBySale(ctx, saleID)
}

func (s *service) ListRefunds(ctx context.Context) ([]*Refund, error) {
	return s.repo.List(ctx)
}
