package refund

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dukapos/dukapos-backend/internal/modules/catalog"
	"github.com/dukapos/dukapos-backend/internal/modules/inventory"
	"github.com/dukapos/dukapos-backend/internal/modules/sale"
)

type MockRepository struct {
	refunds   map[string]*Refund
	createErr error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{refunds: make(map[string]*Refund)}
}

func (m *MockRepository) Create(ctx context.Context, r *Refund) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.refunds {
		if existing.SaleID == r.SaleID {
			return sale.ErrAlreadyRefunded
		}
	}
	stored := *r
	m.refunds[r.ID.String()] = &stored
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Refund, error) {
	r, ok := m.refunds[id]
	if !ok {
		return nil, ErrRefundNotFound
	}
	return r, nil
}

func (m *MockRepository) GetBySale(ctx context.Context, saleID string) (*Refund, error) {
	for _, r := range m.refunds {
		if r.SaleID.String() == saleID {
			return r, nil
		}
	}
	return nil, ErrRefundNotFound
}

func (m *MockRepository) List(ctx context.Context) ([]*Refund, error) {
	var out []*Refund
	for _, r := range m.refunds {
		out = append(out, r)
	}
	return out, nil
}

type MockSales struct {
	sales map[string]*sale.Sale
}

func NewMockSales() *MockSales { return &MockSales{sales: make(map[string]*sale.Sale)} }

func (m *MockSales) GetByID(ctx context.Context, id string) (*sale.Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return nil, sale.ErrSaleNotFound
	}
	return s, nil
}

func (m *MockSales) GetByReceipt(ctx context.Context, receiptNumber string) (*sale.Sale, error) {
	for _, s := range m.sales {
		if s.ReceiptNumber == receiptNumber {
			return s, nil
		}
	}
	return nil, sale.ErrSaleNotFound
}

func (m *MockSales) MarkRefunded(ctx context.Context, id string, at time.Time) error {
	s, ok := m.sales[id]
	if !ok {
		return sale.ErrSaleNotFound
	}
	if s.Status != sale.StatusCompleted {
		return sale.ErrAlreadyRefunded
	}
	s.Status = sale.StatusRefunded
	s.RefundedAt = &at
	return nil
}

type MockAdjuster struct {
	failProduct uuid.UUID
	failErr     error
	adjustments []adjustment
}

type adjustment struct {
	productID uuid.UUID
	delta     int
	reason    string
}

func (m *MockAdjuster) AdjustStock(ctx context.Context, productID uuid.UUID, delta int, reason, reference string) error {
	if m.failErr != nil && productID == m.failProduct {
		return m.failErr
	}
	m.adjustments = append(m.adjustments, adjustment{productID: productID, delta: delta, reason: reason})
	return nil
}

type fixture struct {
	svc   Service
	repo  *MockRepository
	sales *MockSales
	stock *MockAdjuster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:  NewMockRepository(),
		sales: NewMockSales(),
		stock: &MockAdjuster{},
	}
	f.svc = NewService(f.repo, f.sales, f.stock, zaptest.NewLogger(t))
	return f
}

func (f *fixture) completedSale() *sale.Sale {
	s := &sale.Sale{
		ID:            uuid.New(),
		ReceiptNumber: "RCT-20260827-0042",
		CartID:        uuid.New(),
		Items: []sale.Item{
			{
				ProductID:  uuid.New(),
				Name:       "Mealie Meal 25kg",
				UnitKind:   catalog.UnitPack,
				Quantity:   2,
				UnitPrice:  decimal.RequireFromString("300"),
				TotalPrice: decimal.RequireFromString("600"),
			},
			{
				ProductID:  uuid.New(),
				Name:       "Cooking Oil 2L",
				UnitKind:   catalog.UnitPack,
				Quantity:   4,
				UnitPrice:  decimal.RequireFromString("100"),
				TotalPrice: decimal.RequireFromString("400"),
			},
		},
		Subtotal:  decimal.RequireFromString("1000"),
		Tax:       decimal.RequireFromString("170"),
		Discount:  decimal.Zero,
		Total:     decimal.RequireFromString("1170"),
		Status:    sale.StatusCompleted,
		CreatedAt: time.Now(),
	}
	f.sales.sales[s.ID.String()] = s
	return s
}

func TestCreateRefund(t *testing.T) {
	f := newFixture(t)
	s := f.completedSale()

	ref, err := f.svc.CreateRefund(context.Background(), CreateRefundRequest{
		SaleID: s.ID.String(),
		Reason: "customer returned goods",
	})
	require.NoError(t, err)

	assert.Equal(t, s.ID, ref.SaleID)
	assert.Equal(t, s.ReceiptNumber, ref.ReceiptNumber)
	assert.True(t, ref.Amount.Equal(decimal.RequireFromString("1170")))
	assert.Empty(t, ref.Warnings)

	// The sale flipped to REFUNDED.
	assert.Equal(t, sale.StatusRefunded, s.Status)
	require.NotNil(t, s.RefundedAt)

	// Stock came back once per item.
	require.Len(t, f.stock.adjustments, 2)
	assert.Equal(t, 2, f.stock.adjustments[0].delta)
	assert.Equal(t, 4, f.stock.adjustments[1].delta)
	assert.Equal(t, "REFUND", f.stock.adjustments[0].reason)
}

func TestCreateRefundTwiceRejected(t *testing.T) {
	f := newFixture(t)
	s := f.completedSale()

	_, err := f.svc.CreateRefund(context.Background(), CreateRefundRequest{
		SaleID: s.ID.String(),
		Reason: "customer returned goods",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateRefund(context.Background(), CreateRefundRequest{
		SaleID: s.ID.String(),
		Reason: "duplicate request",
	})
	assert.ErrorIs(t, err, sale.ErrAlreadyRefunded)

	// Stock was restored exactly once.
	assert.Len(t, f.stock.adjustments, 2)
}

func TestCreateRefundMissingReason(t *testing.T) {
	f := newFixture(t)
	s := f.completedSale()

	_, err := f.svc.CreateRefund(context.Background(), CreateRefundRequest{
		SaleID: s.ID.String(),
		Reason: "   ",
	})
	assert.ErrorIs(t, err, ErrMissingReason)
	assert.Equal(t, sale.StatusCompleted, s.Status)
	assert.Empty(t, f.stock.adjustments)
}

func TestCreateRefundUnknownSale(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateRefund(context.Background(), CreateRefundRequest{
		SaleID: uuid.NewString(),
		Reason: "wrong item",
	})
	assert.ErrorIs(t, err, sale.ErrSaleNotFound)
}

func TestCreateRefundStockFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	s := f.completedSale()

	// The second item's product no longer exists.
	f.stock.failProduct = s.Items[1].ProductID
	f.stock.failErr = inventory.ErrInsufficientStock

	ref, err := f.svc.CreateRefund(context.Background(), CreateRefundRequest{
		SaleID: s.ID.String(),
		Reason: "customer returned goods",
	})
	require.NoError(t, err)

	// The refund still went through, with the failure surfaced.
	assert.Equal(t, sale.StatusRefunded, s.Status)
	require.Len(t, ref.Warnings, 1)
	assert.Contains(t, ref.Warnings[0], "Cooking Oil 2L")

	// The first item was still restored.
	require.Len(t, f.stock.adjustments, 1)
	assert.Equal(t, s.Items[0].ProductID, f.stock.adjustments[0].productID)
}

func TestGetBySale(t *testing.T) {
	f := newFixture(t)
	s := f.completedSale()

	ref, err := f.svc.CreateRefund(context.Background(), CreateRefundRequest{
		SaleID: s.ID.String(),
		Reason: "customer returned goods",
	})
	require.NoError(t, err)

	got, err := f.svc.GetBySale(context.Background(), s.ID.String())
	require.NoError(t, err)
	assert.Equal(t, ref.ID, got.ID)
}

func TestCreateRefundPersistFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	s := f.completedSale()
	f.repo.createErr = context.DeadlineExceeded

	_, err := f.svc.CreateRefund(context.Background(), CreateRefundRequest{
		SaleID: s.ID.String(),
		Reason: "customer returned goods",
	})
	require.Error(t, err)

	// The sale stays claimed; the missing record is an operator problem,
	// not something a blind retry can repair.
	assert.Equal(t, sale.StatusRefunded, s.Status)
	assert.Empty(t, f.repo.refunds)
}

func TestLookupByReceipt(t *testing.T) {
	f := newFixture(t)
	s := f.completedSale()

	got, err := f.svc.Lookup(context.Background(), s.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = f.svc.Lookup(context.Background(), "RCT-19990101-0000")
	assert.ErrorIs(t, err, sale.ErrSaleNotFound)
}

func TestGetRefundInvalidID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetRefund(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}
