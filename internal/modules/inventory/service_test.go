package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockRepository implements Repository for testing.
type MockRepository struct {
	Recorded []*Movement
	Err      error
}

func (m *MockRepository) RecordAdjustment(_ context.Context, mv *Movement) error {
	if m.Err != nil {
		return m.Err
	}
	m.Recorded = append(m.Recorded, mv)
	return nil
}

func (m *MockRepository) ListMovements(_ context.Context, _ string) ([]*Movement, error) {
	return m.Recorded, m.Err
}

func TestAdjustStock_NegativeDeltaRecordsOut(t *testing.T) {
	mock := &MockRepository{}
	svc := NewService(mock, zaptest.NewLogger(t))
	productID := uuid.New()

	err := svc.AdjustStock(context.Background(), productID, -3, "sale", "RCT-20260827-0001")

	require.NoError(t, err)
	require.Len(t, mock.Recorded, 1)
	assert.Equal(t, MovementOut, mock.Recorded[0].Type)
	assert.Equal(t, 3, mock.Recorded[0].Quantity)
	assert.Equal(t, productID, mock.Recorded[0].ProductID)
}

func TestAdjustStock_PositiveDeltaRecordsIn(t *testing.T) {
	mock := &MockRepository{}
	svc := NewService(mock, zaptest.NewLogger(t))

	err := svc.AdjustStock(context.Background(), uuid.New(), 2, "refund", "RCT-20260827-0001")

	require.NoError(t, err)
	require.Len(t, mock.Recorded, 1)
	assert.Equal(t, MovementIn, mock.Recorded[0].Type)
	assert.Equal(t, 2, mock.Recorded[0].Quantity)
}

func TestAdjustStock_ZeroDeltaRejected(t *testing.T) {
	mock := &MockRepository{}
	svc := NewService(mock, zaptest.NewLogger(t))

	err := svc.AdjustStock(context.Background(), uuid.New(), 0, "sale", "x")

	assert.ErrorIs(t, err, ErrInvalidDelta)
	assert.Empty(t, mock.Recorded)
}

func TestAdjustStock_PropagatesInsufficientStock(t *testing.T) {
	mock := &MockRepository{Err: ErrInsufficientStock}
	svc := NewService(mock, zaptest.NewLogger(t))

	err := svc.AdjustStock(context.Background(), uuid.New(), -1, "sale", "x")

	assert.ErrorIs(t, err, ErrInsufficientStock)
}
