package payment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dukapos/dukapos-backend/internal/modules/giftcard"
)

type MockGiftCards struct {
	cards     map[string]*giftcard.Card
	debits    map[string]decimal.Decimal
	credits   map[string]decimal.Decimal
	failDebit string // card number whose Debit always fails
}

func NewMockGiftCards() *MockGiftCards {
	return &MockGiftCards{
		cards:   make(map[string]*giftcard.Card),
		debits:  make(map[string]decimal.Decimal),
		credits: make(map[string]decimal.Decimal),
	}
}

func (m *MockGiftCards) Validate(ctx context.Context, number string) (*giftcard.Card, error) {
	card, ok := m.cards[number]
	if !ok {
		return nil, giftcard.ErrCardNotFound
	}
	if !card.IsActive {
		return nil, giftcard.ErrCardInactive
	}
	return card, nil
}

func (m *MockGiftCards) Debit(ctx context.Context, number string, amount decimal.Decimal) error {
	if number == m.failDebit {
		return giftcard.ErrInsufficientBalance
	}
	card, ok := m.cards[number]
	if !ok {
		return giftcard.ErrCardNotFound
	}
	if amount.GreaterThan(card.Balance) {
		return giftcard.ErrInsufficientBalance
	}
	card.Balance = card.Balance.Sub(amount)
	m.debits[number] = m.debits[number].Add(amount)
	return nil
}

func (m *MockGiftCards) Credit(ctx context.Context, number string, amount decimal.Decimal) error {
	card, ok := m.cards[number]
	if !ok {
		return giftcard.ErrCardNotFound
	}
	card.Balance = card.Balance.Add(amount)
	m.credits[number] = m.credits[number].Add(amount)
	return nil
}

type MockGateway struct {
	ref string
	err error
}

func (m *MockGateway) Authorize(ctx context.Context, req *AuthorizationRequest) (*AuthorizationResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &AuthorizationResult{ProviderRef: m.ref, ProviderStatus: "PENDING"}, nil
}

func newTestService(t *testing.T, cards *MockGiftCards) (Service, *Store) {
	t.Helper()
	store := NewStore()
	gateways := GatewayRegistry{
		MethodCard:   &MockGateway{ref: "CRD-TEST-0001"},
		MethodMobile: &MockGateway{ref: "MOB-TEST-0001"},
	}
	svc := NewService(store, gateways, cards, zaptest.NewLogger(t))
	return svc, store
}

func beginAttempt(t *testing.T, svc Service, total string) *Payment {
	t.Helper()
	p, err := svc.Begin(context.Background(), BeginRequest{
		CartID: uuid.NewString(),
		Total:  total,
	})
	require.NoError(t, err)
	return p
}

func TestBegin(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())

	p := beginAttempt(t, svc, "1170.00")

	assert.Equal(t, StatusPending, p.Status)
	assert.True(t, p.Total.Equal(decimal.RequireFromString("1170")))
	assert.True(t, p.Remaining().Equal(p.Total))
	assert.Empty(t, p.Tenders)
}

func TestBeginSupersedesOpenAttempt(t *testing.T) {
	svc, store := newTestService(t, NewMockGiftCards())
	cartID := uuid.NewString()

	first, err := svc.Begin(context.Background(), BeginRequest{CartID: cartID, Total: "500.00"})
	require.NoError(t, err)

	second, err := svc.Begin(context.Background(), BeginRequest{CartID: cartID, Total: "500.00"})
	require.NoError(t, err)

	_, err = store.Get(first.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	_, err = store.Get(second.ID)
	assert.NoError(t, err)
}

func TestBeginRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())

	_, err := svc.Begin(context.Background(), BeginRequest{CartID: "not-a-uuid", Total: "100"})
	assert.Error(t, err)

	_, err = svc.Begin(context.Background(), BeginRequest{CartID: uuid.NewString(), Total: "-5"})
	assert.Error(t, err)
}

func TestProcessCashWithChange(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "1170.00")

	p, err := svc.ProcessCash(context.Background(), p.ID.String(), decimal.RequireFromString("1200"))
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, p.Status)
	assert.True(t, p.ChangeDue.Equal(decimal.RequireFromString("30")), "change was %s", p.ChangeDue)
	assert.Len(t, p.Tenders, 1)
	assert.Equal(t, MethodCash, p.Tenders[0].Method)
}

func TestProcessCashInsufficient(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "1170.00")

	_, err := svc.ProcessCash(context.Background(), p.ID.String(), decimal.RequireFromString("1000"))
	assert.ErrorIs(t, err, ErrInsufficientCash)

	// The attempt stays open for another try.
	p, err = svc.Get(p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Empty(t, p.Tenders)
}

func TestSplitTenderCompletes(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "1170.00")

	p, err := svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method: "CASH",
		Amount: "600.00",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.True(t, p.Remaining().Equal(decimal.RequireFromString("570")), "remaining was %s", p.Remaining())

	p, err = svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method:    "CARD",
		Amount:    "570.00",
		Reference: "AUTH-123",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)
	assert.True(t, p.Remaining().IsZero(), "remaining was %s", p.Remaining())
	assert.Len(t, p.Tenders, 2)
}

func TestSplitTenderOvertenderRejected(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "1170.00")

	_, err := svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method: "CASH",
		Amount: "600.00",
	})
	require.NoError(t, err)

	_, err = svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method: "CARD",
		Amount: "600.00",
	})
	assert.ErrorIs(t, err, ErrOvertender)

	p, err = svc.Get(p.ID.String())
	require.NoError(t, err)
	assert.Len(t, p.Tenders, 1)
	assert.Equal(t, StatusPending, p.Status)
}

func TestSplitTenderRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "100.00")

	_, err := svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method: "CASH",
		Amount: "0",
	})
	assert.ErrorIs(t, err, ErrInvalidTenderAmount)

	_, err = svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method: "CASH",
		Amount: "-10",
	})
	assert.ErrorIs(t, err, ErrInvalidTenderAmount)
}

func TestGiftCardTenderDebitsAtSettlement(t *testing.T) {
	cards := NewMockGiftCards()
	cards.cards["GC-100"] = &giftcard.Card{
		Number:   "GC-100",
		Balance:  decimal.RequireFromString("500"),
		IsActive: true,
	}
	svc, _ := newTestService(t, cards)
	p := beginAttempt(t, svc, "300.00")

	p, err := svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method:         "GIFT_CARD",
		Amount:         "300.00",
		GiftCardNumber: "GC-100",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, p.Status)
	assert.True(t, cards.debits["GC-100"].Equal(decimal.RequireFromString("300")))
	assert.True(t, cards.cards["GC-100"].Balance.Equal(decimal.RequireFromString("200")))
}

func TestGiftCardTenderInsufficientBalance(t *testing.T) {
	cards := NewMockGiftCards()
	cards.cards["GC-LOW"] = &giftcard.Card{
		Number:   "GC-LOW",
		Balance:  decimal.RequireFromString("50"),
		IsActive: true,
	}
	svc, _ := newTestService(t, cards)
	p := beginAttempt(t, svc, "300.00")

	_, err := svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method:         "GIFT_CARD",
		Amount:         "100.00",
		GiftCardNumber: "GC-LOW",
	})
	assert.ErrorIs(t, err, giftcard.ErrInsufficientBalance)
	assert.True(t, cards.debits["GC-LOW"].IsZero())
}

func TestGiftCardTenderUnknownCard(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "300.00")

	_, err := svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method:         "GIFT_CARD",
		Amount:         "100.00",
		GiftCardNumber: "GC-MISSING",
	})
	assert.ErrorIs(t, err, giftcard.ErrCardNotFound)
}

func TestSplitGiftCardCaptureFailureCompensates(t *testing.T) {
	cards := NewMockGiftCards()
	cards.cards["GC-A"] = &giftcard.Card{
		Number:   "GC-A",
		Balance:  decimal.RequireFromString("500"),
		IsActive: true,
	}
	cards.cards["GC-B"] = &giftcard.Card{
		Number:   "GC-B",
		Balance:  decimal.RequireFromString("500"),
		IsActive: true,
	}
	svc, _ := newTestService(t, cards)
	p := beginAttempt(t, svc, "1000.00")

	_, err := svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method:         "GIFT_CARD",
		Amount:         "500.00",
		GiftCardNumber: "GC-A",
	})
	require.NoError(t, err)

	// The second card passes validation but its capture fails at
	// settlement (balance spent elsewhere in the meantime).
	cards.failDebit = "GC-B"
	_, err = svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method:         "GIFT_CARD",
		Amount:         "500.00",
		GiftCardNumber: "GC-B",
	})
	require.Error(t, err)

	// The first card's debit was credited back and the failed tender is
	// gone; the attempt stands as it did before the settling tender.
	p, err = svc.Get(p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	require.Len(t, p.Tenders, 1)
	assert.Equal(t, "GC-A", p.Tenders[0].Reference)
	assert.True(t, p.AmountTendered.Equal(decimal.RequireFromString("500")))
	assert.True(t, cards.cards["GC-A"].Balance.Equal(decimal.RequireFromString("500")))
	assert.True(t, cards.credits["GC-A"].Equal(decimal.RequireFromString("500")))

	// A retry with a good card settles without double-debiting GC-A.
	cards.failDebit = ""
	p, err = svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method:         "GIFT_CARD",
		Amount:         "500.00",
		GiftCardNumber: "GC-B",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)
	assert.True(t, cards.cards["GC-A"].Balance.IsZero())
	assert.True(t, cards.cards["GC-B"].Balance.IsZero())
}

func TestProcessCashRejectedMidSplit(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "1170.00")

	_, err := svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method: "CASH",
		Amount: "600.00",
	})
	require.NoError(t, err)

	_, err = svc.ProcessCash(context.Background(), p.ID.String(), decimal.RequireFromString("1170"))
	assert.ErrorIs(t, err, ErrSplitInProgress)

	// The partial tender survives on the record.
	p, err = svc.Get(p.ID.String())
	require.NoError(t, err)
	require.Len(t, p.Tenders, 1)
	assert.True(t, p.AmountTendered.Equal(decimal.RequireFromString("600")))
	assert.Equal(t, StatusPending, p.Status)
}

func TestCancelDiscardsTenders(t *testing.T) {
	cards := NewMockGiftCards()
	cards.cards["GC-100"] = &giftcard.Card{
		Number:   "GC-100",
		Balance:  decimal.RequireFromString("500"),
		IsActive: true,
	}
	svc, _ := newTestService(t, cards)
	p := beginAttempt(t, svc, "1000.00")

	_, err := svc.AddTender(context.Background(), p.ID.String(), TenderRequest{
		Method:         "GIFT_CARD",
		Amount:         "200.00",
		GiftCardNumber: "GC-100",
	})
	require.NoError(t, err)

	p, err = svc.Cancel(context.Background(), p.ID.String())
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, p.Status)
	assert.Empty(t, p.Tenders)
	// The card was never captured.
	assert.True(t, cards.debits["GC-100"].IsZero())
	assert.True(t, cards.cards["GC-100"].Balance.Equal(decimal.RequireFromString("500")))
}

func TestCancelCompletedRejected(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "100.00")

	_, err := svc.ProcessCash(context.Background(), p.ID.String(), decimal.RequireFromString("100"))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), p.ID.String())
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestAuthorizeThenApprove(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "1170.00")

	p, err := svc.Authorize(context.Background(), p.ID.String(), AuthorizeRequest{Method: "CARD"})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, p.Status)
	assert.Equal(t, "CRD-TEST-0001", p.ProviderRef)
	require.Len(t, p.Tenders, 1)
	assert.True(t, p.Tenders[0].Amount.Equal(decimal.RequireFromString("1170")))

	p, err = svc.HandleConfirmation(context.Background(), ConfirmationRequest{
		ProviderRef: "CRD-TEST-0001",
		Status:      "APPROVED",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)
	assert.True(t, p.Remaining().IsZero())
}

func TestAuthorizeThenDecline(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "1170.00")

	_, err := svc.Authorize(context.Background(), p.ID.String(), AuthorizeRequest{Method: "CARD"})
	require.NoError(t, err)

	p, err = svc.HandleConfirmation(context.Background(), ConfirmationRequest{
		ProviderRef: "CRD-TEST-0001",
		Status:      "DECLINED",
		Message:     "insufficient funds",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "insufficient funds", p.FailureReason)
	// The declined tender never happened.
	assert.Empty(t, p.Tenders)
	assert.True(t, p.AmountTendered.IsZero())
}

func TestConfirmationForTerminalAttemptIsNoOp(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "1170.00")

	_, err := svc.Authorize(context.Background(), p.ID.String(), AuthorizeRequest{Method: "CARD"})
	require.NoError(t, err)

	_, err = svc.HandleConfirmation(context.Background(), ConfirmationRequest{
		ProviderRef: "CRD-TEST-0001",
		Status:      "APPROVED",
	})
	require.NoError(t, err)

	// A duplicate delivery of the same webhook changes nothing.
	p, err = svc.HandleConfirmation(context.Background(), ConfirmationRequest{
		ProviderRef: "CRD-TEST-0001",
		Status:      "DECLINED",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)
}

func TestConfirmationUnknownRef(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())

	_, err := svc.HandleConfirmation(context.Background(), ConfirmationRequest{
		ProviderRef: "CRD-NOPE",
		Status:      "APPROVED",
	})
	assert.Error(t, err)
}

func TestAuthorizeRequiresPendingStatus(t *testing.T) {
	svc, _ := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "100.00")

	_, err := svc.ProcessCash(context.Background(), p.ID.String(), decimal.RequireFromString("100"))
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), p.ID.String(), AuthorizeRequest{Method: "CARD"})
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestMobileAuthorizeRequiresPhone(t *testing.T) {
	store := NewStore()
	gateways := GatewayRegistry{
		MethodMobile: NewMobileMoneyGateway("test-key", "sandbox"),
	}
	svc := NewService(store, gateways, NewMockGiftCards(), zaptest.NewLogger(t))

	p, err := svc.Begin(context.Background(), BeginRequest{CartID: uuid.NewString(), Total: "100.00"})
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), p.ID.String(), AuthorizeRequest{Method: "MOBILE"})
	assert.Error(t, err)

	p2, err := svc.Authorize(context.Background(), p.ID.String(), AuthorizeRequest{
		Method:      "MOBILE",
		PhoneNumber: "260971234567",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, p2.Status)
	assert.NotEmpty(t, p2.ProviderRef)
}

func TestDiscardRemovesAttempt(t *testing.T) {
	svc, store := newTestService(t, NewMockGiftCards())
	p := beginAttempt(t, svc, "100.00")

	svc.Discard(p.ID.String())

	_, err := store.Get(p.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusCompleted, NormalizeStatus("approved"))
	assert.Equal(t, StatusCompleted, NormalizeStatus("SUCCESSFUL"))
	assert.Equal(t, StatusFailed, NormalizeStatus("Declined"))
	assert.Equal(t, StatusProcessing, NormalizeStatus("PENDING"))
}

func TestRemainingAfterPartialTender(t *testing.T) {
	p := &Payment{
		ID:    uuid.New(),
		Total: decimal.RequireFromString("1170"),
	}
	p.Tenders = append(p.Tenders, Tender{
		ID:     uuid.New(),
		Method: MethodCash,
		Amount: decimal.RequireFromString("600"),
	})
	p.recompute()

	assert.True(t, p.Remaining().Equal(decimal.RequireFromString("570")))
	assert.WithinDuration(t, time.Now(), p.UpdatedAt, time.Second)
}
