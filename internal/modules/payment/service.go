package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dukapos/dukapos-backend/internal/money"
	"github.com/dukapos/dukapos-backend/internal/modules/giftcard"
)

// GiftCards is the slice of the gift card service the reconciler needs.
type GiftCards interface {
	Validate(ctx context.Context, number string) (*giftcard.Card, error)
	Debit(ctx context.Context, number string, amount decimal.Decimal) error
	Credit(ctx context.Context, number string, amount decimal.Decimal) error
}

// Service defines payment reconciliation logic.
type Service interface {
	Begin(ctx context.Context, req BeginRequest) (*Payment, error)
	Get(id string) (*Payment, error)
	// ProcessCash settles the attempt with a single cash tender;
	// completion requires tendered >= total and change is returned.
	ProcessCash(ctx context.Context, id string, amountTendered decimal.Decimal) (*Payment, error)
	// Authorize starts a single-tender card or mobile charge; the final
	// verdict arrives via HandleConfirmation.
	Authorize(ctx context.Context, id string, req AuthorizeRequest) (*Payment, error)
	HandleConfirmation(ctx context.Context, req ConfirmationRequest) (*Payment, error)
	// AddTender appends one split-payment tender; the attempt completes
	// when the remaining amount falls within the rounding tolerance.
	AddTender(ctx context.Context, id string, req TenderRequest) (*Payment, error)
	Cancel(ctx context.Context, id string) (*Payment, error)
	// Discard drops a settled attempt after finalization.
	Discard(id string)
}

type service struct {
	store     *Store
	gateways  GatewayRegistry
	giftCards GiftCards
	logger    *zap.Logger
}

func NewService(store *Store, gateways GatewayRegistry, giftCards GiftCards, logger *zap.Logger) Service {
	return &service{
		store:     store,
		gateways:  gateways,
		giftCards: giftCards,
		logger:    logger,
	}
}

func (s *service) Begin(ctx context.Context, req BeginRequest) (*Payment, error) {
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart_id: %w", err)
	}
	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		return nil, fmt.Errorf("invalid total: %w", err)
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("total must not be negative")
	}

	// One open attempt per cart: a fresh Begin supersedes any attempt
	// that never reached COMPLETED.
	if prev, ok := s.store.FindByCart(cartID); ok && prev.Status != StatusCompleted {
		s.store.Delete(prev.ID)
	}

	p := &Payment{
		ID:             uuid.New(),
		CartID:         cartID,
		Total:          money.Round2(total),
		Status:         StatusPending,
		AmountTendered: decimal.Zero,
		ChangeDue:      decimal.Zero,
	}
	p.recompute()
	p.CreatedAt = p.UpdatedAt
	s.store.Put(p)
	return p, nil
}

func (s *service) Get(id string) (*Payment, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid payment id: %w", err)
	}
	return s.store.Get(pid)
}

func (s *service) ProcessCash(ctx context.Context, id string, amountTendered decimal.Decimal) (*Payment, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, ErrNotPending
	}
	if len(p.Tenders) > 0 {
		// Partial tenders are already on record; overwriting them with a
		// single cash tender would charge the customer twice.
		return nil, ErrSplitInProgress
	}
	if amountTendered.LessThan(p.Total) {
		return nil, ErrInsufficientCash
	}

	p.Tenders = []Tender{{
		ID:     uuid.New(),
		Method: MethodCash,
		Amount: money.Round2(amountTendered),
	}}
	p.recompute()
	p.ChangeDue = money.Round2(amountTendered.Sub(p.Total))
	p.Status = StatusCompleted
	s.store.Put(p)

	s.logger.Info("cash payment completed",
		zap.String("payment_id", p.ID.String()),
		zap.String("total", p.Total.String()),
		zap.String("change", p.ChangeDue.String()))
	return p, nil
}

func (s *service) Authorize(ctx context.Context, id string, req AuthorizeRequest) (*Payment, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, ErrNotPending
	}

	method := Method(strings.ToUpper(req.Method))
	gw, ok := s.gateways[method]
	if !ok {
		return nil, fmt.Errorf("%w: no gateway registered for %s", ErrInvalidMethod, method)
	}

	amount := p.Remaining()
	if !amount.IsPositive() {
		return nil, ErrInvalidTenderAmount
	}

	result, err := gw.Authorize(ctx, &AuthorizationRequest{
		PaymentID:   p.ID.String(),
		Amount:      amount,
		Reference:   req.Reference,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway authorization failed: %w", err)
	}

	p.Tenders = append(p.Tenders, Tender{
		ID:        uuid.New(),
		Method:    method,
		Amount:    amount,
		Reference: result.ProviderRef,
	})
	p.recompute()
	p.ProviderRef = result.ProviderRef
	p.Status = StatusProcessing
	s.store.Put(p)

	s.logger.Info("payment authorization pending",
		zap.String("payment_id", p.ID.String()),
		zap.String("provider_ref", result.ProviderRef),
		zap.String("method", string(method)))
	return p, nil
}

func (s *service) HandleConfirmation(ctx context.Context, req ConfirmationRequest) (*Payment, error) {
	p, err := s.store.FindByProviderRef(req.ProviderRef)
	if err != nil {
		return nil, fmt.Errorf("no attempt found for provider_ref %s: %w", req.ProviderRef, err)
	}
	if p.Status != StatusProcessing {
		return p, nil // terminal or superseded; confirmation is a no-op
	}

	switch NormalizeStatus(req.Status) {
	case StatusCompleted:
		if err := s.settle(ctx, p); err != nil {
			return nil, err
		}
	case StatusFailed:
		// Declined charge: the authorized tender never happened.
		s.dropTenderByReference(p, req.ProviderRef)
		p.Status = StatusFailed
		p.FailureReason = req.Message
		if p.FailureReason == "" {
			p.FailureReason = "processor declined"
		}
		s.store.Put(p)
		s.logger.Warn("payment declined",
			zap.String("payment_id", p.ID.String()),
			zap.String("provider_ref", req.ProviderRef))
	default:
		// still processing, nothing to record
	}
	return p, nil
}

func (s *service) AddTender(ctx context.Context, id string, req TenderRequest) (*Payment, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, ErrNotPending
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	amount = money.Round2(amount)
	if !amount.IsPositive() {
		return nil, ErrInvalidTenderAmount
	}
	if p.AmountTendered.Add(amount).GreaterThan(p.Total.Add(money.Epsilon)) {
		return nil, ErrOvertender
	}

	method := Method(strings.ToUpper(req.Method))
	reference := req.Reference
	switch method {
	case MethodCash, MethodCard, MethodMobile:
	case MethodGiftCard:
		card, err := s.giftCards.Validate(ctx, req.GiftCardNumber)
		if err != nil {
			return nil, err
		}
		if amount.GreaterThan(card.Balance) {
			return nil, giftcard.ErrInsufficientBalance
		}
		reference = card.Number
	default:
		return nil, ErrInvalidMethod
	}

	p.Tenders = append(p.Tenders, Tender{
		ID:        uuid.New(),
		Method:    method,
		Amount:    amount,
		Reference: reference,
	})
	p.recompute()
	s.store.Put(p)

	if p.Remaining().Abs().LessThan(money.Epsilon) {
		if err := s.settle(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *service) Cancel(ctx context.Context, id string) (*Payment, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	// Nothing reached stock or the ledger yet, so discarding tenders is
	// the whole rollback.
	p.Tenders = nil
	p.recompute()
	p.ChangeDue = decimal.Zero
	p.Status = StatusCancelled
	s.store.Put(p)

	s.logger.Info("payment cancelled", zap.String("payment_id", p.ID.String()))
	return p, nil
}

func (s *service) Discard(id string) {
	if pid, err := uuid.Parse(id); err == nil {
		s.store.Delete(pid)
	}
}

// settle completes an attempt: gift-card value is captured here, at the
// last possible moment, so a cancelled attempt never touches a card.
// Capture is all-or-nothing: when one card fails, every card already
// debited is credited back and the failed tender comes off the attempt,
// leaving it exactly as it stood before the settling tender arrived.
func (s *service) settle(ctx context.Context, p *Payment) error {
	var debited []Tender
	for _, t := range p.Tenders {
		if t.Method != MethodGiftCard {
			continue
		}
		if err := s.giftCards.Debit(ctx, t.Reference, t.Amount); err != nil {
			s.logger.Warn("gift card capture failed",
				zap.String("payment_id", p.ID.String()),
				zap.String("card", t.Reference),
				zap.Error(err))
			for _, d := range debited {
				if cerr := s.giftCards.Credit(ctx, d.Reference, d.Amount); cerr != nil {
					s.logger.Error("gift card compensation failed, balance needs manual correction",
						zap.String("payment_id", p.ID.String()),
						zap.String("card", d.Reference),
						zap.String("amount", d.Amount.String()),
						zap.Error(cerr))
				}
			}
			s.dropTenderByID(p, t.ID)
			s.store.Put(p)
			return fmt.Errorf("gift card capture failed: %w", err)
		}
		debited = append(debited, t)
	}
	p.Status = StatusCompleted
	s.store.Put(p)

	s.logger.Info("payment completed",
		zap.String("payment_id", p.ID.String()),
		zap.String("total", p.Total.String()),
		zap.Int("tenders", len(p.Tenders)))
	return nil
}

func (s *service) dropTenderByID(p *Payment, id uuid.UUID) {
	for i, t := range p.Tenders {
		if t.ID == id {
			p.Tenders = append(p.Tenders[:i], p.Tenders[i+1:]...)
			p.recompute()
			return
		}
	}
}

func (s *service) dropTenderByReference(p *Payment, ref string) {
	for i, t := range p.Tenders {
		if t.Reference == ref {
			p.Tenders = append(p.Tenders[:i], p.Tenders[i+1:]...)
			p.recompute()
			return
		}
	}
}
