package payment

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds open payment attempts in memory. An attempt only leaves a
// durable trace once the finalizer turns it into a sale.
type Store struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*Payment
}

func NewStore() *Store {
	return &Store{payments: make(map[uuid.UUID]*Payment)}
}

func (s *Store) Put(p *Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
}

func (s *Store) Get(id uuid.UUID) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// FindByProviderRef resolves a confirmation webhook back to its attempt.
func (s *Store) FindByProviderRef(ref string) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.payments {
		if p.ProviderRef == ref {
			return p, nil
		}
	}
	return nil, ErrPaymentNotFound
}

// FindByCart returns the newest attempt for a cart, if any.
func (s *Store) FindByCart(cartID uuid.UUID) (*Payment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Payment
	for _, p := range s.payments {
		if p.CartID != cartID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	return latest, latest != nil
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.payments, id)
}
