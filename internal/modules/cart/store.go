package cart

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrCartNotFound = errors.New("cart not found")

// Store holds in-progress carts. Carts are pure staging state, so they
// live in memory; only finalized sales reach the ledger.
type Store struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[uuid.UUID]*Cart)}
}

func (s *Store) Put(c *Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.ID] = c
}

func (s *Store) Get(id uuid.UUID) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	return c, nil
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
}
