package memory

import (
	"context"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// CartStore keeps carts in process. Used by tests and single-node dev runs.
type CartStore struct {
	mu    sync.Mutex
	carts map[string][]domain.Line
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]domain.Line)}
}

func (s *CartStore) Load(_ context.Context, userID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Restore(userID, s.carts[userID]), nil
}

func (s *CartStore) Save(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart.IsEmpty() {
		delete(s.carts, cart.UserID)
		return nil
	}
	s.carts[cart.UserID] = cart.Lines()
	return nil
}

func (s *CartStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}
