package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrItemNotFound     = errors.New("menu item not found")
	ErrStoreUnavailable = errors.New("cart store unavailable")
)

// MaxLineQuantity is the most of one item a cart line may hold.
const MaxLineQuantity = 999

// Service owns the cart state for each user and persists it after every
// mutation.
type Service struct {
	store CartStore
	menu  MenuReader
	log   *slog.Logger
}

func NewService(store CartStore, menu MenuReader, log *slog.Logger) *Service {
	return &Service{
		store: store,
		menu:  menu,
		log:   logger.OrDiscard(log),
	}
}

func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return c, nil
}

// AddItem looks the item up in the menu so the line carries a fresh name,
// price and category snapshot.
func (s *Service) AddItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, ErrInvalidInput
	}
	item, err := s.menu.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		if quantityOf(c, item.ID) >= MaxLineQuantity {
			return fmt.Errorf("%w: at most %d of one item", ErrInvalidInput, MaxLineQuantity)
		}
		c.Add(item)
		return nil
	})
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		c.Remove(itemID)
		return nil
	})
}

func (s *Service) SetItemQuantity(ctx context.Context, userID, itemID string, qty int) (*domain.Cart, error) {
	if qty > MaxLineQuantity {
		return nil, fmt.Errorf("%w: at most %d of one item", ErrInvalidInput, MaxLineQuantity)
	}
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		c.SetQuantity(itemID, qty)
		return nil
	})
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.log.Info("cart cleared", slog.String("user_id", userID))
	return nil
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	c, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := fn(c); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.log.Debug("cart saved", slog.String("user_id", userID), slog.Int("count", c.Count()))
	return c, nil
}

func quantityOf(c *domain.Cart, itemID string) int {
	for _, l := range c.Lines() {
		if l.ItemID == itemID {
			return l.Quantity
		}
	}
	return 0
}
