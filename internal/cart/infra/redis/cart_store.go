package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	goredis "github.com/go-redis/redis/v8"
)

const keyPrefix = "storefront:cart:"

type CartStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewCartStore(client *goredis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

type storedCart struct {
	Lines     []domain.Line `json:"lines"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (s *CartStore) Load(ctx context.Context, userID string) (*domain.Cart, error) {
	raw, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.New(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var sc storedCart
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return domain.Restore(userID, sc.Lines), nil
}

// Save refreshes the TTL on every write. An empty cart deletes the key.
func (s *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	if cart.IsEmpty() {
		return s.Delete(ctx, cart.UserID)
	}

	raw, err := json.Marshal(storedCart{Lines: cart.Lines(), UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, key(cart.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func key(userID string) string {
	return keyPrefix + userID
}
