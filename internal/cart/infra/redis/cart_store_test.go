package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	goredis "github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*CartStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCartStore(client, time.Hour), mr
}

func TestLoadMissingReturnsEmptyCart(t *testing.T) {
	store, _ := newStore(t)

	c, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.True(t, c.IsEmpty())
}

func TestSaveLoadKeepsOrderAndPrices(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	c := domain.New("u1")
	c.Add(domain.Item{ID: "b", Name: "Biryani", Price: decimal.RequireFromString("199.50"), Category: "Biryani"})
	c.Add(domain.Item{ID: "a", Name: "Lassi", Price: decimal.NewFromInt(60), Category: "Drinks"})
	c.Add(domain.Item{ID: "b", Name: "Biryani", Price: decimal.RequireFromString("199.50"), Category: "Biryani"})
	require.NoError(t, store.Save(ctx, c))

	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"u1"))

	got, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	lines := got.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "b", lines[0].ItemID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, lines[0].Price.Equal(decimal.RequireFromString("199.50")))
	assert.Equal(t, "a", lines[1].ItemID)
}

func TestSaveEmptyDeletesKey(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	c := domain.New("u1")
	c.Add(domain.Item{ID: "x", Price: decimal.NewFromInt(1)})
	require.NoError(t, store.Save(ctx, c))
	require.True(t, mr.Exists(keyPrefix+"u1"))

	c.Clear()
	require.NoError(t, store.Save(ctx, c))
	assert.False(t, mr.Exists(keyPrefix+"u1"))
}

func TestLoadCorruptPayload(t *testing.T) {
	store, mr := newStore(t)
	require.NoError(t, mr.Set(keyPrefix+"u1", "{not json"))

	_, err := store.Load(context.Background(), "u1")
	assert.Error(t, err)
}

func TestStoreUnavailable(t *testing.T) {
	store, mr := newStore(t)
	mr.Close()

	_, err := store.Load(context.Background(), "u1")
	assert.Error(t, err)
}
