package app

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMenu map[string]domain.Item

func (m fakeMenu) GetItem(_ context.Context, id string) (domain.Item, error) {
	it, ok := m[id]
	if !ok {
		return domain.Item{}, ErrItemNotFound
	}
	return it, nil
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (*domain.Cart, error) {
	return nil, errors.New("connection refused")
}
func (failingStore) Save(context.Context, *domain.Cart) error { return errors.New("connection refused") }
func (failingStore) Delete(context.Context, string) error     { return errors.New("connection refused") }

var menu = fakeMenu{
	"biryani": {ID: "biryani", Name: "Veg Biryani", Price: decimal.NewFromInt(200), Category: "Biryani"},
	"lassi":   {ID: "lassi", Name: "Lassi", Price: decimal.NewFromInt(60), Category: "Drinks"},
}

func TestAddPersistsEachMutation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCartStore()
	svc := NewService(store, menu, nil)

	_, err := svc.AddItem(ctx, "u1", "biryani")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", "biryani")
	require.NoError(t, err)

	stored, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored.Lines(), 1)
	assert.Equal(t, 2, stored.Count())
	assert.Equal(t, "Veg Biryani", stored.Lines()[0].Name)
}

func TestSetQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewCartStore(), menu, nil)

	_, err := svc.AddItem(ctx, "u1", "biryani")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", "lassi")
	require.NoError(t, err)

	c, err := svc.SetItemQuantity(ctx, "u1", "lassi", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Count())

	c, err = svc.SetItemQuantity(ctx, "u1", "lassi", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count())

	c, err = svc.RemoveItem(ctx, "u1", "biryani")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = svc.RemoveItem(ctx, "u1", "biryani")
	assert.NoError(t, err)
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewCartStore(), menu, nil)

	_, err := svc.AddItem(ctx, "u1", "biryani")
	require.NoError(t, err)
	require.NoError(t, svc.ClearCart(ctx, "u1"))

	c, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewCartStore(), menu, nil)

	t.Run("blank user", func(t *testing.T) {
		_, err := svc.GetCart(ctx, "  ")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.ErrorIs(t, svc.ClearCart(ctx, ""), ErrInvalidInput)
	})

	t.Run("blank item", func(t *testing.T) {
		_, err := svc.AddItem(ctx, "u1", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.AddItem(ctx, "u1", "ghost")
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestQuantityIsBounded(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCartStore()
	svc := NewService(store, menu, nil)

	_, err := svc.AddItem(ctx, "u1", "lassi")
	require.NoError(t, err)

	_, err = svc.SetItemQuantity(ctx, "u1", "lassi", math.MaxInt32+1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SetItemQuantity(ctx, "u1", "lassi", MaxLineQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	c, err := svc.SetItemQuantity(ctx, "u1", "lassi", MaxLineQuantity)
	require.NoError(t, err)
	assert.Equal(t, MaxLineQuantity, c.Count())

	_, err = svc.AddItem(ctx, "u1", "lassi")
	assert.ErrorIs(t, err, ErrInvalidInput)

	stored, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, MaxLineQuantity, stored.Count(), "rejected mutations are not saved")
}

func TestStoreFailureIsUnavailable(t *testing.T) {
	svc := NewService(failingStore{}, menu, nil)

	_, err := svc.AddItem(context.Background(), "u1", "biryani")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, svc.ClearCart(context.Background(), "u1"), ErrStoreUnavailable)
}
