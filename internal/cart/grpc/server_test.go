package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	"github.com/dwikikusuma/storefront/pkg/rpc/rpctest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type menu struct{}

func (menu) GetItem(_ context.Context, id string) (domain.Item, error) {
	if id != "biryani" {
		return domain.Item{}, app.ErrItemNotFound
	}
	return domain.Item{ID: id, Name: "Veg Biryani", Price: decimal.NewFromInt(200), Category: "Biryani"}, nil
}

func newClient(t *testing.T) *Client {
	svc := app.NewService(memory.NewCartStore(), menu{}, nil)
	conn := rpctest.Serve(t, func(s *grpc.Server) { Register(s, NewServer(svc)) })
	return NewClient(conn)
}

func TestCartOverGRPC(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.AddItem(ctx, &ItemRequest{UserID: "u1", ItemID: "biryani"})
	require.NoError(t, err)
	got, err := c.AddItem(ctx, &ItemRequest{UserID: "u1", ItemID: "biryani"})
	require.NoError(t, err)

	require.Len(t, got.Lines, 1)
	assert.Equal(t, 2, got.Count)
	assert.True(t, got.RawTotal.Equal(decimal.NewFromInt(400)))
	assert.True(t, got.Lines[0].LineTotal.Equal(decimal.NewFromInt(400)))

	got, err = c.SetItemQuantity(ctx, &ItemRequest{UserID: "u1", ItemID: "biryani", Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, got.Lines)

	_, err = c.ClearCart(ctx, &UserRequest{UserID: "u1"})
	require.NoError(t, err)
}

func TestCartErrorsOverGRPC(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.AddItem(ctx, &ItemRequest{UserID: "u1", ItemID: "ghost"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.GetCart(ctx, &UserRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestMapErr(t *testing.T) {
	cases := map[error]codes.Code{
		app.ErrInvalidInput:     codes.InvalidArgument,
		app.ErrItemNotFound:     codes.NotFound,
		app.ErrStoreUnavailable: codes.Unavailable,
		errors.New("boom"):      codes.Internal,
	}
	for in, want := range cases {
		assert.Equal(t, want, status.Code(mapErr(in)), in.Error())
	}
}
