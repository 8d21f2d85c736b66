package grpc

import (
	"context"
	"testing"
	"time"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	cartmemory "github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	menustore "github.com/dwikikusuma/storefront/internal/catalog/infra/docstore"
	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/memory"
	"github.com/dwikikusuma/storefront/internal/geo"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	ordermemory "github.com/dwikikusuma/storefront/internal/order/infra/memory"
	"github.com/dwikikusuma/storefront/internal/pricing"
	shopapp "github.com/dwikikusuma/storefront/internal/shop/app"
	shopdomain "github.com/dwikikusuma/storefront/internal/shop/domain"
	shopstore "github.com/dwikikusuma/storefront/internal/shop/infra/docstore"
	"github.com/dwikikusuma/storefront/pkg/docstore"
	"github.com/dwikikusuma/storefront/pkg/rpc/rpctest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var center = geo.Point{Lat: 20.491026, Lng: 77.866386}

type env struct {
	client *Client
	cart   *cartapp.Service
	shop   *shopapp.Service
	itemID string
}

func setup(t *testing.T) env {
	ctx := context.Background()
	store := docstore.NewMemory()

	catalog := catalogapp.NewService(menustore.NewMenuRepo(store, nil), nil, nil)
	item, err := catalog.CreateItem(ctx, catalogdomain.ItemInput{Name: "Veg Biryani", Price: decimal.NewFromInt(400), Category: "Biryani"})
	require.NoError(t, err)

	cart := cartapp.NewService(cartmemory.NewCartStore(), cartadapter.NewCatalogMenuReader(catalog), nil)
	shop := shopapp.NewService(shopstore.NewSettingsRepo(store, shopdomain.Defaults{
		Center:        center,
		RadiusKm:      10,
		MinOrderValue: decimal.NewFromInt(150),
	}, nil), nil, nil)
	require.NoError(t, shop.Start(ctx))
	t.Cleanup(shop.Stop)

	svc := app.NewService(app.Deps{
		Cart:    adapter.NewCartServiceReader(cart),
		Catalog: adapter.NewCatalogServiceReader(catalog),
		Terms:   adapter.NewShopTermsReader(shop),
		Orders:  orderapp.NewService(ordermemory.NewOrderRepo(), time.UTC, "INR", nil),
		Guard:   memory.NewGuard(),
	}, app.Options{Currency: "INR"}, nil)

	conn := rpctest.Serve(t, func(s *grpc.Server) { Register(s, NewServer(svc)) })
	return env{client: NewClient(conn), cart: cart, shop: shop, itemID: item.ID}
}

func ptr(f float64) *float64 { return &f }

func placeReq(lat, lng float64) *PlaceOrderRequest {
	return &PlaceOrderRequest{
		UserID:        "u1",
		CustomerName:  "Asha",
		BillingName:   "Asha",
		BillingMobile: "9800000000",
		Address:       "Main road",
		Lat:           ptr(lat),
		Lng:           ptr(lng),
	}
}

func TestCheckoutOverGRPC(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	_, err := e.cart.AddItem(ctx, "u1", e.itemID)
	require.NoError(t, err)
	_, err = e.shop.SetCategoryDiscount(ctx, "biryani", pricingPercent(10))
	require.NoError(t, err)

	q, err := e.client.Quote(ctx, &QuoteRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, q.DiscountedTotal.Equal(decimal.NewFromInt(360)))
	assert.True(t, q.Savings.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "10%", q.Lines[0].Discount)

	res, err := e.client.PlaceOrder(ctx, placeReq(center.Lat, center.Lng))
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.NotEmpty(t, res.OrderID)
	assert.Equal(t, "pending", res.Status)
	assert.True(t, res.DiscountedTotal.Equal(decimal.NewFromInt(360)))

	c, err := e.cart.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty(), "cart cleared after order")
}

func TestRejectionDetailsOverGRPC(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	_, err := e.client.PlaceOrder(ctx, &PlaceOrderRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = e.client.PlaceOrder(ctx, &PlaceOrderRequest{UserID: "u1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = e.cart.AddItem(ctx, "u1", e.itemID)
	require.NoError(t, err)

	// About 12 km north of the shop.
	_, err = e.client.PlaceOrder(ctx, placeReq(center.Lat+0.1079, center.Lng))
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
	info, ok := RejectionInfo(err)
	require.True(t, ok)
	assert.Equal(t, "OUT_OF_DELIVERY_RANGE", info.GetReason())
	assert.Equal(t, "12.00", info.GetMetadata()["distance_km"])
	assert.Equal(t, "true", info.GetMetadata()["retryable"])

	req := placeReq(0, 0)
	req.Lat, req.Lng = nil, nil
	_, err = e.client.PlaceOrder(ctx, req)
	info, ok = RejectionInfo(err)
	require.True(t, ok)
	assert.Equal(t, "LOCATION_UNAVAILABLE", info.GetReason())

	_, err = e.shop.SetOpen(ctx, false)
	require.NoError(t, err)
	_, err = e.client.PlaceOrder(ctx, placeReq(center.Lat, center.Lng))
	info, ok = RejectionInfo(err)
	require.True(t, ok)
	assert.Equal(t, "SHOP_CLOSED", info.GetReason())
}

func pricingPercent(v int64) pricing.Discount {
	return pricing.Discount{Type: pricing.Percent, Value: decimal.NewFromInt(v)}
}
