package app_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/memory"
	"github.com/dwikikusuma/storefront/internal/geo"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	ordermemory "github.com/dwikikusuma/storefront/internal/order/infra/memory"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shopCenter = geo.Point{Lat: 20.491026, Lng: 77.866386}

// offsetNorth moves p km kilometres north.
func offsetNorth(p geo.Point, km float64) geo.Point {
	return geo.Point{Lat: p.Lat + km/(geo.EarthRadiusKm*math.Pi/180), Lng: p.Lng}
}

type fakeCart struct {
	mu      sync.Mutex
	lines   map[string][]app.CartLine
	err     error
	cleared []string
}

func (c *fakeCart) GetCart(_ context.Context, userID string) ([]app.CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return append([]app.CartLine(nil), c.lines[userID]...), nil
}

func (c *fakeCart) ClearCart(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lines, userID)
	c.cleared = append(c.cleared, userID)
	return nil
}

type fakeCatalog map[string]app.Item

func (m fakeCatalog) GetItem(_ context.Context, id string) (app.Item, error) {
	it, ok := m[id]
	if !ok {
		return app.Item{}, app.ErrItemNotFound
	}
	return it, nil
}

type staticTerms struct {
	terms app.Terms
	err   error
}

func (s *staticTerms) Terms(context.Context) (app.Terms, error) { return s.terms, s.err }

type fixture struct {
	svc     *app.Service
	cart    *fakeCart
	terms   *staticTerms
	orders  *orderapp.Service
	catalog fakeCatalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cart: &fakeCart{lines: map[string][]app.CartLine{
			"u1": {{ItemID: "biryani", Name: "Veg Biryani", Category: "Biryani", Price: decimal.NewFromInt(200), Quantity: 2}},
		}},
		terms: &staticTerms{terms: app.Terms{
			IsOpen: true,
			Zone:   geo.Zone{Center: shopCenter, RadiusKm: 10},
			Policy: pricing.Policy{
				GlobalPercent: decimal.NewFromInt(10),
			},
			MinOrderValue: decimal.NewFromInt(150),
		}},
		catalog: fakeCatalog{
			"biryani": {ID: "biryani", Name: "Veg Biryani", Category: "Biryani", Price: decimal.NewFromInt(200)},
			"lassi":   {ID: "lassi", Name: "Lassi", Category: "Drinks", Price: decimal.NewFromInt(60)},
		},
		orders: orderapp.NewService(ordermemory.NewOrderRepo(), time.UTC, "INR", nil),
	}
	f.svc = app.NewService(app.Deps{
		Cart:    f.cart,
		Catalog: f.catalog,
		Terms:   f.terms,
		Orders:  f.orders,
		Guard:   memory.NewGuard(),
	}, app.Options{LocationTimeout: 50 * time.Millisecond, Currency: "INR"}, nil)
	return f
}

func request(userID string, at geo.Point) app.PlaceOrderRequest {
	return app.PlaceOrderRequest{
		UserID:       userID,
		CustomerName: "Asha",
		Billing:      orderdomain.Billing{Name: "Asha", Mobile: "9800000000", Address: "Main road, Washim"},
		Locator:      app.RequestLocator{Point: &at},
	}
}

func rejection(t *testing.T, err error) *domain.Rejection {
	t.Helper()
	var rej *domain.Rejection
	require.True(t, errors.As(err, &rej), "want rejection, got %v", err)
	return rej
}

func TestPlaceOrderHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.PlaceOrder(ctx, request("u1", offsetNorth(shopCenter, 2)))
	require.NoError(t, err)
	require.False(t, res.Skipped)

	o := res.Order
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, orderdomain.StatusPending, o.Status)
	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(400)))
	assert.True(t, o.DiscountedTotal.Equal(decimal.NewFromInt(360)))
	assert.InDelta(t, 2.0, o.DistanceKm, 0.01)
	assert.Equal(t, []string{"u1"}, f.cart.cleared)

	stored, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.NoError(t, stored.Validate())
}

func TestPreconditionsInOrder(t *testing.T) {
	ctx := context.Background()
	inside := offsetNorth(shopCenter, 1)

	cases := []struct {
		name  string
		setup func(f *fixture, req *app.PlaceOrderRequest)
		want  domain.Code
	}{
		{"not signed in", func(f *fixture, req *app.PlaceOrderRequest) {
			req.UserID = ""
			req.Billing = orderdomain.Billing{}
		}, domain.CodeSignInRequired},
		{"missing billing beats empty cart", func(f *fixture, req *app.PlaceOrderRequest) {
			req.Billing.Mobile = "  "
			f.cart.lines = nil
		}, domain.CodeMissingBilling},
		{"empty cart beats closed shop", func(f *fixture, req *app.PlaceOrderRequest) {
			f.cart.lines = nil
			f.terms.terms.IsOpen = false
		}, domain.CodeEmptyCart},
		{"closed shop beats minimum", func(f *fixture, req *app.PlaceOrderRequest) {
			f.terms.terms.IsOpen = false
			f.terms.terms.MinOrderValue = decimal.NewFromInt(10000)
		}, domain.CodeShopClosed},
		{"minimum beats location", func(f *fixture, req *app.PlaceOrderRequest) {
			f.terms.terms.MinOrderValue = decimal.NewFromInt(361)
			req.Locator = app.RequestLocator{}
		}, domain.CodeBelowMinimum},
		{"location beats geofence", func(f *fixture, req *app.PlaceOrderRequest) {
			req.Locator = app.RequestLocator{}
		}, domain.CodeLocationUnavailable},
		{"item removed from menu", func(f *fixture, req *app.PlaceOrderRequest) {
			delete(f.catalog, "biryani")
		}, domain.CodeItemUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := request("u1", inside)
			tc.setup(f, &req)

			_, err := f.svc.PlaceOrder(ctx, req)
			assert.Equal(t, tc.want, rejection(t, err).Code)
			assert.Empty(t, f.cart.cleared)

			day, err := f.orders.ListByDay(ctx, time.Time{})
			require.NoError(t, err)
			assert.Empty(t, day, "nothing persisted")
		})
	}
}

func TestRejectsBeforeLocating(t *testing.T) {
	cases := []struct {
		name  string
		setup func(f *fixture, req *app.PlaceOrderRequest)
		want  domain.Code
	}{
		{"empty billing name", func(f *fixture, req *app.PlaceOrderRequest) {
			req.Billing.Name = ""
		}, domain.CodeMissingBilling},
		{"empty cart", func(f *fixture, req *app.PlaceOrderRequest) {
			f.cart.lines = nil
		}, domain.CodeEmptyCart},
		{"shop closed", func(f *fixture, req *app.PlaceOrderRequest) {
			f.terms.terms.IsOpen = false
		}, domain.CodeShopClosed},
		{"below minimum", func(f *fixture, req *app.PlaceOrderRequest) {
			f.terms.terms.MinOrderValue = decimal.NewFromInt(1000)
		}, domain.CodeBelowMinimum},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := request("u1", shopCenter)
			var calls int
			req.Locator = app.LocatorFunc(func(context.Context) (geo.Point, error) {
				calls++
				return shopCenter, nil
			})
			tc.setup(f, &req)

			_, err := f.svc.PlaceOrder(context.Background(), req)
			assert.Equal(t, tc.want, rejection(t, err).Code)
			assert.Zero(t, calls, "locator must not be asked")
		})
	}
}

func TestOversizedQuantityIsInvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.cart.lines["u1"][0].Quantity = math.MaxInt32 + 1

	_, err := f.svc.PlaceOrder(ctx, request("u1", shopCenter))
	assert.ErrorIs(t, err, app.ErrInvalidInput)
	assert.NotErrorIs(t, err, app.ErrStoreUnavailable)

	day, err := f.orders.ListByDay(ctx, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, day)
}

func TestOutOfRangeCarriesDistance(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), request("u1", offsetNorth(shopCenter, 12)))
	rej := rejection(t, err)
	assert.Equal(t, domain.CodeOutOfRange, rej.Code)
	assert.InDelta(t, 12.0, rej.DistanceKm, 0.01)
	assert.Equal(t, 10.0, rej.RadiusKm)
	assert.True(t, rej.Retryable())

	// Retry with a fresh sample from inside the zone.
	res, err := f.svc.PlaceOrder(context.Background(), request("u1", offsetNorth(shopCenter, 9.9)))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Order.ID)
}

func TestMinimumIsCheckedAgainstDiscountedTotal(t *testing.T) {
	f := newFixture(t)
	f.cart.lines["u1"] = []app.CartLine{{ItemID: "biryani", Name: "Veg Biryani", Category: "Biryani", Price: decimal.NewFromInt(200), Quantity: 1}}
	f.terms.terms.MinOrderValue = decimal.NewFromInt(190)

	_, err := f.svc.PlaceOrder(context.Background(), request("u1", shopCenter))
	rej := rejection(t, err)
	assert.Equal(t, domain.CodeBelowMinimum, rej.Code)
	assert.True(t, rej.Total.Equal(decimal.NewFromInt(180)))
}

func TestLocatorTimeout(t *testing.T) {
	f := newFixture(t)
	req := request("u1", shopCenter)
	block := make(chan struct{})
	defer close(block)
	req.Locator = app.LocatorFunc(func(context.Context) (geo.Point, error) {
		<-block
		return shopCenter, nil
	})

	start := time.Now()
	_, err := f.svc.PlaceOrder(context.Background(), req)
	assert.Equal(t, domain.CodeLocationUnavailable, rejection(t, err).Code)
	assert.Less(t, time.Since(start), time.Second)
}

func TestConcurrentSubmissionIsSkipped(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	proceed := make(chan struct{})

	slow := request("u1", shopCenter)
	slow.Locator = app.LocatorFunc(func(context.Context) (geo.Point, error) {
		close(entered)
		<-proceed
		return shopCenter, nil
	})

	done := make(chan app.Result, 1)
	go func() {
		res, err := f.svc.PlaceOrder(context.Background(), slow)
		assert.NoError(t, err)
		done <- res
	}()

	<-entered
	res, err := f.svc.PlaceOrder(context.Background(), request("u1", shopCenter))
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	close(proceed)
	first := <-done
	assert.False(t, first.Skipped)
	assert.NotEmpty(t, first.Order.ID)
}

func TestStoreFailuresAreNotRejections(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	f.cart.err = errors.New("redis: connection refused")
	_, err := f.svc.PlaceOrder(ctx, request("u1", shopCenter))
	assert.ErrorIs(t, err, app.ErrStoreUnavailable)

	f = newFixture(t)
	f.terms.err = errors.New("mongo: no reachable servers")
	_, err = f.svc.PlaceOrder(ctx, request("u1", shopCenter))
	assert.ErrorIs(t, err, app.ErrStoreUnavailable)
	var rej *domain.Rejection
	assert.False(t, errors.As(err, &rej))
}

func TestQuote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.cart.lines["u1"] = append(f.cart.lines["u1"], app.CartLine{ItemID: "lassi", Name: "Lassi", Category: "Drinks", Price: decimal.NewFromInt(50), Quantity: 1})
	f.terms.terms.Policy.CategoryOverrides = map[string]pricing.Discount{
		"drinks": {Type: pricing.Flat, Value: decimal.NewFromInt(100)},
	}

	q, err := f.svc.Quote(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)
	assert.True(t, q.Lines[1].UnitPrice.Equal(decimal.NewFromInt(60)), "menu price wins over cart snapshot")
	assert.True(t, q.Lines[1].UnitDiscounted.IsZero(), "flat discount floors at zero")
	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(460)))
	assert.True(t, q.DiscountedTotal.Equal(decimal.NewFromInt(360)))
	assert.True(t, q.MeetsMinimum())
	assert.True(t, q.ShopOpen)
	assert.Empty(t, f.cart.cleared)

	empty, err := f.svc.Quote(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}
