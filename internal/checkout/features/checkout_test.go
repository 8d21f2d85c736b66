package features

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/cucumber/godog"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	cartmemory "github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/memory"
	"github.com/dwikikusuma/storefront/internal/geo"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	ordermemory "github.com/dwikikusuma/storefront/internal/order/infra/memory"
	"github.com/dwikikusuma/storefront/internal/pricing"
	shopapp "github.com/dwikikusuma/storefront/internal/shop/app"
	shopdomain "github.com/dwikikusuma/storefront/internal/shop/domain"
	shopstore "github.com/dwikikusuma/storefront/internal/shop/infra/docstore"
	"github.com/dwikikusuma/storefront/pkg/docstore"
	"github.com/shopspring/decimal"
)

var center = geo.Point{Lat: 20.491026, Lng: 77.866386}

type menu map[string]cartdomain.Item

func (m menu) GetItem(_ context.Context, id string) (cartdomain.Item, error) {
	it, ok := m[id]
	if !ok {
		return cartdomain.Item{}, cartapp.ErrItemNotFound
	}
	return it, nil
}

type catalog struct{ menu menu }

func (c catalog) GetItem(_ context.Context, id string) (app.Item, error) {
	it, ok := c.menu[id]
	if !ok {
		return app.Item{}, app.ErrItemNotFound
	}
	return app.Item{ID: it.ID, Name: it.Name, Category: it.Category, Price: it.Price}, nil
}

type checkoutTestContext struct {
	ctx      context.Context
	menu     menu
	cart     *cartapp.Service
	shop     *shopapp.Service
	checkout *app.Service

	result app.Result
	err    error
}

func (c *checkoutTestContext) reset() {
	c.ctx = context.Background()
	c.menu = menu{}
	c.cart = cartapp.NewService(cartmemory.NewCartStore(), c.menu, nil)
	c.shop = shopapp.NewService(shopstore.NewSettingsRepo(docstore.NewMemory(), shopdomain.Defaults{
		Center:        center,
		RadiusKm:      10,
		MinOrderValue: decimal.NewFromInt(150),
	}, nil), nil, nil)
	c.checkout = app.NewService(app.Deps{
		Cart:    adapter.NewCartServiceReader(c.cart),
		Catalog: catalog{menu: c.menu},
		Terms:   adapter.NewShopTermsReader(c.shop),
		Orders:  orderapp.NewService(ordermemory.NewOrderRepo(), time.UTC, "INR", nil),
		Guard:   memory.NewGuard(),
	}, app.Options{Currency: "INR", LocationTimeout: time.Second}, nil)
	c.result = app.Result{}
	c.err = nil
}

func (c *checkoutTestContext) theShopIsOpenWithADeliveryRadius(km float64) error {
	if _, err := c.shop.SetOpen(c.ctx, true); err != nil {
		return err
	}
	_, err := c.shop.SetLocation(c.ctx, "Washim", center, km)
	return err
}

func (c *checkoutTestContext) theShopIsClosed() error {
	_, err := c.shop.SetOpen(c.ctx, false)
	return err
}

func (c *checkoutTestContext) theMinimumOrderValueIs(v string) error {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return err
	}
	_, err = c.shop.SetMinOrderValue(c.ctx, d)
	return err
}

func (c *checkoutTestContext) theMenu(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // skip header
		}
		price, err := decimal.NewFromString(row.Cells[3].Value)
		if err != nil {
			return err
		}
		c.menu[row.Cells[0].Value] = cartdomain.Item{
			ID:       row.Cells[0].Value,
			Name:     row.Cells[1].Value,
			Category: row.Cells[2].Value,
			Price:    price,
		}
	}
	return nil
}

func (c *checkoutTestContext) aPercentDiscountOnCategory(v int64, category string) error {
	_, err := c.shop.SetCategoryDiscount(c.ctx, category, pricing.Discount{Type: pricing.Percent, Value: decimal.NewFromInt(v)})
	return err
}

func (c *checkoutTestContext) aFlatDiscountOnCategory(v int64, category string) error {
	_, err := c.shop.SetCategoryDiscount(c.ctx, category, pricing.Discount{Type: pricing.Flat, Value: decimal.NewFromInt(v)})
	return err
}

func (c *checkoutTestContext) aGlobalDiscountOfPercent(v int64) error {
	_, err := c.shop.SetDiscount(c.ctx, decimal.NewFromInt(v), decimal.Zero)
	return err
}

func (c *checkoutTestContext) userHasItemsInTheCart(user string, qty int, itemID string) error {
	cart, err := c.cart.GetCart(c.ctx, user)
	if err != nil {
		return err
	}
	have := 0
	for _, l := range cart.Lines() {
		if l.ItemID == itemID {
			have = l.Quantity
		}
	}
	if have == 0 {
		if _, err := c.cart.AddItem(c.ctx, user, itemID); err != nil {
			return err
		}
	}
	_, err = c.cart.SetItemQuantity(c.ctx, user, itemID, have+qty)
	return err
}

func (c *checkoutTestContext) place(user string, loc app.Locator) {
	c.result, c.err = c.checkout.PlaceOrder(c.ctx, app.PlaceOrderRequest{
		UserID:       user,
		CustomerName: user,
		Billing:      orderdomain.Billing{Name: user, Mobile: "9800000000", Address: "Main road, Washim"},
		Locator:      loc,
	})
}

func (c *checkoutTestContext) userChecksOutFromKmAway(user string, km float64) error {
	p := geo.Point{Lat: center.Lat + km/(geo.EarthRadiusKm*math.Pi/180), Lng: center.Lng}
	c.place(user, app.RequestLocator{Point: &p})
	return nil
}

func (c *checkoutTestContext) userChecksOutWithoutALocation(user string) error {
	c.place(user, app.LocatorFunc(func(context.Context) (geo.Point, error) {
		return geo.Point{}, errors.New("permission denied")
	}))
	return nil
}

func (c *checkoutTestContext) theOrderIsPlacedWithATotalOf(total string) error {
	if c.err != nil {
		return fmt.Errorf("expected order, got %v", c.err)
	}
	want := decimal.RequireFromString(total)
	if !c.result.Order.DiscountedTotal.Equal(want) {
		return fmt.Errorf("expected total %s, got %s", want, c.result.Order.DiscountedTotal)
	}
	return c.result.Order.Validate()
}

func (c *checkoutTestContext) checkoutIsRejectedWith(code string) error {
	var rej *domain.Rejection
	if !errors.As(c.err, &rej) {
		return fmt.Errorf("expected rejection %s, got %v", code, c.err)
	}
	if string(rej.Code) != code {
		return fmt.Errorf("expected rejection %s, got %s", code, rej.Code)
	}
	return nil
}

func (c *checkoutTestContext) theReportedDistanceIsAboutKm(km float64) error {
	var rej *domain.Rejection
	if !errors.As(c.err, &rej) {
		return fmt.Errorf("expected rejection, got %v", c.err)
	}
	if math.Abs(rej.DistanceKm-km) > 0.05 {
		return fmt.Errorf("expected distance about %.2f, got %.2f", km, rej.DistanceKm)
	}
	return nil
}

func (c *checkoutTestContext) theCartOfIsEmpty(user string) error {
	return c.theCartOfStillHoldsItems(user, 0)
}

func (c *checkoutTestContext) theCartOfStillHoldsItems(user string, n int) error {
	cart, err := c.cart.GetCart(c.ctx, user)
	if err != nil {
		return err
	}
	if cart.Count() != n {
		return fmt.Errorf("expected %d items in cart, got %d", n, cart.Count())
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the shop is open with a (\d+) km delivery radius$`, tc.theShopIsOpenWithADeliveryRadius)
	ctx.Step(`^the shop is closed$`, tc.theShopIsClosed)
	ctx.Step(`^the minimum order value is (\d+(?:\.\d+)?)$`, tc.theMinimumOrderValueIs)
	ctx.Step(`^the menu:$`, tc.theMenu)
	ctx.Step(`^a (\d+) percent discount on category "([^"]*)"$`, tc.aPercentDiscountOnCategory)
	ctx.Step(`^a flat (\d+) discount on category "([^"]*)"$`, tc.aFlatDiscountOnCategory)
	ctx.Step(`^a global discount of (\d+) percent$`, tc.aGlobalDiscountOfPercent)
	ctx.Step(`^"([^"]*)" has (\d+) x "([^"]*)" in the cart$`, tc.userHasItemsInTheCart)

	// When steps
	ctx.Step(`^"([^"]*)" checks out from (\d+(?:\.\d+)?) km away$`, tc.userChecksOutFromKmAway)
	ctx.Step(`^"([^"]*)" checks out without a location$`, tc.userChecksOutWithoutALocation)

	// Then steps
	ctx.Step(`^the order is placed with a total of (\d+\.\d{2})$`, tc.theOrderIsPlacedWithATotalOf)
	ctx.Step(`^checkout is rejected with "([^"]*)"$`, tc.checkoutIsRejectedWith)
	ctx.Step(`^the reported distance is about (\d+(?:\.\d+)?) km$`, tc.theReportedDistanceIsAboutKm)
	ctx.Step(`^the cart of "([^"]*)" is empty$`, tc.theCartOfIsEmpty)
	ctx.Step(`^the cart of "([^"]*)" still holds (\d+) items$`, tc.theCartOfStillHoldsItems)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
