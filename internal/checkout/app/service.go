package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/geo"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrItemNotFound        = errors.New("menu item not found")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrStoreUnavailable    = errors.New("checkout dependency unavailable")
)

type Deps struct {
	Cart    CartReader
	Catalog CatalogReader
	Terms   TermsReader
	Orders  OrderWriter
	Guard   Guard
}

type Options struct {
	LocationTimeout time.Duration
	Currency        string
	MaxConcurrent   int
}

type Service struct {
	Cart    CartReader
	Catalog CatalogReader
	Terms   TermsReader
	Orders  OrderWriter
	Guard   Guard

	locationTimeout time.Duration
	currency        string
	maxConcurrent   int
	log             *slog.Logger
	tracer          trace.Tracer
}

func NewService(deps Deps, opts Options, log *slog.Logger) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if opts.LocationTimeout <= 0 {
		opts.LocationTimeout = 10 * time.Second
	}

	return &Service{
		Cart:            deps.Cart,
		Catalog:         deps.Catalog,
		Terms:           deps.Terms,
		Orders:          deps.Orders,
		Guard:           deps.Guard,
		locationTimeout: opts.LocationTimeout,
		currency:        opts.Currency,
		maxConcurrent:   opts.MaxConcurrent,
		log:             logger.OrDiscard(log),
		tracer:          otel.Tracer("github.com/dwikikusuma/storefront/internal/checkout"),
	}
}

type PlaceOrderRequest struct {
	UserID        string
	CustomerName  string
	CustomerEmail string
	Billing       orderdomain.Billing
	Locator       Locator
}

// Result is the outcome of an accepted PlaceOrder call. Skipped is set when
// another checkout for the same cart was already in flight.
type Result struct {
	Order   orderdomain.Order
	Skipped bool
}

// Quote prices the user's cart with current menu prices and shop settings.
// An empty cart yields an empty quote.
func (s *Service) Quote(ctx context.Context, userID string) (domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Quote", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return domain.Quote{}, domain.Reject(domain.CodeSignInRequired, "please sign in first")
	}
	lines, err := s.loadCart(ctx, userID)
	if err != nil {
		return domain.Quote{}, s.fail(span, err)
	}
	terms, err := s.loadTerms(ctx)
	if err != nil {
		return domain.Quote{}, s.fail(span, err)
	}
	q, err := s.price(ctx, lines, terms)
	if err != nil {
		return domain.Quote{}, s.fail(span, err)
	}
	span.SetAttributes(attribute.Int("cart.lines", len(q.Lines)))
	return q, nil
}

// PlaceOrder runs the checkout preconditions in order and stores the order
// when all pass. Precondition failures are returned as *domain.Rejection and
// leave the cart untouched.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.PlaceOrder", trace.WithAttributes(attribute.String("user.id", req.UserID)))
	defer span.End()

	res, err := s.placeOrder(ctx, req)
	if err != nil {
		var rej *domain.Rejection
		if errors.As(err, &rej) {
			span.SetAttributes(attribute.String("checkout.rejection", string(rej.Code)))
			s.log.Info("checkout rejected", slog.String("user_id", req.UserID), slog.String("code", string(rej.Code)))
			return Result{}, err
		}
		return Result{}, s.fail(span, err)
	}
	span.SetAttributes(attribute.Bool("checkout.skipped", res.Skipped))
	return res, nil
}

func (s *Service) placeOrder(ctx context.Context, req PlaceOrderRequest) (Result, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Result{}, domain.Reject(domain.CodeSignInRequired, "please sign in first")
	}
	req.Billing = orderdomain.Billing{
		Name:    strings.TrimSpace(req.Billing.Name),
		Mobile:  strings.TrimSpace(req.Billing.Mobile),
		Address: strings.TrimSpace(req.Billing.Address),
	}
	if req.Billing.Name == "" || req.Billing.Mobile == "" || req.Billing.Address == "" {
		return Result{}, domain.Reject(domain.CodeMissingBilling, "please enter billing name, mobile number and address")
	}

	release, ok, err := s.Guard.Acquire(ctx, req.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: acquire checkout guard: %w", ErrStoreUnavailable, err)
	}
	if !ok {
		s.log.Info("checkout already in flight", slog.String("user_id", req.UserID))
		return Result{Skipped: true}, nil
	}
	defer release()

	cart, err := s.loadCart(ctx, req.UserID)
	if err != nil {
		return Result{}, err
	}
	if len(cart) == 0 {
		return Result{}, domain.Reject(domain.CodeEmptyCart, "cart is empty")
	}

	terms, err := s.loadTerms(ctx)
	if err != nil {
		return Result{}, err
	}
	if !terms.IsOpen {
		return Result{}, domain.Reject(domain.CodeShopClosed, "the shop is closed right now")
	}

	q, err := s.price(ctx, cart, terms)
	if err != nil {
		return Result{}, err
	}
	if !q.MeetsMinimum() {
		return Result{}, domain.BelowMinimum(q.DiscountedTotal, q.MinOrderValue, s.currency)
	}

	pos, err := s.locate(ctx, req.Locator)
	if err != nil {
		s.log.Info("location unavailable", slog.String("user_id", req.UserID), slog.Any("err", err))
		return Result{}, domain.Reject(domain.CodeLocationUnavailable, "could not verify your location")
	}
	dist, inside := terms.Zone.Contains(pos)
	if !inside {
		return Result{}, domain.OutOfRange(dist, terms.Zone.RadiusKm)
	}

	order := orderdomain.Order{
		UserID:          req.UserID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		Billing:         req.Billing,
		Lines:           q.Lines,
		Policy:          q.Policy,
		Subtotal:        q.Subtotal,
		DiscountedTotal: q.DiscountedTotal,
		Location:        pos,
		DistanceKm:      dist,
	}
	if err := order.Validate(); err != nil {
		return Result{}, err
	}

	created, err := s.Orders.CreateOrder(ctx, order)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if err := s.Cart.ClearCart(ctx, req.UserID); err != nil {
		s.log.Warn("order placed but cart not cleared",
			slog.String("order_id", created.ID),
			slog.String("user_id", req.UserID),
			slog.Any("err", err))
	}

	s.log.Info("order placed",
		slog.String("order_id", created.ID),
		slog.String("number", created.Number),
		slog.Float64("distance_km", dist))
	return Result{Order: created}, nil
}

func (s *Service) loadCart(ctx context.Context, userID string) ([]CartLine, error) {
	lines, err := s.Cart.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load cart: %w", ErrStoreUnavailable, err)
	}
	return lines, nil
}

func (s *Service) loadTerms(ctx context.Context) (Terms, error) {
	t, err := s.Terms.Terms(ctx)
	if err != nil {
		return Terms{}, fmt.Errorf("%w: load shop settings: %w", ErrStoreUnavailable, err)
	}
	return t, nil
}

// price refreshes every line from the menu concurrently and snapshots it
// under the shop's discount policy.
func (s *Service) price(ctx context.Context, items []CartLine, terms Terms) (domain.Quote, error) {
	lines := make([]orderdomain.Line, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 || it.Quantity > orderdomain.MaxLineQuantity {
				return fmt.Errorf("%w: %s quantity %d outside 1..%d", ErrInvalidInput, it.Name, it.Quantity, orderdomain.MaxLineQuantity)
			}

			item, err := s.Catalog.GetItem(gctx, it.ItemID)
			if errors.Is(err, ErrItemNotFound) {
				return domain.Reject(domain.CodeItemUnavailable, fmt.Sprintf("%s is no longer on the menu", it.Name))
			}
			if err != nil {
				return fmt.Errorf("%w: get menu item %s: %w", ErrStoreUnavailable, it.ItemID, err)
			}

			lines[idx] = orderdomain.PriceLine(item.ID, item.Name, item.Category, item.Price, it.Quantity, terms.Policy)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	sub, disc := orderdomain.Totals(lines)
	return domain.Quote{
		Lines:           lines,
		Subtotal:        sub,
		DiscountedTotal: disc,
		MinOrderValue:   terms.MinOrderValue,
		ShopOpen:        terms.IsOpen,
		Policy:          terms.Policy,
	}, nil
}

// locate bounds the locator by the location timeout even if it ignores ctx.
func (s *Service) locate(ctx context.Context, l Locator) (geo.Point, error) {
	if l == nil {
		return geo.Point{}, ErrLocationUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.locationTimeout)
	defer cancel()

	type result struct {
		p   geo.Point
		err error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := l.Locate(ctx)
		ch <- result{p, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return geo.Point{}, r.err
		}
		if !r.p.Valid() {
			return geo.Point{}, ErrLocationUnavailable
		}
		return r.p, nil
	case <-ctx.Done():
		return geo.Point{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, ctx.Err())
	}
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	return err
}
