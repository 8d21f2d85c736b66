package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("order is no longer pending")
	ErrStoreUnavailable  = errors.New("order store unavailable")
)

type Service struct {
	repo     OrderRepo
	loc      *time.Location
	currency string
	log      *slog.Logger
	now      func() time.Time
}

func NewService(repo OrderRepo, loc *time.Location, currency string, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:     repo,
		loc:      loc,
		currency: currency,
		log:      logger.OrDiscard(log),
		now:      time.Now,
	}
}

// Location is the timezone calendar days are evaluated in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// CreateOrder assigns the order number and initial status, checks the
// totals, and stores the order.
func (s *Service) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if strings.TrimSpace(o.UserID) == "" {
		return domain.Order{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := o.Validate(); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	o.Number = domain.NewNumber(now)
	o.Status = domain.StatusPending
	o.CreatedAt = now
	o.UpdatedAt = now

	created, err := s.repo.CreateOrderTx(ctx, o)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.log.Info("order created",
		slog.String("order_id", created.ID),
		slog.String("number", created.Number),
		slog.String("total", created.DiscountedTotal.StringFixed(2)))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, ErrInvalidInput
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, s.storeErr(err)
	}
	return o, nil
}

// ListForUser projects the user's orders onto today and the requested day.
func (s *Service) ListForUser(ctx context.Context, userID string, day time.Time) (domain.Projection, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Projection{}, ErrInvalidInput
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return domain.Projection{}, s.storeErr(err)
	}
	if day.IsZero() {
		day = s.now()
	}
	return domain.Project(orders, s.now(), day, s.loc), nil
}

// ListByDay returns every order placed on day, newest first.
func (s *Service) ListByDay(ctx context.Context, day time.Time) ([]domain.Order, error) {
	if day.IsZero() {
		day = s.now()
	}
	from, to := domain.DayBounds(day, s.loc)
	orders, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return orders, nil
}

func (s *Service) Accept(ctx context.Context, id string) (domain.Order, error) {
	return s.transition(ctx, id, domain.StatusAccepted)
}

func (s *Service) Reject(ctx context.Context, id string) (domain.Order, error) {
	return s.transition(ctx, id, domain.StatusRejected)
}

func (s *Service) transition(ctx context.Context, id string, to domain.Status) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, ErrInvalidInput
	}
	o, err := s.repo.UpdateStatus(ctx, id, domain.StatusPending, to)
	if errors.Is(err, ErrStatusConflict) {
		return domain.Order{}, ErrInvalidTransition
	}
	if err != nil {
		return domain.Order{}, s.storeErr(err)
	}
	s.log.Info("order status changed", slog.String("order_id", id), slog.String("status", string(to)))
	return o, nil
}

func (s *Service) Receipt(ctx context.Context, id string) (string, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := domain.WriteReceipt(&buf, o, s.currency, s.loc); err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return buf.String(), nil
}

var csvHeader = []string{
	"number", "created_at", "status", "customer", "email",
	"billing_name", "billing_mobile", "address", "items", "subtotal", "total",
}

// ExportCSV writes the orders of day, one row per order.
func (s *Service) ExportCSV(ctx context.Context, day time.Time, w io.Writer) error {
	orders, err := s.ListByDay(ctx, day)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, o := range orders {
		items := make([]string, 0, len(o.Lines))
		for _, l := range o.Lines {
			items = append(items, l.Name+" x"+strconv.Itoa(l.Quantity))
		}
		row := []string{
			o.Number,
			o.CreatedAt.In(s.loc).Format(time.RFC3339),
			string(o.Status),
			o.CustomerName,
			o.CustomerEmail,
			o.Billing.Name,
			o.Billing.Mobile,
			o.Billing.Address,
			strings.Join(items, "; "),
			o.Subtotal.StringFixed(2),
			o.DiscountedTotal.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Service) storeErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
