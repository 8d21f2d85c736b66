package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/robfig/cron"
)

// PendingAlerter polls today's orders and reports pending orders it has not
// seen before. The first run only records what is already there.
type PendingAlerter struct {
	svc    *Service
	notify func(context.Context, []domain.Order)
	log    *slog.Logger

	mu     sync.Mutex
	primed bool
	day    time.Time
	seen   map[string]struct{}
}

// NewPendingAlerter calls notify with each batch of new pending orders. A nil
// notify logs them.
func NewPendingAlerter(svc *Service, notify func(context.Context, []domain.Order), log *slog.Logger) *PendingAlerter {
	a := &PendingAlerter{
		svc:    svc,
		notify: notify,
		log:    logger.OrDiscard(log),
		seen:   make(map[string]struct{}),
	}
	if a.notify == nil {
		a.notify = a.logOrders
	}
	return a
}

// Schedule registers the alerter on c with a cron spec such as "@every 30s".
func (a *PendingAlerter) Schedule(c *cron.Cron, spec string, timeout time.Duration) error {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := a.Run(ctx); err != nil {
			a.log.Warn("pending order check failed", slog.Any("err", err))
		}
	})
}

// Run performs one check and returns the newly seen pending orders.
func (a *PendingAlerter) Run(ctx context.Context) ([]domain.Order, error) {
	orders, err := a.svc.ListByDay(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	start, _ := domain.DayBounds(a.svc.now(), a.svc.loc)
	if !start.Equal(a.day) {
		a.day = start
		a.seen = make(map[string]struct{})
	}
	var fresh []domain.Order
	for _, o := range orders {
		if o.Status != domain.StatusPending {
			continue
		}
		if _, ok := a.seen[o.ID]; ok {
			continue
		}
		a.seen[o.ID] = struct{}{}
		fresh = append(fresh, o)
	}
	primed := a.primed
	a.primed = true
	a.mu.Unlock()

	if !primed || len(fresh) == 0 {
		return nil, nil
	}
	a.notify(ctx, fresh)
	return fresh, nil
}

func (a *PendingAlerter) logOrders(_ context.Context, orders []domain.Order) {
	for _, o := range orders {
		a.log.Info("new pending order",
			slog.String("order_id", o.ID),
			slog.String("number", o.Number),
			slog.String("customer", o.Billing.Name),
			slog.String("total", o.DiscountedTotal.StringFixed(2)))
	}
}
