package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dwikikusuma/storefront/internal/geo"
	"github.com/dwikikusuma/storefront/internal/geocoding"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/dwikikusuma/storefront/internal/shop/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrStoreUnavailable       = errors.New("shop store unavailable")
	ErrLocationNotFound       = errors.New("location not found")
	ErrGeocodingUnavailable   = errors.New("geocoding unavailable")
	ErrGeocodingNotConfigured = errors.New("geocoding is not configured")
)

const minSearchLen = 2

// Service serves the shop settings from an in-memory copy kept current by a
// store subscription. Admin writes go to the store and update the copy.
// While no subscription is live, reads go through to the store.
type Service struct {
	repo     SettingsRepo
	geocoder Geocoder
	log      *slog.Logger
	now      func() time.Time
	backOff  func() backoff.BackOff

	mu       sync.RWMutex
	current  domain.Settings
	loaded   bool
	watching bool

	writeMu sync.Mutex

	lifeMu  sync.Mutex
	cancel  context.CancelFunc
	unwatch func()
	wg      sync.WaitGroup
}

func NewService(repo SettingsRepo, geocoder Geocoder, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		geocoder: geocoder,
		log:      logger.OrDiscard(log),
		now:      time.Now,
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 30 * time.Second
			return b
		},
	}
}

// Start loads the settings and subscribes to changes. A subscription that
// closes later is re-opened with backoff. Call Stop to release it.
func (s *Service) Start(ctx context.Context) error {
	if _, err := s.refresh(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.lifeMu.Lock()
	s.cancel = cancel
	s.lifeMu.Unlock()

	if err := s.subscribe(ctx); err != nil {
		s.log.Warn("shop settings watch unavailable, reading through to the store", slog.Any("err", err))
		return nil
	}
	s.setWatching(true)
	return nil
}

func (s *Service) Stop() {
	s.lifeMu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.lifeMu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.lifeMu.Lock()
	unwatch := s.unwatch
	s.unwatch = nil
	s.lifeMu.Unlock()
	if unwatch != nil {
		unwatch()
	}
	s.setWatching(false)
}

// Current returns the cached settings while the subscription is live and
// loads them from the store otherwise.
func (s *Service) Current(ctx context.Context) (domain.Settings, error) {
	s.mu.RLock()
	if s.loaded && s.watching {
		cur := s.current.Clone()
		s.mu.RUnlock()
		return cur, nil
	}
	s.mu.RUnlock()
	return s.refresh(ctx)
}

func (s *Service) subscribe(ctx context.Context) error {
	unwatch, err := s.repo.Watch(ctx, s.apply, func() { s.watchClosed(ctx) })
	if err != nil {
		return err
	}
	s.lifeMu.Lock()
	s.unwatch = unwatch
	s.lifeMu.Unlock()
	return nil
}

func (s *Service) apply(next domain.Settings) {
	s.set(next)
	s.log.Info("shop settings changed",
		slog.Bool("is_open", next.IsOpen),
		slog.Float64("radius_km", next.RadiusKm))
}

func (s *Service) watchClosed(ctx context.Context) {
	s.setWatching(false)

	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.cancel == nil {
		return
	}
	s.log.Warn("shop settings watch closed, reading through to the store until it resumes")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.resubscribe(ctx)
	}()
}

// resubscribe re-opens the watch, then reloads to pick up edits made while
// it was closed.
func (s *Service) resubscribe(ctx context.Context) {
	subscribed := false
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if !subscribed {
			if err := s.subscribe(ctx); err != nil {
				return struct{}{}, err
			}
			subscribed = true
		}
		_, err := s.refresh(ctx)
		return struct{}{}, err
	}, backoff.WithBackOff(s.backOff()))
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("shop settings watch not resumed", slog.Any("err", err))
		}
		return
	}
	s.setWatching(true)
	s.log.Info("shop settings watch resumed")
}

func (s *Service) setWatching(v bool) {
	s.mu.Lock()
	s.watching = v
	s.mu.Unlock()
}

func (s *Service) SetOpen(ctx context.Context, open bool) (domain.Settings, error) {
	return s.update(ctx, func(st *domain.Settings) error {
		st.IsOpen = open
		return nil
	})
}

func (s *Service) SetLocation(ctx context.Context, city string, center geo.Point, radiusKm float64) (domain.Settings, error) {
	city = strings.TrimSpace(city)
	if !center.Valid() || radiusKm <= 0 {
		return domain.Settings{}, ErrInvalidInput
	}
	return s.update(ctx, func(st *domain.Settings) error {
		st.City = city
		st.Center = center
		st.RadiusKm = radiusKm
		return nil
	})
}

// SetLocationByCity geocodes query and stores the best match as the zone
// center.
func (s *Service) SetLocationByCity(ctx context.Context, query string, radiusKm float64) (domain.Settings, error) {
	places, err := s.SearchCity(ctx, query)
	if err != nil {
		return domain.Settings{}, err
	}
	best := places[0]
	return s.SetLocation(ctx, best.City, best.Point, radiusKm)
}

func (s *Service) SearchCity(ctx context.Context, query string) ([]geocoding.Place, error) {
	if s.geocoder == nil {
		return nil, ErrGeocodingNotConfigured
	}
	if len(strings.TrimSpace(query)) < minSearchLen {
		return nil, ErrInvalidInput
	}
	places, err := s.geocoder.Search(ctx, query, 5)
	if err != nil {
		return nil, s.geocodeErr(err)
	}
	return places, nil
}

// DetectCity names the place at pt, e.g. the admin's device position.
func (s *Service) DetectCity(ctx context.Context, pt geo.Point) (geocoding.Place, error) {
	if s.geocoder == nil {
		return geocoding.Place{}, ErrGeocodingNotConfigured
	}
	if !pt.Valid() {
		return geocoding.Place{}, ErrInvalidInput
	}
	p, err := s.geocoder.Reverse(ctx, pt)
	if err != nil {
		return geocoding.Place{}, s.geocodeErr(err)
	}
	return p, nil
}

func (s *Service) SetDiscount(ctx context.Context, percent, flat decimal.Decimal) (domain.Settings, error) {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) || flat.IsNegative() {
		return domain.Settings{}, ErrInvalidInput
	}
	return s.update(ctx, func(st *domain.Settings) error {
		st.DiscountPercent = percent
		st.DiscountFlat = flat
		return nil
	})
}

func (s *Service) SetCategoryDiscount(ctx context.Context, category string, d pricing.Discount) (domain.Settings, error) {
	key := pricing.Category(category)
	if key == "" || (d.Type != pricing.Percent && d.Type != pricing.Flat) {
		return domain.Settings{}, ErrInvalidInput
	}
	if !d.Clamp().Value.Equal(d.Value) {
		return domain.Settings{}, ErrInvalidInput
	}
	return s.update(ctx, func(st *domain.Settings) error {
		for k := range st.CategoryDiscounts {
			if pricing.Category(k) == key {
				delete(st.CategoryDiscounts, k)
			}
		}
		st.CategoryDiscounts[key] = d
		return nil
	})
}

// RemoveCategoryDiscount is a no-op for categories without an override.
func (s *Service) RemoveCategoryDiscount(ctx context.Context, category string) (domain.Settings, error) {
	key := pricing.Category(category)
	if key == "" {
		return domain.Settings{}, ErrInvalidInput
	}
	return s.update(ctx, func(st *domain.Settings) error {
		for k := range st.CategoryDiscounts {
			if pricing.Category(k) == key {
				delete(st.CategoryDiscounts, k)
			}
		}
		return nil
	})
}

func (s *Service) SetMinOrderValue(ctx context.Context, v decimal.Decimal) (domain.Settings, error) {
	if v.IsNegative() {
		return domain.Settings{}, ErrInvalidInput
	}
	return s.update(ctx, func(st *domain.Settings) error {
		st.MinOrderValue = v
		return nil
	})
}

func (s *Service) update(ctx context.Context, fn func(*domain.Settings) error) (domain.Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur, err := s.Current(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := fn(&cur); err != nil {
		return domain.Settings{}, err
	}
	cur.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, cur); err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.set(cur)
	return cur.Clone(), nil
}

func (s *Service) refresh(ctx context.Context) (domain.Settings, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.set(st)
	return st.Clone(), nil
}

func (s *Service) set(st domain.Settings) {
	s.mu.Lock()
	s.current = st.Clone()
	s.loaded = true
	s.mu.Unlock()
}

func (s *Service) geocodeErr(err error) error {
	if errors.Is(err, geocoding.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrLocationNotFound, err)
	}
	s.log.Warn("geocoding failed", slog.Any("err", err))
	return fmt.Errorf("%w: %w", ErrGeocodingUnavailable, err)
}
