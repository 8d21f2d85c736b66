package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dwikikusuma/storefront/internal/geo"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/dwikikusuma/storefront/internal/shop/domain"
	"github.com/dwikikusuma/storefront/pkg/docstore"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	Collection   = "shop"
	DefaultDocID = "settings"
)

// SettingsRepo reads the first document of the shop collection. Field names
// follow the stored schema (IsOpen, CityLat, DeliveryRadiusKm, ...).
type SettingsRepo struct {
	store    docstore.Store
	defaults domain.Defaults
	log      *slog.Logger

	mu    sync.Mutex
	docID string
}

func NewSettingsRepo(store docstore.Store, defaults domain.Defaults, log *slog.Logger) *SettingsRepo {
	return &SettingsRepo{
		store:    store,
		defaults: defaults,
		log:      logger.OrDiscard(log),
		docID:    DefaultDocID,
	}
}

func (r *SettingsRepo) Load(ctx context.Context) (domain.Settings, error) {
	recs, err := r.store.Find(ctx, Collection, docstore.Query{SortBy: docstore.IDField, Limit: 1})
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load shop settings: %w", err)
	}
	if len(recs) == 0 {
		return domain.New(r.defaults), nil
	}

	r.mu.Lock()
	r.docID = recs[0].ID()
	r.mu.Unlock()
	return r.normalize(recs[0]), nil
}

func (r *SettingsRepo) Save(ctx context.Context, s domain.Settings) error {
	r.mu.Lock()
	id := r.docID
	r.mu.Unlock()

	if err := r.store.Put(ctx, Collection, id, toRecord(s)); err != nil {
		return fmt.Errorf("save shop settings: %w", err)
	}
	return nil
}

func (r *SettingsRepo) Watch(ctx context.Context, fn func(domain.Settings), closed func()) (func(), error) {
	return r.store.Watch(ctx, Collection, func(c docstore.Change) {
		if c.Kind == docstore.ChangeClosed {
			if closed != nil {
				closed()
			}
			return
		}
		r.mu.Lock()
		id := r.docID
		r.mu.Unlock()
		if c.ID != id {
			return
		}
		if c.Kind == docstore.ChangeDelete {
			r.log.Warn("shop settings document deleted, falling back to defaults")
			fn(domain.New(r.defaults))
			return
		}
		fn(r.normalize(c.Record))
	})
}

func toRecord(s domain.Settings) docstore.Record {
	cats := make(map[string]any, len(s.CategoryDiscounts))
	for k, d := range s.CategoryDiscounts {
		cats[k] = map[string]any{"type": string(d.Type), "value": d.Value.InexactFloat64()}
	}
	return docstore.Record{
		"IsOpen":            s.IsOpen,
		"City":              s.City,
		"CityLat":           s.Center.Lat,
		"CityLng":           s.Center.Lng,
		"DeliveryRadiusKm":  s.RadiusKm,
		"DiscountPercent":   s.DiscountPercent.InexactFloat64(),
		"DiscountFlat":      s.DiscountFlat.InexactFloat64(),
		"CategoryDiscounts": cats,
		"MinOrderValue":     s.MinOrderValue.InexactFloat64(),
		"UpdatedAt":         s.UpdatedAt,
	}
}

// normalize turns a stored record into Settings. A document without IsOpen
// counts as closed; other missing or malformed fields take the defaults.
func (r *SettingsRepo) normalize(rec docstore.Record) domain.Settings {
	s := domain.New(r.defaults)

	open, _ := rec.Bool("IsOpen")
	s.IsOpen = open
	s.City = rec.String("City")

	lat, okLat := rec.Float("CityLat")
	lng, okLng := rec.Float("CityLng")
	if pt := (geo.Point{Lat: lat, Lng: lng}); okLat && okLng && pt.Valid() {
		s.Center = pt
	} else if rec.Has("CityLat") || rec.Has("CityLng") {
		r.log.Warn("shop center malformed, using default", slog.Any("lat", rec["CityLat"]), slog.Any("lng", rec["CityLng"]))
	}

	if v, ok := rec.Float("DeliveryRadiusKm"); ok && v > 0 {
		s.RadiusKm = v
	} else if rec.Has("DeliveryRadiusKm") {
		r.log.Warn("delivery radius malformed, using default", slog.Any("raw", rec["DeliveryRadiusKm"]))
	}

	if v, ok := rec.Float("DiscountPercent"); ok {
		s.DiscountPercent = pricing.Discount{Type: pricing.Percent, Value: decimal.NewFromFloat(v)}.Clamp().Value
	}
	if v, ok := rec.Float("DiscountFlat"); ok {
		s.DiscountFlat = pricing.Discount{Type: pricing.Flat, Value: decimal.NewFromFloat(v)}.Clamp().Value
	}
	if v, ok := rec.Float("MinOrderValue"); ok && v >= 0 {
		s.MinOrderValue = decimal.NewFromFloat(v)
	}
	if t, ok := rec.Time("UpdatedAt"); ok {
		s.UpdatedAt = t
	}

	for k, raw := range rec.Map("CategoryDiscounts") {
		d, ok := categoryDiscount(raw)
		if !ok {
			r.log.Warn("category discount malformed, ignoring", slog.String("category", k), slog.Any("raw", raw))
			continue
		}
		s.CategoryDiscounts[pricing.Category(k)] = d
	}
	return s
}

// categoryDiscount accepts {type, value} objects and bare numbers, which are
// read as percentages.
func categoryDiscount(raw any) (pricing.Discount, bool) {
	holder := docstore.Record{"v": raw}
	if v, ok := holder.Float("v"); ok {
		return pricing.Discount{Type: pricing.Percent, Value: decimal.NewFromFloat(v)}.Clamp(), true
	}

	obj := holder.Map("v")
	if obj == nil {
		return pricing.Discount{}, false
	}
	v, ok := obj.Float("value")
	if !ok {
		return pricing.Discount{}, false
	}
	switch pricing.Kind(obj.String("type")) {
	case pricing.Flat:
		return pricing.Discount{Type: pricing.Flat, Value: decimal.NewFromFloat(v)}.Clamp(), true
	case pricing.Percent, "":
		return pricing.Discount{Type: pricing.Percent, Value: decimal.NewFromFloat(v)}.Clamp(), true
	default:
		return pricing.Discount{}, false
	}
}
