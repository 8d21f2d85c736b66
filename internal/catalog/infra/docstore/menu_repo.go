package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/docstore"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

const Collection = "menuItems"

// MenuRepo maps menuItems records to domain.MenuItem. Older records may carry
// "name" instead of "itemName" or "rate" instead of "price"; those are read
// once here and logged.
type MenuRepo struct {
	store docstore.Store
	log   *slog.Logger
}

func NewMenuRepo(store docstore.Store, log *slog.Logger) *MenuRepo {
	return &MenuRepo{store: store, log: logger.OrDiscard(log)}
}

func (r *MenuRepo) Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	id, err := r.store.Insert(ctx, Collection, toRecord(item))
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
	}
	item.ID = id
	return item, nil
}

func (r *MenuRepo) Get(ctx context.Context, id string) (domain.MenuItem, error) {
	rec, err := r.store.Get(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.MenuItem{}, app.ErrNotFound
	}
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
	}
	return r.fromRecord(rec), nil
}

func (r *MenuRepo) Update(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	err := r.store.Update(ctx, Collection, item.ID, toRecord(item))
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.MenuItem{}, app.ErrNotFound
	}
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
	}
	return item, nil
}

func (r *MenuRepo) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return app.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *MenuRepo) List(ctx context.Context, category string) ([]domain.MenuItem, error) {
	recs, err := r.store.Find(ctx, Collection, docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
	}

	out := make([]domain.MenuItem, 0, len(recs))
	for _, rec := range recs {
		item := r.fromRecord(rec)
		if category != "" && !strings.EqualFold(item.Category, category) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func toRecord(item domain.MenuItem) docstore.Record {
	return docstore.Record{
		"itemName":    item.Name,
		"price":       item.Price.InexactFloat64(),
		"category":    item.Category,
		"photoUrl":    item.PhotoURL,
		"description": item.Description,
		"createdAt":   item.CreatedAt,
		"updatedAt":   item.UpdatedAt,
	}
}

func (r *MenuRepo) fromRecord(rec docstore.Record) domain.MenuItem {
	id := rec.ID()
	item := domain.MenuItem{
		ID:          id,
		Name:        strings.TrimSpace(rec.String("itemName")),
		Category:    strings.TrimSpace(rec.String("category")),
		PhotoURL:    rec.String("photoUrl"),
		Description: rec.String("description"),
	}

	if item.Name == "" && rec.Has("name") {
		item.Name = strings.TrimSpace(rec.String("name"))
		r.log.Warn("menu item uses legacy name field", slog.String("item_id", id))
	}
	if item.PhotoURL == "" && rec.Has("imageUrl") {
		item.PhotoURL = rec.String("imageUrl")
	}

	item.Price = r.price(id, rec)

	if t, ok := rec.Time("createdAt"); ok {
		item.CreatedAt = t
	}
	if t, ok := rec.Time("updatedAt"); ok {
		item.UpdatedAt = t
	} else {
		item.UpdatedAt = item.CreatedAt
	}
	return item
}

func (r *MenuRepo) price(id string, rec docstore.Record) decimal.Decimal {
	field := "price"
	f, ok := rec.Float(field)
	if !ok && rec.Has("rate") {
		field = "rate"
		f, ok = rec.Float(field)
		if ok {
			r.log.Warn("menu item uses legacy rate field", slog.String("item_id", id))
		}
	}
	if !ok {
		r.log.Error("menu item has no usable price, defaulting to 0",
			slog.String("item_id", id), slog.Any("raw", rec[field]))
		return decimal.Zero
	}
	if f < 0 {
		r.log.Error("menu item has negative price, defaulting to 0",
			slog.String("item_id", id), slog.Float64("price", f))
		return decimal.Zero
	}
	return decimal.NewFromFloat(f).Round(2)
}
