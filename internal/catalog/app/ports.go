package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type MenuRepo interface {
	Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	Get(ctx context.Context, id string) (domain.MenuItem, error)
	Update(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	Delete(ctx context.Context, id string) error
	// List returns every item, or only those whose category matches
	// case-insensitively when category is non-empty.
	List(ctx context.Context, category string) ([]domain.MenuItem, error)
}

// PhotoUploader stores an image and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}
