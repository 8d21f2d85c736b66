package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/identity/app"
	"github.com/dwikikusuma/storefront/internal/identity/domain"
	"github.com/dwikikusuma/storefront/pkg/docstore"
)

const Collection = "users"

// UserRepo stores one record per provider subject under users/{subject}.
type UserRepo struct {
	store docstore.Store
}

func NewUserRepo(store docstore.Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) Upsert(ctx context.Context, u domain.User) (domain.User, error) {
	existing, err := r.store.Get(ctx, Collection, u.ID)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		if err := r.store.Put(ctx, Collection, u.ID, toRecord(u)); err != nil {
			return domain.User{}, fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
		}
		return u, nil
	case err != nil:
		return domain.User{}, fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
	}

	prev := fromRecord(existing)
	if !prev.CreatedAt.IsZero() {
		u.CreatedAt = prev.CreatedAt
	}
	// keep what the provider no longer sends
	if u.Name == "" {
		u.Name = prev.Name
	}
	if u.PhotoURL == "" {
		u.PhotoURL = prev.PhotoURL
	}
	if err := r.store.Update(ctx, Collection, u.ID, toRecord(u)); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
	}
	return u, nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (domain.User, error) {
	rec, err := r.store.Get(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.User{}, app.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
	}
	return fromRecord(rec), nil
}

func toRecord(u domain.User) docstore.Record {
	return docstore.Record{
		"name":         u.Name,
		"email":        u.Email,
		"photoURL":     u.PhotoURL,
		"createdAt":    u.CreatedAt,
		"lastSignInAt": u.LastSignInAt,
	}
}

func fromRecord(rec docstore.Record) domain.User {
	u := domain.User{
		ID:       rec.ID(),
		Name:     strings.TrimSpace(rec.String("name")),
		Email:    strings.TrimSpace(rec.String("email")),
		PhotoURL: rec.String("photoURL"),
	}
	if t, ok := rec.Time("createdAt"); ok {
		u.CreatedAt = t
	}
	if t, ok := rec.Time("lastSignInAt"); ok {
		u.LastSignInAt = t
	}
	return u
}
