package app

import (
	"context"
	"errors"
	"time"

	"github.com/dwikikusuma/storefront/internal/identity/domain"
)

// ErrSessionNotFound is returned by SessionStore for unknown or expired
// tokens.
var ErrSessionNotFound = errors.New("session not found")

// Verifier checks a credential issued by the identity provider and returns
// the claims it vouches for. A credential that fails verification reports
// ErrInvalidCredential.
type Verifier interface {
	Verify(ctx context.Context, credential string) (domain.Identity, error)
}

type VerifierFunc func(ctx context.Context, credential string) (domain.Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, credential string) (domain.Identity, error) {
	return f(ctx, credential)
}

type UserRepo interface {
	// Upsert creates the user on first sign-in and refreshes the profile
	// fields afterwards. CreatedAt of an existing user is kept.
	Upsert(ctx context.Context, u domain.User) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
}

type SessionStore interface {
	Save(ctx context.Context, s domain.Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
}
