package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/identity/app"
	"github.com/dwikikusuma/storefront/internal/identity/domain"
	"github.com/dwikikusuma/storefront/internal/identity/infra/devauth"
	userstore "github.com/dwikikusuma/storefront/internal/identity/infra/docstore"
	"github.com/dwikikusuma/storefront/internal/identity/infra/memory"
	"github.com/dwikikusuma/storefront/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenSessions struct{}

func (brokenSessions) Save(context.Context, domain.Session, time.Duration) error {
	return errors.New("redis down")
}

func (brokenSessions) Get(context.Context, string) (domain.Session, error) {
	return domain.Session{}, errors.New("redis down")
}

func (brokenSessions) Delete(context.Context, string) error { return errors.New("redis down") }

// claimsVerifier trusts only the credentials it was built with.
func claimsVerifier(ids map[string]domain.Identity) app.Verifier {
	return app.VerifierFunc(func(_ context.Context, credential string) (domain.Identity, error) {
		id, ok := ids[credential]
		if !ok {
			return domain.Identity{}, app.ErrInvalidCredential
		}
		return id, nil
	})
}

func newService(sessions app.SessionStore) (*app.Service, *docstore.Memory) {
	store := docstore.NewMemory()
	return app.NewService(devauth.NewVerifier(), userstore.NewUserRepo(store), sessions, time.Hour, nil), store
}

func TestSignInResolveSignOut(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	svc := app.NewService(claimsVerifier(map[string]domain.Identity{
		"asha-token": {Subject: "g-1", Name: "Asha", Email: "Asha@Example.com"},
	}), userstore.NewUserRepo(store), memory.NewSessionStore(), time.Hour, nil)

	var events []domain.Event
	cancel := svc.Subscribe(func(ev domain.Event) { events = append(events, ev) })
	defer cancel()

	sess, user, err := svc.SignIn(ctx, "asha-token")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "g-1", sess.UserID)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.False(t, sess.ExpiresAt.IsZero())

	rec, err := store.Get(ctx, userstore.Collection, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", rec.String("name"))

	got, err := svc.Resolve(ctx, " "+sess.Token+" ")
	require.NoError(t, err)
	assert.Equal(t, "g-1", got.ID)

	require.NoError(t, svc.SignOut(ctx, sess.Token))
	_, err = svc.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, app.ErrNotSignedIn)

	require.Len(t, events, 2)
	assert.Equal(t, domain.SignedIn, events[0].Kind)
	assert.Equal(t, domain.SignedOut, events[1].Kind)
	assert.Equal(t, "Asha", events[1].User.Name)
}

func TestSignInRequiresCredential(t *testing.T) {
	svc, _ := newService(memory.NewSessionStore())

	_, _, err := svc.SignIn(context.Background(), "  ")
	assert.ErrorIs(t, err, app.ErrInvalidInput)
}

func TestSignInRejectsUnverifiedSubject(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	svc := app.NewService(claimsVerifier(map[string]domain.Identity{
		"victim-token": {Subject: "victim-uid", Name: "Victim", Email: "victim@example.com"},
		"blank-sub":    {Subject: "  ", Email: "a@x.in"},
	}), userstore.NewUserRepo(store), memory.NewSessionStore(), time.Hour, nil)

	_, _, err := svc.SignIn(ctx, "victim-token")
	require.NoError(t, err)

	var events int
	defer svc.Subscribe(func(domain.Event) { events++ })()

	for _, forged := range []string{"victim-uid", `{"subject":"victim-uid","name":"Attacker"}`, "blank-sub"} {
		sess, _, err := svc.SignIn(ctx, forged)
		assert.ErrorIs(t, err, app.ErrInvalidCredential, forged)
		assert.Empty(t, sess.Token)
	}
	assert.Zero(t, events)

	rec, err := store.Get(ctx, userstore.Collection, "victim-uid")
	require.NoError(t, err)
	assert.Equal(t, "Victim", rec.String("name"))
	assert.Equal(t, "victim@example.com", rec.String("email"))
}

func TestVerifierFailureIsInvalidCredential(t *testing.T) {
	store := docstore.NewMemory()
	svc := app.NewService(app.VerifierFunc(func(context.Context, string) (domain.Identity, error) {
		return domain.Identity{}, errors.New("token is malformed")
	}), userstore.NewUserRepo(store), memory.NewSessionStore(), time.Hour, nil)

	_, _, err := svc.SignIn(context.Background(), "tok")
	assert.ErrorIs(t, err, app.ErrInvalidCredential)
}

func TestResolveUnknownTokens(t *testing.T) {
	svc, _ := newService(memory.NewSessionStore())

	for _, tok := range []string{"", "  ", "nope"} {
		_, err := svc.Resolve(context.Background(), tok)
		assert.ErrorIs(t, err, app.ErrNotSignedIn, "token %q", tok)
	}
}

func TestSignOutIsIdempotent(t *testing.T) {
	svc, _ := newService(memory.NewSessionStore())
	assert.NoError(t, svc.SignOut(context.Background(), "never-issued"))
	assert.NoError(t, svc.SignOut(context.Background(), ""))
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(memory.NewSessionStore())

	calls := 0
	cancel := svc.Subscribe(func(domain.Event) { calls++ })
	_, _, err := svc.SignIn(ctx, devauth.Credential("g-1", ""))
	require.NoError(t, err)

	cancel()
	cancel()
	_, _, err = svc.SignIn(ctx, devauth.Credential("g-2", ""))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestSessionStoreFailure(t *testing.T) {
	svc, _ := newService(brokenSessions{})

	_, _, err := svc.SignIn(context.Background(), devauth.Credential("g-1", ""))
	assert.ErrorIs(t, err, app.ErrStoreUnavailable)

	_, err = svc.Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, app.ErrStoreUnavailable)
}
