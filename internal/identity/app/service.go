package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/identity/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrNotSignedIn       = errors.New("not signed in")
	ErrNotFound          = errors.New("user not found")
	ErrStoreUnavailable  = errors.New("identity store unavailable")
)

type Service struct {
	verifier Verifier
	users    UserRepo
	sessions SessionStore
	ttl      time.Duration
	log      *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	nextID int
	subs   map[int]func(domain.Event)
}

func NewService(verifier Verifier, users UserRepo, sessions SessionStore, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		verifier: verifier,
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		log:      logger.OrDiscard(log),
		now:      time.Now,
		subs:     make(map[int]func(domain.Event)),
	}
}

// SignIn verifies a provider credential, records the identity it carries in
// the users collection and opens a session for it. Profile fields come only
// from the verified claims.
func (s *Service) SignIn(ctx context.Context, credential string) (domain.Session, domain.User, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.Session{}, domain.User{}, fmt.Errorf("%w: credential is required", ErrInvalidInput)
	}

	id, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		s.log.Warn("sign-in credential rejected", slog.Any("err", err))
		if errors.Is(err, ErrInvalidCredential) {
			return domain.Session{}, domain.User{}, err
		}
		return domain.Session{}, domain.User{}, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	id = id.Normalize()
	if id.Subject == "" {
		return domain.Session{}, domain.User{}, fmt.Errorf("%w: credential has no subject", ErrInvalidCredential)
	}

	now := s.now().UTC()
	user, err := s.users.Upsert(ctx, domain.User{
		ID:           id.Subject,
		Name:         id.Name,
		Email:        id.Email,
		PhotoURL:     id.PhotoURL,
		CreatedAt:    now,
		LastSignInAt: now,
	})
	if err != nil {
		return domain.Session{}, domain.User{}, s.storeErr(err)
	}

	sess := domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		sess.ExpiresAt = now.Add(s.ttl)
	}
	if err := s.sessions.Save(ctx, sess, s.ttl); err != nil {
		return domain.Session{}, domain.User{}, s.storeErr(err)
	}

	s.log.Info("user signed in", slog.String("user_id", user.ID))
	s.publish(domain.Event{Kind: domain.SignedIn, User: user})
	return sess, user, nil
}

// Resolve maps a session token to its user. Unknown, expired and blank
// tokens all report ErrNotSignedIn.
func (s *Service) Resolve(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrNotSignedIn
	}

	sess, err := s.sessions.Get(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return domain.User{}, ErrNotSignedIn
	}
	if err != nil {
		return domain.User{}, s.storeErr(err)
	}
	if sess.Expired(s.now()) {
		return domain.User{}, ErrNotSignedIn
	}

	user, err := s.users.Get(ctx, sess.UserID)
	if errors.Is(err, ErrNotFound) {
		// user record removed behind an open session
		return domain.User{}, ErrNotSignedIn
	}
	if err != nil {
		return domain.User{}, s.storeErr(err)
	}
	return user, nil
}

// SignOut is idempotent.
func (s *Service) SignOut(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	sess, err := s.sessions.Get(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return s.storeErr(err)
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return s.storeErr(err)
	}

	user, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		user = domain.User{ID: sess.UserID}
	}
	s.log.Info("user signed out", slog.String("user_id", sess.UserID))
	s.publish(domain.Event{Kind: domain.SignedOut, User: user})
	return nil
}

// Subscribe registers fn for sign-in and sign-out events. fn runs on the
// caller's goroutine and must not block. The returned func unsubscribes and
// is safe to call more than once.
func (s *Service) Subscribe(fn func(domain.Event)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) publish(ev domain.Event) {
	s.mu.Lock()
	fns := make([]func(domain.Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Service) storeErr(err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
