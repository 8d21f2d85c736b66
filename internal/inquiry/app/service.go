package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwikikusuma/storefront/internal/inquiry/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("inquiry store unavailable")
)

type InquiryRepo interface {
	Create(ctx context.Context, q domain.Inquiry) (domain.Inquiry, error)
	// List returns inquiries of kind, or all of them when kind is empty.
	List(ctx context.Context, kind domain.Kind) ([]domain.Inquiry, error)
}

type Service struct {
	repo InquiryRepo
	loc  *time.Location
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo InquiryRepo, loc *time.Location, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc, log: logger.OrDiscard(log), now: time.Now}
}

func (s *Service) Submit(ctx context.Context, q domain.Inquiry) (domain.Inquiry, error) {
	q = q.Normalize()
	if q.Kind != domain.Wedding && q.Kind != domain.Party {
		return domain.Inquiry{}, fmt.Errorf("%w: unknown inquiry kind %q", ErrInvalidInput, q.Kind)
	}
	now := s.now()
	if err := q.Validate(now, s.loc); err != nil {
		return domain.Inquiry{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	q.CreatedAt = now.UTC()

	saved, err := s.repo.Create(ctx, q)
	if err != nil {
		s.log.Error("inquiry not stored", slog.String("kind", string(q.Kind)), slog.Any("err", err))
		return domain.Inquiry{}, err
	}
	s.log.Info("catering inquiry received",
		slog.String("inquiry_id", saved.ID),
		slog.String("kind", string(saved.Kind)),
		slog.Int("guests", saved.Guests))
	return saved, nil
}

// List returns inquiries newest first.
func (s *Service) List(ctx context.Context, kind string) ([]domain.Inquiry, error) {
	var k domain.Kind
	if kind != "" {
		parsed, err := domain.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		k = parsed
	}
	return s.repo.List(ctx, k)
}
