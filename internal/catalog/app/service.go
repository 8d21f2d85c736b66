package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrStoreUnavailable    = errors.New("menu store unavailable")
	ErrUploadNotConfigured = errors.New("photo upload is not configured")
	ErrUploadFailed        = errors.New("photo upload failed")
)

const maxPhotoBytes = 10 << 20

type Service struct {
	repo     MenuRepo
	uploader PhotoUploader
	log      *slog.Logger
	now      func() time.Time
}

// NewService accepts a nil uploader; AttachPhoto then fails with
// ErrUploadNotConfigured.
func NewService(repo MenuRepo, uploader PhotoUploader, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		uploader: uploader,
		log:      logger.OrDiscard(log),
		now:      time.Now,
	}
}

func (s *Service) CreateItem(ctx context.Context, in domain.ItemInput) (domain.MenuItem, error) {
	in, err := clean(in)
	if err != nil {
		return domain.MenuItem{}, err
	}

	now := s.now().UTC()
	item, err := s.repo.Create(ctx, domain.MenuItem{
		Name:        in.Name,
		Price:       in.Price,
		Category:    in.Category,
		PhotoURL:    in.PhotoURL,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.MenuItem{}, err
	}

	s.log.Info("menu item created", slog.String("item_id", item.ID), slog.String("name", item.Name))
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, id string, in domain.ItemInput) (domain.MenuItem, error) {
	current, err := s.GetItem(ctx, id)
	if err != nil {
		return domain.MenuItem{}, err
	}
	in, err = clean(in)
	if err != nil {
		return domain.MenuItem{}, err
	}

	current.Name = in.Name
	current.Price = in.Price
	current.Category = in.Category
	current.Description = in.Description
	if in.PhotoURL != "" {
		current.PhotoURL = in.PhotoURL
	}
	current.UpdatedAt = s.now().UTC()

	return s.repo.Update(ctx, current)
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("menu item deleted", slog.String("item_id", id))
	return nil
}

func (s *Service) GetItem(ctx context.Context, id string) (domain.MenuItem, error) {
	if strings.TrimSpace(id) == "" {
		return domain.MenuItem{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

// ListItems returns the menu sorted by name.
func (s *Service) ListItems(ctx context.Context, category string) ([]domain.MenuItem, error) {
	items, err := s.repo.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items, nil
}

// Categories returns the distinct categories on the menu in first-seen order
// of the name-sorted list.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	items, err := s.ListItems(ctx, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, it := range items {
		key := strings.ToLower(it.Category)
		if it.Category == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it.Category)
	}
	return out, nil
}

// AttachPhoto uploads the image and stores its URL on the item.
func (s *Service) AttachPhoto(ctx context.Context, id, filename string, data []byte) (domain.MenuItem, error) {
	if s.uploader == nil {
		return domain.MenuItem{}, ErrUploadNotConfigured
	}
	if len(data) == 0 || len(data) > maxPhotoBytes || strings.TrimSpace(filename) == "" {
		return domain.MenuItem{}, ErrInvalidInput
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return domain.MenuItem{}, err
	}

	url, err := s.uploader.Upload(ctx, filename, data)
	if err != nil {
		s.log.Warn("photo upload failed", slog.String("item_id", id), slog.Any("err", err))
		return domain.MenuItem{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	item.PhotoURL = url
	item.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, item)
}

func clean(in domain.ItemInput) (domain.ItemInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" || in.Price.IsNegative() {
		return domain.ItemInput{}, ErrInvalidInput
	}
	return in, nil
}
