package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/inquiry/app"
	"github.com/dwikikusuma/storefront/internal/inquiry/domain"
	"github.com/dwikikusuma/storefront/pkg/docstore"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

const (
	Collection = "inquiries"
	dateLayout = "2006-01-02"
)

type InquiryRepo struct {
	store docstore.Store
	loc   *time.Location
	log   *slog.Logger
}

// NewInquiryRepo reads stored event dates as calendar days in loc.
func NewInquiryRepo(store docstore.Store, loc *time.Location, log *slog.Logger) *InquiryRepo {
	if loc == nil {
		loc = time.Local
	}
	return &InquiryRepo{store: store, loc: loc, log: logger.OrDiscard(log)}
}

func (r *InquiryRepo) Create(ctx context.Context, q domain.Inquiry) (domain.Inquiry, error) {
	id, err := r.store.Insert(ctx, Collection, r.toRecord(q))
	if err != nil {
		return domain.Inquiry{}, fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
	}
	q.ID = id
	return q, nil
}

func (r *InquiryRepo) List(ctx context.Context, kind domain.Kind) ([]domain.Inquiry, error) {
	q := docstore.Query{SortBy: "createdAt", Desc: true}
	if kind != "" {
		q.Where = map[string]any{"kind": string(kind)}
	}
	recs, err := r.store.Find(ctx, Collection, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", app.ErrStoreUnavailable, err)
	}

	out := make([]domain.Inquiry, 0, len(recs))
	for _, rec := range recs {
		inq, ok := r.fromRecord(rec)
		if !ok {
			continue
		}
		out = append(out, inq)
	}
	return out, nil
}

func (r *InquiryRepo) toRecord(q domain.Inquiry) docstore.Record {
	return docstore.Record{
		"kind":        string(q.Kind),
		"contactName": q.ContactName,
		"partnerName": q.PartnerName,
		"phone":       q.Phone,
		"eventDate":   q.EventDate.In(r.loc).Format(dateLayout),
		"guests":      q.Guests,
		"venue":       q.Venue,
		"notes":       q.Notes,
		"createdAt":   q.CreatedAt,
	}
}

func (r *InquiryRepo) fromRecord(rec docstore.Record) (domain.Inquiry, bool) {
	kind, err := domain.ParseKind(rec.String("kind"))
	if err != nil {
		r.log.Warn("skipping inquiry with unknown kind", slog.String("inquiry_id", rec.ID()))
		return domain.Inquiry{}, false
	}
	q := domain.Inquiry{
		ID:          rec.ID(),
		Kind:        kind,
		ContactName: strings.TrimSpace(rec.String("contactName")),
		PartnerName: strings.TrimSpace(rec.String("partnerName")),
		Phone:       strings.TrimSpace(rec.String("phone")),
		Venue:       rec.String("venue"),
		Notes:       rec.String("notes"),
	}
	if n, ok := rec.Int("guests"); ok {
		q.Guests = n
	}
	if d, err := time.ParseInLocation(dateLayout, rec.String("eventDate"), r.loc); err == nil {
		q.EventDate = d
	}
	if t, ok := rec.Time("createdAt"); ok {
		q.CreatedAt = t
	}
	return q, true
}
