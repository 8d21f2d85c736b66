package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	Wedding Kind = "wedding"
	Party   Kind = "party"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Wedding, Party:
		return k, nil
	}
	return "", fmt.Errorf("unknown inquiry kind %q", s)
}

// Inquiry is a catering request. EventDate carries only the calendar day,
// at midnight in the shop's time zone.
type Inquiry struct {
	ID          string
	Kind        Kind
	ContactName string
	PartnerName string
	Phone       string
	EventDate   time.Time
	Guests      int
	Venue       string
	Notes       string
	CreatedAt   time.Time
}

var (
	ErrMissingContact = errors.New("contact name and phone are required")
	ErrNoGuests       = errors.New("number of guests must be positive")
	ErrPastDate       = errors.New("event date is in the past")
)

func (q Inquiry) Normalize() Inquiry {
	q.ContactName = strings.TrimSpace(q.ContactName)
	q.PartnerName = strings.TrimSpace(q.PartnerName)
	q.Phone = strings.TrimSpace(q.Phone)
	q.Venue = strings.TrimSpace(q.Venue)
	q.Notes = strings.TrimSpace(q.Notes)
	return q
}

// Validate checks the inquiry against today's date in loc. An event today
// is accepted.
func (q Inquiry) Validate(now time.Time, loc *time.Location) error {
	if q.ContactName == "" || q.Phone == "" {
		return ErrMissingContact
	}
	if q.Guests <= 0 {
		return ErrNoGuests
	}
	if q.EventDate.IsZero() {
		return ErrPastDate
	}
	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	ey, em, ed := q.EventDate.In(loc).Date()
	if time.Date(ey, em, ed, 0, 0, 0, 0, loc).Before(today) {
		return ErrPastDate
	}
	return nil
}
