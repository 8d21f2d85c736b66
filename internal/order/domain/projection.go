package domain

import (
	"sort"
	"time"
)

type Buckets struct {
	Pending  []Order
	Accepted []Order
	Rejected []Order
}

func (b Buckets) Len() int {
	return len(b.Pending) + len(b.Accepted) + len(b.Rejected)
}

// Projection is a customer's order history as shown on the orders page.
type Projection struct {
	Today  Buckets
	OnDate Buckets
}

// Project sorts orders newest first and splits them into the orders placed
// on the calendar day of now and on the calendar day of day, both in loc.
// Orders with an unknown status are left out.
func Project(orders []Order, now, day time.Time, loc *time.Location) Projection {
	if loc == nil {
		loc = time.Local
	}
	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	var p Projection
	for _, o := range sorted {
		if SameDay(o.CreatedAt, now, loc) {
			p.Today.add(o)
		}
		if SameDay(o.CreatedAt, day, loc) {
			p.OnDate.add(o)
		}
	}
	return p
}

func (b *Buckets) add(o Order) {
	switch o.Status {
	case StatusPending:
		b.Pending = append(b.Pending, o)
	case StatusAccepted:
		b.Accepted = append(b.Accepted, o)
	case StatusRejected:
		b.Rejected = append(b.Rejected, o)
	}
}

func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DayBounds returns the [start, end) instants of the calendar day containing
// t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
