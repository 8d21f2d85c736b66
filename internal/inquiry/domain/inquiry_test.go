package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Wedding ")
	require.NoError(t, err)
	assert.Equal(t, Wedding, k)

	_, err = ParseKind("birthday")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 23:00 UTC on 1 May is already 2 May in IST
	now := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, ist) }

	base := Inquiry{Kind: Party, ContactName: "Asha", Phone: "98000", Guests: 40, EventDate: day(2)}

	tests := []struct {
		name string
		mod  func(*Inquiry)
		want error
	}{
		{"today in shop zone", func(*Inquiry) {}, nil},
		{"yesterday", func(q *Inquiry) { q.EventDate = day(1) }, ErrPastDate},
		{"missing date", func(q *Inquiry) { q.EventDate = time.Time{} }, ErrPastDate},
		{"zero guests", func(q *Inquiry) { q.Guests = 0 }, ErrNoGuests},
		{"no phone", func(q *Inquiry) { q.Phone = "" }, ErrMissingContact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			tt.mod(&q)
			err := q.Validate(now, ist)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
