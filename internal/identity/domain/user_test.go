package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentityNormalize(t *testing.T) {
	got := Identity{Subject: " g-123 ", Name: " Asha ", Email: " Asha@Example.COM "}.Normalize()
	assert.Equal(t, Identity{Subject: "g-123", Name: "Asha", Email: "asha@example.com"}, got)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Asha", User{Name: "Asha", Email: "a@x.in"}.DisplayName())
	assert.Equal(t, "a@x.in", User{Email: "a@x.in"}.DisplayName())
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))
	assert.False(t, Session{}.Expired(now), "zero expiry never expires")
}
