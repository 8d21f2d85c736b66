package domain

import (
	"strings"
	"time"
)

// Identity is what the sign-in provider vouches for. Subject is the
// provider's stable user id and becomes the storefront user id.
type Identity struct {
	Subject  string
	Name     string
	Email    string
	PhotoURL string
}

func (i Identity) Normalize() Identity {
	return Identity{
		Subject:  strings.TrimSpace(i.Subject),
		Name:     strings.TrimSpace(i.Name),
		Email:    strings.ToLower(strings.TrimSpace(i.Email)),
		PhotoURL: strings.TrimSpace(i.PhotoURL),
	}
}

type User struct {
	ID           string
	Name         string
	Email        string
	PhotoURL     string
	CreatedAt    time.Time
	LastSignInAt time.Time
}

// DisplayName falls back to the email when the provider sent no name.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

type Event struct {
	Kind EventKind
	User User
}
