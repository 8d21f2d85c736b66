package grpc

import "time"

const ServiceName = "storefront.identity.v1.IdentityService"

type Empty struct{}

// SignInRequest carries the provider's ID token. Profile fields are read
// from its verified claims.
type SignInRequest struct {
	IDToken string `json:"id_token"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionReply struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
