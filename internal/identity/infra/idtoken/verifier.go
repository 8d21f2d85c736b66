// Package idtoken verifies signed ID tokens from the sign-in provider.
package idtoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/storefront/internal/identity/app"
	"github.com/dwikikusuma/storefront/internal/identity/domain"
	"github.com/golang-jwt/jwt/v5"
)

var ErrNotConfigured = errors.New("id token verifier needs a secret or a public key")

type Config struct {
	// Secret selects HS256. PublicKeyPEM selects RS256 and wins when both
	// are set.
	Secret       string
	PublicKeyPEM []byte
	Issuer       string
	Audience     string
	Leeway       time.Duration
}

type claims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

type Verifier struct {
	key    any
	parser *jwt.Parser
}

func NewVerifier(cfg Config) (*Verifier, error) {
	var (
		key    any
		method string
	)
	switch {
	case len(cfg.PublicKeyPEM) > 0:
		pub, err := jwt.ParseRSAPublicKeyFromPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("parse id token public key: %w", err)
		}
		key, method = pub, jwt.SigningMethodRS256.Alg()
	case cfg.Secret != "":
		key, method = []byte(cfg.Secret), jwt.SigningMethodHS256.Alg()
	default:
		return nil, ErrNotConfigured
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &Verifier{key: key, parser: jwt.NewParser(opts...)}, nil
}

// Verify checks signature, expiry, issuer and audience before trusting any
// claim in the token.
func (v *Verifier) Verify(_ context.Context, credential string) (domain.Identity, error) {
	var c claims
	_, err := v.parser.ParseWithClaims(credential, &c, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", app.ErrInvalidCredential, err)
	}
	return domain.Identity{
		Subject:  c.Subject,
		Name:     c.Name,
		Email:    c.Email,
		PhotoURL: c.Picture,
	}, nil
}
