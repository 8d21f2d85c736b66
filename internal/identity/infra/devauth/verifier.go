// Package devauth accepts unsigned "dev:<subject>[:<email>]" credentials. It
// is wired only when APP_ENV=dev.
package devauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/identity/app"
	"github.com/dwikikusuma/storefront/internal/identity/domain"
)

const prefix = "dev:"

type Verifier struct{}

func NewVerifier() Verifier { return Verifier{} }

func (Verifier) Verify(_ context.Context, credential string) (domain.Identity, error) {
	rest, ok := strings.CutPrefix(credential, prefix)
	if !ok {
		return domain.Identity{}, fmt.Errorf("%w: expected %s<subject>", app.ErrInvalidCredential, prefix)
	}
	subject, email, _ := strings.Cut(rest, ":")
	if strings.TrimSpace(subject) == "" {
		return domain.Identity{}, fmt.Errorf("%w: empty subject", app.ErrInvalidCredential)
	}
	return domain.Identity{Subject: subject, Email: email}, nil
}

// Credential builds the token Verify accepts.
func Credential(subject, email string) string {
	if email == "" {
		return prefix + subject
	}
	return prefix + subject + ":" + email
}
