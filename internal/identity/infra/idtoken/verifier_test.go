package idtoken

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/identity/app"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-signing-secret"

func sign(t *testing.T, key string, c jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":     "g-1",
		"name":    "Asha",
		"email":   "asha@example.com",
		"picture": "https://img/asha.png",
		"iss":     "https://accounts.example.com",
		"aud":     "storefront",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}
}

func newVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{Secret: secret, Issuer: "https://accounts.example.com", Audience: "storefront"})
	require.NoError(t, err)
	return v
}

func TestNewVerifierRequiresKey(t *testing.T) {
	_, err := NewVerifier(Config{Issuer: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewVerifier(Config{PublicKeyPEM: []byte("not pem")})
	assert.Error(t, err)
}

func TestVerifyReturnsClaims(t *testing.T) {
	id, err := newVerifier(t).Verify(context.Background(), sign(t, secret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "g-1", id.Subject)
	assert.Equal(t, "Asha", id.Name)
	assert.Equal(t, "asha@example.com", id.Email)
	assert.Equal(t, "https://img/asha.png", id.PhotoURL)
}

func TestVerifyRejects(t *testing.T) {
	v := newVerifier(t)

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noExpiry := validClaims()
	delete(noExpiry, "exp")
	otherAud := validClaims()
	otherAud["aud"] = "someone-else"
	otherIss := validClaims()
	otherIss["iss"] = "https://evil.test"

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"forged signature": sign(t, "attacker-secret", validClaims()),
		"expired":          sign(t, secret, expired),
		"no expiry":        sign(t, secret, noExpiry),
		"wrong audience":   sign(t, secret, otherAud),
		"wrong issuer":     sign(t, secret, otherIss),
		"alg none":         unsigned,
		"garbage":          "victim-uid",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			assert.ErrorIs(t, err, app.ErrInvalidCredential)
		})
	}
}

func TestVerifyRS256(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewVerifier(Config{PublicKeyPEM: pemKey, Secret: secret})
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims()).SignedString(priv)
	require.NoError(t, err)
	id, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "g-1", id.Subject)

	// an HS256 token keyed with the shared secret must not pass once RS256 is pinned
	_, err = v.Verify(context.Background(), sign(t, secret, validClaims()))
	assert.ErrorIs(t, err, app.ErrInvalidCredential)
}
