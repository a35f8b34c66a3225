/*
Package jwt validates the HS256 identity tokens the hosting application issues
for its users and exposes the parsed identity to HTTP handlers via the request
context.
*/
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// IdentityExpiration is the lifetime used when this service issues a token
	// itself (local tooling and tests; production tokens come from the auth
	// provider).
	IdentityExpiration = 24 * time.Hour

	// TokenIssuer identifies tokens minted by this service.
	TokenIssuer = "paperboard"
)

// GenerateToken signs a token for the given payload with the shared secret.
func GenerateToken(payload *Payload, secret string, lifetime time.Duration) (string, error) {
	now := time.Now()
	payload.StandardClaims = jwt.StandardClaims{
		ExpiresAt: now.Add(lifetime).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString([]byte(secret))
}

// ParseToken validates tokenString and returns its payload. Only HMAC signing
// methods are accepted.
func ParseToken(tokenString, secret string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}
