// Package auth turns identity provider tokens into actors. Credentials are never handled here.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
)

var ErrNoBearer = errors.New("bearer token required")

// Claims are the identity provider claims the service reads.
type Claims struct {
	jwt.RegisteredClaims

	Roles []string `json:"roles,omitempty"`
}

// Verifier checks HS256 bearer tokens issued by the identity provider.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses token and returns the actor it names. Unknown role claims are dropped.
func (v *Verifier) Verify(token string) (access.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return access.Actor{}, fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return access.Actor{}, fmt.Errorf("%w: subject claim required", apperr.ErrUnauthenticated)
	}

	return access.FromClaims(claims.Subject, claims.Roles), nil
}

// BearerToken extracts the token of an Authorization header value.
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, ErrNoBearer)
	}
	return parts[1], nil
}

// Sign issues a token the Verifier accepts. It stands in for the identity provider in local
// environments and tests.
func Sign(secret, issuer, userID string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: roles,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
