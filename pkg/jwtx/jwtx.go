// Package jwtx mints and verifies the HS256 session tokens that carry the
// caller's identity between the web layer and this service. The service never
// authenticates beyond verifying these tokens; handlers read the subject from
// the request context only.
package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultSessionTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrExpiredToken = errors.New("jwtx: token expired")
)

// Claims are the session claims embedded in every token.
type Claims struct {
	Username string `json:"preferred_username,omitempty"`

	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with a shared HS256 secret.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewCodec(secret []byte, issuer string, ttl time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Codec{secret: secret, issuer: issuer, ttl: ttl}, nil
}

// Mint returns a signed session token for the given user.
func (c *Codec) Mint(userID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning its claims.
func (c *Codec) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
