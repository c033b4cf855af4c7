// Package auth holds the portal's identity plumbing: the Google OpenID Connect
// provider, the signed session token, and the middleware that turns a session
// cookie into a *model.User on the request context.
//
// LOGIN FLOW OVERVIEW:
//  1. GET /login → redirect to Google's authorization endpoint (from discovery)
//  2. Google calls back GET /login/callback with a code
//  3. GoogleProvider.Exchange trades the code for a token, then for userinfo
//  4. The auth service creates the user on first login and issues a session token
//  5. The token lives in the HttpOnly "session" cookie; LoadUser reads it on every request
//
// SESSION TOKEN:
// The session is a JWT signed with HS256. It carries only the user ID (sub)
// and an expiry, so the server keeps no session table. Logging out simply
// deletes the cookie.
package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	// SessionCookie is the cookie that carries the session token.
	SessionCookie = "session"

	issuer = "student-portal"

	// DefaultSessionTTL applies when NewTokenService is given ttl <= 0.
	DefaultSessionTTL = 24 * time.Hour
)

// TokenService issues and validates session tokens.
type TokenService struct {
	key []byte
	ttl time.Duration
}

// NewTokenService derives the signing key from secret and returns a
// TokenService whose tokens expire after ttl.
//
// KEY DERIVATION:
// The configured secret is an operator-chosen string of uneven quality.
// HKDF-SHA256 stretches it into a fixed 32-byte HMAC key bound to this use
// ("session"), so the same secret could sign something else later without
// the two keys ever matching. Changing the secret invalidates every session.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("student-portal session"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("auth: deriving session key: %w", err)
	}

	return &TokenService{key: key, ttl: ttl}, nil
}

// TTL is how long a freshly issued token stays valid. The cookie MaxAge
// uses the same value.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate signs a session token for userID with the configured TTL.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration signs a token that expires after d.
// Negative durations produce already-expired tokens, which tests rely on.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    issuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate verifies the signature, issuer and expiry of tokenStr and returns
// the user ID from its subject.
//
// jwt.WithValidMethods pins HS256, so a token claiming "none" or an RSA
// algorithm is rejected before the key is ever used.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	c := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		c,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
