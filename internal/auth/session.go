package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession is returned for a missing, expired, or tampered token.
var ErrInvalidSession = errors.New("invalid session")

const issuer = "vamgard-admin"

// Claims identifies the signed-in admin.
type Claims struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

// AdminID returns the numeric admin id stored in the subject claim.
func (c *Claims) AdminID() uint {
	id, _ := strconv.ParseUint(c.Subject, 10, 64)
	return uint(id)
}

// Sessions issues and verifies HS256 admin session tokens.
type Sessions struct {
	Secret      []byte
	TTL         time.Duration
	RememberTTL time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

// NewSessions returns a token issuer with the given lifetimes.
func NewSessions(secret string, ttl, rememberTTL time.Duration) *Sessions {
	return &Sessions{Secret: []byte(secret), TTL: ttl, RememberTTL: rememberTTL, Now: time.Now}
}

// Lifetime is the token lifetime for a normal or "remember me" login.
func (s *Sessions) Lifetime(remember bool) time.Duration {
	if remember {
		return s.RememberTTL
	}
	return s.TTL
}

// Issue signs a token for the admin and returns it with its expiry.
func (s *Sessions) Issue(adminID uint, username, displayName string, remember bool) (string, time.Time, error) {
	now := s.Now()
	exp := now.Add(s.Lifetime(remember))
	claims := Claims{
		Username:    username,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(adminID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Parse verifies the token and returns its claims.
func (s *Sessions) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil {
		return nil, ErrInvalidSession
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Username == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
