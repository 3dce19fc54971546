package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"appdird/internal/directory"
)

// ErrInvalidToken is returned when a token fails validation: bad
// signature, malformed structure, or expiry in the past.
var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and validates HS256-signed identity tokens. The only
// claims are the identity id (subject) and the issue/expiry timestamps;
// tokens are opaque to callers.
type Tokens struct {
	key   []byte
	ttl   time.Duration
	clock directory.Clock
}

// NewTokens creates a token service. The signing key is process-wide
// configuration; an empty key is a fatal startup condition.
func NewTokens(signingKey string, ttl time.Duration, clock directory.Clock) (*Tokens, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("token signing key must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if clock == nil {
		clock = directory.RealClock{}
	}
	return &Tokens{key: []byte(signingKey), ttl: ttl, clock: clock}, nil
}

// Issue produces a signed token binding userID and an expiry. The token
// id makes every issued token distinct, so replacing a session token
// always invalidates the previous one even within the same second.
func (t *Tokens) Issue(userID string) (string, error) {
	now := t.clock.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Validate decodes and verifies signature and expiry, returning the
// identity id the token was issued for.
func (t *Tokens) Validate(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.key, nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Compile-time check that Tokens implements the TokenService interface
var _ directory.TokenService = (*Tokens)(nil)
