// Package session reads and validates the locally stored bearer token.
// The token is decoded without signature verification: only the server can
// verify it, the client just needs the identity and expiry claims to decide
// whether a login round-trip is worth attempting.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrUnauthenticated means no valid session exists and the caller must send
// the user to the login flow.
var ErrUnauthenticated = errors.New("session: not authenticated")

// Claims is the token payload this client reads.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Session is a decoded bearer-token identity.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Store is the persisted slot holding the bearer token. Writes are total
// replacements; there is no partial update.
type Store interface {
	Token() (string, error) // empty string when nothing is stored
	SetToken(token string) error
	ClearToken() error
}

// Decode parses a bearer token without verifying its signature. Malformed
// input returns an error.
func Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Guard gates access to authenticated operations.
type Guard struct {
	store Store
	now   func() time.Time
}

// NewGuard creates a Guard over the given token store.
func NewGuard(store Store) *Guard {
	return &Guard{store: store, now: time.Now}
}

// Check returns the current session. A missing, malformed or expired token
// yields ErrUnauthenticated; malformed and expired tokens are evicted from
// the store first. Eviction is the only mutation Check performs; it never
// writes a new token.
func (g *Guard) Check() (*Session, error) {
	token, err := g.store.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := Decode(token)
	if err != nil {
		if evictErr := g.store.ClearToken(); evictErr != nil {
			return nil, evictErr
		}
		return nil, ErrUnauthenticated
	}

	sess := &Session{Token: token, UserID: claims.UserID}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
		if !claims.ExpiresAt.Time.After(g.now()) {
			if evictErr := g.store.ClearToken(); evictErr != nil {
				return nil, evictErr
			}
			return nil, ErrUnauthenticated
		}
	}
	return sess, nil
}

// Evict removes the stored token. Called when the server answers 401 to a
// token the local expiry check still considered valid.
func (g *Guard) Evict() error {
	return g.store.ClearToken()
}
