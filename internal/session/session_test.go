package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// fakeStore is an in-memory token slot.
type fakeStore struct {
	token   string
	cleared int
}

func (s *fakeStore) Token() (string, error)  { return s.token, nil }
func (s *fakeStore) SetToken(t string) error { s.token = t; return nil }
func (s *fakeStore) ClearToken() error       { s.token = ""; s.cleared++; return nil }

// signToken builds a syntactically valid token. The signing key is
// irrelevant; the client never verifies signatures.
func signToken(t *testing.T, userID string, exp *time.Time) string {
	t.Helper()
	claims := Claims{UserID: userID}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func newGuardAt(store Store, now time.Time) *Guard {
	g := NewGuard(store)
	g.now = func() time.Time { return now }
	return g
}

// TestCheckMissingToken verifies that an empty slot means unauthenticated
// without touching the store.
func TestCheckMissingToken(t *testing.T) {
	store := &fakeStore{}
	_, err := NewGuard(store).Check()
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if store.cleared != 0 {
		t.Error("Check evicted an already-empty slot")
	}
}

// TestCheckMalformedToken verifies a token that fails to decode is evicted.
func TestCheckMalformedToken(t *testing.T) {
	store := &fakeStore{token: "not-a-jwt"}
	_, err := NewGuard(store).Check()
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if store.cleared != 1 {
		t.Errorf("cleared = %d, want 1", store.cleared)
	}
	if store.token != "" {
		t.Error("token still stored after eviction")
	}
}

// TestCheckExpiredToken verifies a token whose exp is one second in the past
// is evicted and reported as unauthenticated.
func TestCheckExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(-time.Second)
	store := &fakeStore{token: signToken(t, "user-1", &exp)}

	_, err := newGuardAt(store, now).Check()
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if store.cleared != 1 {
		t.Errorf("cleared = %d, want 1", store.cleared)
	}
}

// TestCheckValidToken verifies a future expiry yields a session with the
// decoded identity, and nothing is evicted.
func TestCheckValidToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)
	token := signToken(t, "user-1", &exp)
	store := &fakeStore{token: token}

	sess, err := newGuardAt(store, now).Check()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", sess.UserID)
	}
	if sess.Token != token {
		t.Error("session token differs from stored token")
	}
	if !sess.ExpiresAt.Equal(exp.Truncate(time.Second)) {
		t.Errorf("ExpiresAt = %v, want %v", sess.ExpiresAt, exp)
	}
	if store.cleared != 0 {
		t.Error("valid token was evicted")
	}
}

// TestCheckTokenWithoutExp verifies a token with no exp claim is accepted;
// only the server can reject it.
func TestCheckTokenWithoutExp(t *testing.T) {
	store := &fakeStore{token: signToken(t, "user-2", nil)}
	sess, err := NewGuard(store).Check()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.UserID != "user-2" {
		t.Errorf("UserID = %q, want user-2", sess.UserID)
	}
	if !sess.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero", sess.ExpiresAt)
	}
}

// TestEvict verifies Evict clears the slot unconditionally.
func TestEvict(t *testing.T) {
	store := &fakeStore{token: "anything"}
	if err := NewGuard(store).Evict(); err != nil {
		t.Fatal(err)
	}
	if store.token != "" {
		t.Error("token still stored after Evict")
	}
}
