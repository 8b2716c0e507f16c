package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager() *Manager {
	return NewManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager()

	pair, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	uid, err := m.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if uid != "user-1" {
		t.Fatalf("expected user-1 got %q", uid)
	}

	uid, err = m.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if uid != "user-1" {
		t.Fatalf("expected user-1 got %q", uid)
	}
}

func TestVerifyRejectsCrossedTokens(t *testing.T) {
	m := newTestManager()

	pair, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// An access token must not pass refresh verification and vice versa:
	// the two secrets differ.
	if _, err := m.VerifyRefresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
	if _, err := m.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := newTestManager()
	if _, err := m.VerifyAccess("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := newTestManager()

	issuedAt := time.Now().UTC().Add(-time.Hour)
	m.NowFunc = func() time.Time { return issuedAt }

	pair, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	m.NowFunc = nil
	if _, err := m.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired got %v", err)
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	m := newTestManager()
	if _, err := m.Issue(""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}
