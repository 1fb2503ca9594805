package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	h, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h == "admin123" || !strings.HasPrefix(h, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", h)
	}
	if !CheckPassword(h, "admin123") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(h, "admin1234") {
		t.Fatalf("wrong password accepted")
	}
	if CheckPassword("not-a-hash", "admin123") {
		t.Fatalf("malformed hash must not match")
	}
}

func newSessions(now time.Time) *Sessions {
	s := NewSessions("secret", 8*time.Hour, 30*24*time.Hour)
	s.Now = func() time.Time { return now }
	return s
}

func TestSessions_IssueAndParse(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newSessions(now)

	tok, exp, err := s.Issue(7, "admin", "مدیر", false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.Equal(now.Add(8 * time.Hour)) {
		t.Fatalf("expiry = %v; want +8h", exp)
	}
	c, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.AdminID() != 7 || c.Username != "admin" || c.DisplayName != "مدیر" {
		t.Fatalf("unexpected claims: %+v", c)
	}

	_, exp, _ = s.Issue(7, "admin", "", true)
	if !exp.Equal(now.Add(30 * 24 * time.Hour)) {
		t.Fatalf("remember-me expiry = %v; want +30d", exp)
	}
}

func TestSessions_Rejects(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newSessions(now)
	tok, _, _ := s.Issue(1, "admin", "", false)

	// expired
	later := newSessions(now.Add(9 * time.Hour))
	if _, err := later.Parse(tok); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}

	// wrong secret
	other := NewSessions("other", time.Hour, time.Hour)
	other.Now = s.Now
	if _, err := other.Parse(tok); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected signature rejection, got %v", err)
	}

	// tampered / empty
	if _, err := s.Parse(tok + "x"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected tampered token rejection, got %v", err)
	}
	if _, err := s.Parse(""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected empty token rejection, got %v", err)
	}
}
