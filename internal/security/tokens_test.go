package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenProvider_RoundTrip(t *testing.T) {
	p := NewTokenProvider([]byte("test-secret"), 24*time.Hour)

	token, expiresAt, err := p.Issue("acct-1", "alice", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}
	if until := time.Until(expiresAt); until < 23*time.Hour || until > 24*time.Hour {
		t.Errorf("expiry %v not ~24h out", until)
	}

	claims, err := p.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "acct-1" {
		t.Errorf("Subject = %q, want acct-1", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
}

func TestTokenProvider_WrongSecret(t *testing.T) {
	issuer := NewTokenProvider([]byte("secret-a"), time.Hour)
	verifier := NewTokenProvider([]byte("secret-b"), time.Hour)

	token, _, err := issuer.Issue("acct-1", "alice", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_Expired(t *testing.T) {
	p := NewTokenProvider([]byte("test-secret"), -time.Minute)

	token, _, err := p.Issue("acct-1", "alice", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := p.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate of expired token = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_Malformed(t *testing.T) {
	p := NewTokenProvider([]byte("test-secret"), time.Hour)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c", "eyJhbGciOiJub25lIn0..."} {
		if _, err := p.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
}
