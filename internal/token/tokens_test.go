package token

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestMintAndParse(t *testing.T) {
	i, err := NewIssuer(testSecret, "sessiond-test", time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}

	now := time.Now()
	raw, exp, err := i.Mint("u1", "u1@filmlot.dev", now)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if want := now.Add(time.Hour); !exp.Equal(want) {
		t.Fatalf("expiry: got %v want %v", exp, want)
	}

	claims, err := i.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u1" || claims.Email != "u1@filmlot.dev" {
		t.Fatalf("bad claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("expected a jti")
	}
}

func TestParse_Expired(t *testing.T) {
	i, _ := NewIssuer(testSecret, "sessiond-test", time.Minute)
	raw, _, err := i.Mint("u1", "", time.Now().Add(-2*time.Minute))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := i.Parse(raw); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	a, _ := NewIssuer(testSecret, "sessiond-test", time.Hour)
	b, _ := NewIssuer("ffffffffffffffffffffffffffffffff", "sessiond-test", time.Hour)
	raw, _, err := a.Mint("u1", "", time.Now())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := b.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestParse_Garbage(t *testing.T) {
	i, _ := NewIssuer(testSecret, "sessiond-test", time.Hour)
	if _, err := i.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestNewIssuer_ShortSecret(t *testing.T) {
	if _, err := NewIssuer("too-short", "x", time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestSHA256Base64URL(t *testing.T) {
	a := SHA256Base64URL("token-a")
	b := SHA256Base64URL("token-b")
	if a == b {
		t.Fatal("distinct inputs must hash differently")
	}
	if a != SHA256Base64URL("token-a") {
		t.Fatal("hash must be deterministic")
	}
}
