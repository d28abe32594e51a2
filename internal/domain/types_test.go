package domain

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":       RoleAdmin,
		" Manager ":   RoleManager,
		"COORDINATOR": RoleCoordinator,
		"viewer":      RoleViewer,
		"superuser":   RoleViewer, // desconocido degrada al mínimo
		"":            RoleViewer,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Fatalf("ParseRole(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Fatal("future expiry must not be expired")
	}
	if !s.Expired(now.Add(2 * time.Minute)) {
		t.Fatal("past expiry must be expired")
	}
	if (&Session{}).Expired(now) {
		t.Fatal("zero expiry means no expiry")
	}
}

func TestFallbackProfile(t *testing.T) {
	id := &Identity{ID: "u1", Email: "u1@filmlot.dev", DisplayName: "U One"}
	p := FallbackProfile(id)
	if p.Role != RoleLowest || !p.Fallback || !p.Active {
		t.Fatalf("bad fallback: %+v", p)
	}
	if p.IdentityID != "u1" || p.Email != "u1@filmlot.dev" || p.DisplayName != "U One" {
		t.Fatalf("identity fields lost: %+v", p)
	}
}

func TestFallbackProfile_NameSources(t *testing.T) {
	// Sin DisplayName: cae al metadata y después al email.
	fromMeta := FallbackProfile(&Identity{
		ID: "u2", Email: "u2@filmlot.dev",
		Metadata: map[string]any{"display_name": "Meta Name"},
	})
	if fromMeta.DisplayName != "Meta Name" {
		t.Fatalf("expected metadata name, got %q", fromMeta.DisplayName)
	}

	fromEmail := FallbackProfile(&Identity{ID: "u3", Email: "u3@filmlot.dev"})
	if fromEmail.DisplayName != "u3@filmlot.dev" {
		t.Fatalf("expected email as name, got %q", fromEmail.DisplayName)
	}
}

func TestFallbackProfile_NilIdentity(t *testing.T) {
	if FallbackProfile(nil) != nil {
		t.Fatal("nil identity must yield nil")
	}
}
