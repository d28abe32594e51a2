package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/filmlot/sessiond/internal/authz"
	"github.com/filmlot/sessiond/internal/domain"
	"github.com/filmlot/sessiond/internal/session"
	"github.com/filmlot/sessiond/internal/store/memory"
	"github.com/filmlot/sessiond/internal/token"
)

func newGuardFixture(t *testing.T) (*memory.Store, *session.Manager) {
	t.Helper()
	issuer, err := token.NewIssuer("0123456789abcdef0123456789abcdef", "sessiond-test", time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	st := memory.New(memory.Options{Issuer: issuer})
	m := session.NewManager(session.Deps{Store: st})
	t.Cleanup(m.Close)
	return st, m
}

func serveGuarded(m *session.Manager, cap authz.Capability, path string) *httptest.ResponseRecorder {
	cfg := GuardConfig{Manager: m, SignInPath: "/sign-in"}
	handler := Guard(cfg, cap)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGuard_LoadingYields503(t *testing.T) {
	_, m := newGuardFixture(t)
	// Sin Initialize: el estado sigue en bootstrapping.

	rec := serveGuarded(m, authz.CapViewDashboard, "/v1/dashboard")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestGuard_NoProfileRedirectsWithNext(t *testing.T) {
	_, m := newGuardFixture(t)
	m.Initialize(context.Background())

	rec := serveGuarded(m, authz.CapViewDashboard, "/v1/dashboard")
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if loc != "/sign-in?next=%2Fv1%2Fdashboard" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestGuard_MissingCapabilityYields403(t *testing.T) {
	st, m := newGuardFixture(t)
	id, err := st.SeedIdentity("viewer@filmlot.dev", "pw", "Viewer")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	st.SeedProfile(&domain.UserProfile{
		IdentityID: id, Email: "viewer@filmlot.dev", Role: domain.RoleViewer, Active: true,
	})
	m.Initialize(context.Background())
	if !m.Login(context.Background(), "viewer@filmlot.dev", "pw") {
		t.Fatal("login failed")
	}

	rec := serveGuarded(m, authz.CapManageUsers, "/v1/admin/users")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body["role"] != string(domain.RoleViewer) {
		t.Fatalf("403 must name the role, got %+v", body)
	}
}

func TestGuard_CapabilityGrantedPassesThrough(t *testing.T) {
	st, m := newGuardFixture(t)
	id, err := st.SeedIdentity("admin@filmlot.dev", "pw", "Admin")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	st.SeedProfile(&domain.UserProfile{
		IdentityID: id, Email: "admin@filmlot.dev", Role: domain.RoleAdmin, Active: true,
	})
	m.Initialize(context.Background())
	if !m.Login(context.Background(), "admin@filmlot.dev", "pw") {
		t.Fatal("login failed")
	}

	rec := serveGuarded(m, authz.CapManageUsers, "/v1/admin/users")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGuard_FallbackProfileGetsViewerCapabilities(t *testing.T) {
	st, m := newGuardFixture(t)
	// Identidad sin fila de perfil: login resuelve al fallback viewer.
	if _, err := st.SeedIdentity("new@filmlot.dev", "pw", "New User"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m.Initialize(context.Background())
	if !m.Login(context.Background(), "new@filmlot.dev", "pw") {
		t.Fatal("login failed")
	}

	if rec := serveGuarded(m, authz.CapViewDashboard, "/v1/dashboard"); rec.Code != http.StatusOK {
		t.Fatalf("fallback must view the dashboard, got %d", rec.Code)
	}
	if rec := serveGuarded(m, authz.CapManageLocations, "/v1/locations"); rec.Code != http.StatusForbidden {
		t.Fatalf("fallback must not manage locations, got %d", rec.Code)
	}
}
