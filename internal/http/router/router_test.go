package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/filmlot/sessiond/internal/domain"
	sessioncore "github.com/filmlot/sessiond/internal/session"
	"github.com/filmlot/sessiond/internal/store/memory"
	"github.com/filmlot/sessiond/internal/token"
)

type stateOut struct {
	User *struct {
		Email    string `json:"email"`
		Role     string `json:"role"`
		Fallback bool   `json:"fallback"`
	} `json:"user"`
	Loading      bool            `json:"loading"`
	Capabilities map[string]bool `json:"capabilities"`
}

func newRouterFixture(t *testing.T) (*memory.Store, http.Handler) {
	t.Helper()
	issuer, err := token.NewIssuer("0123456789abcdef0123456789abcdef", "sessiond-test", time.Hour)
	require.NoError(t, err)

	st := memory.New(memory.Options{Issuer: issuer})
	m := sessioncore.NewManager(sessioncore.Deps{Store: st})
	t.Cleanup(m.Close)
	m.Initialize(context.Background())

	h := New(Deps{
		Manager:    m,
		Store:      st,
		SignInPath: "/sign-in",
		Version:    "test",
	})
	return st, h
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_LoginFlow(t *testing.T) {
	st, h := newRouterFixture(t)
	id, err := st.SeedIdentity("ana@filmlot.dev", "pw", "Ana")
	require.NoError(t, err)
	st.SeedProfile(&domain.UserProfile{
		IdentityID: id, Email: "ana@filmlot.dev", Role: domain.RoleManager, Active: true,
	})

	// Antes del login: me reporta estado sin usuario, sin cargar.
	rec := doJSON(t, h, http.MethodGet, "/v1/session/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st0 stateOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st0))
	require.Nil(t, st0.User)
	require.False(t, st0.Loading)

	// Login correcto devuelve el estado resuelto con capabilities.
	rec = doJSON(t, h, http.MethodPost, "/v1/session/login", map[string]string{
		"email": "ana@filmlot.dev", "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var st1 stateOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st1))
	require.NotNil(t, st1.User)
	require.Equal(t, "manager", st1.User.Role)
	require.False(t, st1.User.Fallback)
	require.True(t, st1.Capabilities["manage_projects"])
	require.False(t, st1.Capabilities["manage_users"])

	// Ruta guardada accesible con la capability del rol.
	rec = doJSON(t, h, http.MethodGet, "/v1/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Ruta admin denegada para manager, nombrando el rol.
	rec = doJSON(t, h, http.MethodGet, "/v1/admin/users", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	var denied map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &denied))
	require.Equal(t, "manager", denied["role"])

	// Logout: 204 y las rutas guardadas vuelven a redirigir.
	rec = doJSON(t, h, http.MethodPost, "/v1/session/logout", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/projects", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/sign-in?next=%2Fv1%2Fprojects", rec.Header().Get("Location"))
}

func TestRouter_LoginRejections(t *testing.T) {
	st, h := newRouterFixture(t)
	_, err := st.SeedIdentity("ana@filmlot.dev", "pw", "Ana")
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPost, "/v1/session/login", map[string]string{
		"email": "ana@filmlot.dev", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/session/login", map[string]string{
		"email": "ana@filmlot.dev",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ProfileUpdateRefreshesState(t *testing.T) {
	st, h := newRouterFixture(t)
	id, err := st.SeedIdentity("ana@filmlot.dev", "pw", "Ana")
	require.NoError(t, err)
	st.SeedProfile(&domain.UserProfile{
		IdentityID: id, Email: "ana@filmlot.dev", DisplayName: "Ana",
		Role: domain.RoleCoordinator, Active: true,
	})

	rec := doJSON(t, h, http.MethodPost, "/v1/session/login", map[string]string{
		"email": "ana@filmlot.dev", "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/v1/profile", map[string]any{
		"display_name": "Ana María",
		"locale":       "es-AR",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// El estado resuelto refleja la edición sin re-login.
	rec = doJSON(t, h, http.MethodGet, "/v1/session/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		User struct {
			DisplayName string `json:"display_name"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "Ana María", out.User.DisplayName)
}

func TestRouter_Healthz(t *testing.T) {
	_, h := newRouterFixture(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
