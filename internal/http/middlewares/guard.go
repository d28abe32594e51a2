package middlewares

import (
	"net/http"
	"net/url"

	"github.com/filmlot/sessiond/internal/authz"
	"github.com/filmlot/sessiond/internal/http/helpers"
	"github.com/filmlot/sessiond/internal/observability/logger"
	"github.com/filmlot/sessiond/internal/session"
)

// GuardConfig configura el route guard.
type GuardConfig struct {
	// Manager es la fuente del estado de sesión resuelto.
	Manager *session.Manager
	// SignInPath es el destino del redirect cuando no hay perfil.
	SignInPath string
}

// Guard protege una ruta con una capability de la proyección:
//
//   - estado cargando → 503 con Retry-After (sin decisión de navegación)
//   - sin perfil → 302 al sign-in, con next=<path intentado>
//   - perfil sin la capability → 403 nombrando el rol
//   - en otro caso → sirve el contenido
func Guard(cfg GuardConfig, cap authz.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := cfg.Manager.Snapshot()

			if st.Loading {
				w.Header().Set("Retry-After", "1")
				helpers.WriteErrorJSON(w, http.StatusServiceUnavailable, "session state loading")
				return
			}

			if st.CurrentUser == nil {
				dest := cfg.SignInPath + "?next=" + url.QueryEscape(r.URL.Path)
				http.Redirect(w, r, dest, http.StatusFound)
				return
			}

			caps := authz.Project(st.CurrentUser)
			if !caps.Has(cap) {
				logger.From(r.Context()).Debug("access denied",
					logger.Capability(string(cap)),
					logger.Role(string(st.CurrentUser.Role)),
					logger.Path(r.URL.Path),
				)
				helpers.WriteJSON(w, http.StatusForbidden, map[string]string{
					"error": "access denied",
					"role":  string(st.CurrentUser.Role),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
