// Package router arma el árbol de rutas de sessiond sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/filmlot/sessiond/internal/authz"
	healthctrl "github.com/filmlot/sessiond/internal/http/controllers/health"
	profilectrl "github.com/filmlot/sessiond/internal/http/controllers/profile"
	resourcesctrl "github.com/filmlot/sessiond/internal/http/controllers/resources"
	sessionctrl "github.com/filmlot/sessiond/internal/http/controllers/session"
	mw "github.com/filmlot/sessiond/internal/http/middlewares"
	profilesvc "github.com/filmlot/sessiond/internal/http/services/profile"
	"github.com/filmlot/sessiond/internal/metrics"
	sessioncore "github.com/filmlot/sessiond/internal/session"
	"github.com/filmlot/sessiond/internal/store"
)

// Deps contiene todas las dependencias del router.
type Deps struct {
	Manager    *sessioncore.Manager
	Store      store.IdentityStore
	Metrics    *metrics.Core
	SignInPath string
	Version    string
}

// New construye el handler raíz con todas las rutas registradas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging(deps.Metrics))
	r.Use(mw.WithRecover())

	sc := sessionctrl.NewController(deps.Manager)
	pc := profilectrl.NewController(
		profilesvc.NewService(profilesvc.Deps{Store: deps.Store}),
		deps.Manager,
	)
	rc := resourcesctrl.NewController()
	hc := healthctrl.NewController(deps.Version)

	guardCfg := mw.GuardConfig{Manager: deps.Manager, SignInPath: deps.SignInPath}
	guard := func(cap authz.Capability) func(http.Handler) http.Handler {
		return mw.Guard(guardCfg, cap)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/session/login", sc.Login)
		r.Post("/session/logout", sc.Logout)
		r.Post("/session/refresh", sc.Refresh)
		r.Get("/session/me", sc.Me)

		r.Put("/profile", pc.Update)

		// Secciones del ERP detrás del guard, una capability por ruta.
		r.With(guard(authz.CapViewDashboard)).Get("/dashboard", rc.Dashboard)
		r.With(guard(authz.CapManageLocations)).Get("/locations", rc.Locations)
		r.With(guard(authz.CapManageProjects)).Get("/projects", rc.Projects)
		r.With(guard(authz.CapManageContracts)).Get("/contracts", rc.Contracts)
		r.With(guard(authz.CapManageUsers)).Get("/admin/users", rc.AdminUsers)
		r.With(guard(authz.CapExportReports)).Get("/reports/export", rc.ExportReports)
	})

	r.Get("/healthz", hc.Health)
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	return r
}
