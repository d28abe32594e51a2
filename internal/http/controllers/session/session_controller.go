// Package session contiene los controllers de los endpoints de sesión.
package session

import (
	"net/http"

	"github.com/filmlot/sessiond/internal/authz"
	dto "github.com/filmlot/sessiond/internal/http/dto/session"
	"github.com/filmlot/sessiond/internal/http/helpers"
	"github.com/filmlot/sessiond/internal/observability/logger"
	sessioncore "github.com/filmlot/sessiond/internal/session"
)

// Controller expone login/logout/refresh/me sobre el manager de sesión.
type Controller struct {
	manager *sessioncore.Manager
}

// NewController crea el controller de sesión.
func NewController(manager *sessioncore.Manager) *Controller {
	return &Controller{manager: manager}
}

// Login maneja POST /v1/session/login.
// Credenciales rechazadas → 401; el manager nunca propaga errores internos.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Session.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		helpers.WriteErrorJSON(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if !c.manager.Login(ctx, req.Email, req.Password) {
		helpers.WriteErrorJSON(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	log.Debug("login ok", logger.Email(req.Email))
	c.writeState(w)
}

// Logout maneja POST /v1/session/logout. Siempre 204: los errores del
// backend se loguean y se tragan, la sesión local queda limpia igual.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	c.manager.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Refresh maneja POST /v1/session/refresh: re-resuelve el perfil.
func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	c.manager.RefreshUser(r.Context())
	c.writeState(w)
}

// Me maneja GET /v1/session/me.
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	c.writeState(w)
}

func (c *Controller) writeState(w http.ResponseWriter) {
	st := c.manager.Snapshot()
	helpers.WriteJSON(w, http.StatusOK, dto.StateResponse{
		User:         dto.NewUserPayload(st.CurrentUser),
		Loading:      st.Loading,
		Capabilities: authz.Project(st.CurrentUser),
	})
}
