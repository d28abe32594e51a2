// Package profile contiene el controller de edición de perfil.
package profile

import (
	"net/http"

	dto "github.com/filmlot/sessiond/internal/http/dto/profile"
	sessdto "github.com/filmlot/sessiond/internal/http/dto/session"
	"github.com/filmlot/sessiond/internal/http/helpers"
	svc "github.com/filmlot/sessiond/internal/http/services/profile"
	"github.com/filmlot/sessiond/internal/observability/logger"
	sessioncore "github.com/filmlot/sessiond/internal/session"
)

// Controller maneja PUT /v1/profile.
type Controller struct {
	service svc.Service
	manager *sessioncore.Manager
}

// NewController crea el controller de perfil.
func NewController(service svc.Service, manager *sessioncore.Manager) *Controller {
	return &Controller{service: service, manager: manager}
}

// Update aplica la edición y re-resuelve la sesión para que el estado
// publicado refleje la fila nueva.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Profile.Update"))

	var req dto.UpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	updated, err := c.service.UpdateOwn(ctx, req)
	if err != nil {
		switch err {
		case svc.ErrNoActiveSession:
			helpers.WriteErrorJSON(w, http.StatusUnauthorized, "no active session")
		case svc.ErrInvalidOverride:
			helpers.WriteErrorJSON(w, http.StatusBadRequest, "invalid capability override")
		default:
			log.Error("profile update failed", logger.Err(err))
			helpers.WriteErrorJSON(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	// El perfil cambió por fuera del resolver: re-correr la resolución.
	c.manager.RefreshUser(ctx)

	helpers.WriteJSON(w, http.StatusOK, sessdto.NewUserPayload(updated))
}
