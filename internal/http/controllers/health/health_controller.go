// Package health contiene el health check.
package health

import (
	"net/http"
	"time"

	"github.com/filmlot/sessiond/internal/http/helpers"
)

// Controller maneja GET /healthz.
type Controller struct {
	startedAt time.Time
	version   string
}

// NewController crea el health controller.
func NewController(version string) *Controller {
	return &Controller{startedAt: time.Now(), version: version}
}

func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": c.version,
		"uptime":  time.Since(c.startedAt).Round(time.Second).String(),
	})
}
