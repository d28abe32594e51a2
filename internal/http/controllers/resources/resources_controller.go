// Package resources contiene los endpoints de recursos del ERP protegidos
// por el guard. Los bodies son delgados a propósito: las pantallas reales
// consumen el backend de datos directamente; acá importa el contrato del
// guard por capability.
package resources

import (
	"net/http"

	"github.com/filmlot/sessiond/internal/http/helpers"
)

// Controller sirve las secciones guardadas.
type Controller struct{}

// NewController crea el controller de recursos.
func NewController() *Controller {
	return &Controller{}
}

func (c *Controller) section(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"section": name})
	}
}

func (c *Controller) Dashboard(w http.ResponseWriter, r *http.Request) {
	c.section("dashboard")(w, r)
}

func (c *Controller) Locations(w http.ResponseWriter, r *http.Request) {
	c.section("locations")(w, r)
}

func (c *Controller) Projects(w http.ResponseWriter, r *http.Request) {
	c.section("projects")(w, r)
}

func (c *Controller) Contracts(w http.ResponseWriter, r *http.Request) {
	c.section("contracts")(w, r)
}

func (c *Controller) AdminUsers(w http.ResponseWriter, r *http.Request) {
	c.section("admin/users")(w, r)
}

func (c *Controller) ExportReports(w http.ResponseWriter, r *http.Request) {
	c.section("reports/export")(w, r)
}
