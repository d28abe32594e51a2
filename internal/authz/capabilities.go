// Package authz implements the permission projection: a pure mapping from a
// resolved profile's role (plus typed per-user overrides) to a fixed record
// of boolean capabilities. No I/O, no side effects.
package authz

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/filmlot/sessiond/internal/domain"
)

// Capability names a single boolean flag of the projection. Used by the
// route guard to select which flag protects a route.
type Capability string

const (
	CapViewDashboard   Capability = "view_dashboard"
	CapManageLocations Capability = "manage_locations"
	CapManageProjects  Capability = "manage_projects"
	CapManageContracts Capability = "manage_contracts"
	CapManageUsers     Capability = "manage_users"
	CapViewReports     Capability = "view_reports"
	CapExportReports   Capability = "export_reports"
)

// Capabilities is the full projection record. The zero value is the
// lowest-privilege set (all false), returned for a nil profile.
type Capabilities struct {
	ViewDashboard   bool `json:"view_dashboard"`
	ManageLocations bool `json:"manage_locations"`
	ManageProjects  bool `json:"manage_projects"`
	ManageContracts bool `json:"manage_contracts"`
	ManageUsers     bool `json:"manage_users"`
	ViewReports     bool `json:"view_reports"`
	ExportReports   bool `json:"export_reports"`
}

// Has reports whether the named capability is set.
func (c Capabilities) Has(cap Capability) bool {
	switch cap {
	case CapViewDashboard:
		return c.ViewDashboard
	case CapManageLocations:
		return c.ManageLocations
	case CapManageProjects:
		return c.ManageProjects
	case CapManageContracts:
		return c.ManageContracts
	case CapManageUsers:
		return c.ManageUsers
	case CapViewReports:
		return c.ViewReports
	case CapExportReports:
		return c.ExportReports
	}
	return false
}

// roleDefaults is the fixed role → capabilities table.
func roleDefaults(role domain.Role) Capabilities {
	switch role {
	case domain.RoleAdmin:
		return Capabilities{
			ViewDashboard:   true,
			ManageLocations: true,
			ManageProjects:  true,
			ManageContracts: true,
			ManageUsers:     true,
			ViewReports:     true,
			ExportReports:   true,
		}
	case domain.RoleManager:
		return Capabilities{
			ViewDashboard:   true,
			ManageLocations: true,
			ManageProjects:  true,
			ManageContracts: true,
			ViewReports:     true,
			ExportReports:   true,
		}
	case domain.RoleCoordinator:
		return Capabilities{
			ViewDashboard:   true,
			ManageLocations: true,
			ViewReports:     true,
		}
	case domain.RoleViewer:
		return Capabilities{
			ViewDashboard: true,
			ViewReports:   true,
		}
	}
	return Capabilities{}
}

// Project maps a resolved profile to its capability record. Overrides take
// precedence over the role defaults, key by key. A nil profile yields the
// zero (all-false) record.
func Project(p *domain.UserProfile) Capabilities {
	if p == nil {
		return Capabilities{}
	}
	caps := roleDefaults(p.Role)
	if p.Overrides != nil {
		applyOverrides(&caps, p.Overrides)
	}
	return caps
}

func applyOverrides(caps *Capabilities, o *domain.CapabilityOverrides) {
	if o.ViewDashboard != nil {
		caps.ViewDashboard = *o.ViewDashboard
	}
	if o.ManageLocations != nil {
		caps.ManageLocations = *o.ManageLocations
	}
	if o.ManageProjects != nil {
		caps.ManageProjects = *o.ManageProjects
	}
	if o.ManageContracts != nil {
		caps.ManageContracts = *o.ManageContracts
	}
	if o.ManageUsers != nil {
		caps.ManageUsers = *o.ManageUsers
	}
	if o.ViewReports != nil {
		caps.ViewReports = *o.ViewReports
	}
	if o.ExportReports != nil {
		caps.ExportReports = *o.ExportReports
	}
}

// ParseOverrides decodes a stored override document at the boundary where it
// enters the system. Unknown keys are rejected instead of silently merged.
func ParseOverrides(raw []byte) (*domain.CapabilityOverrides, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var o domain.CapabilityOverrides
	if err := dec.Decode(&o); err != nil {
		return nil, fmt.Errorf("authz: invalid overrides: %w", err)
	}
	return &o, nil
}
