package domain

import (
	"strings"
	"time"
)

// Role es el rol de aplicación de un perfil. Enumeración cerrada.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleCoordinator Role = "coordinator"
	RoleViewer      Role = "viewer"
)

// RoleLowest es el rol de menor privilegio, asignado a perfiles fallback.
const RoleLowest = RoleViewer

// ParseRole normaliza y valida un rol. Roles desconocidos degradan a viewer.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	case RoleCoordinator:
		return RoleCoordinator
	default:
		return RoleViewer
	}
}

// Identity es el registro de autenticación del identity store
// (id estable + email). Inmutable después del registro.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// Session es la credencial opaca emitida por el identity store.
// Referencia exactamente una identidad y tiene instante de expiración.
type Session struct {
	Token      string
	IdentityID string
	Email      string
	ExpiresAt  time.Time
}

// Expired indica si la sesión ya pasó su instante de expiración.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// CapabilityOverrides es el override parcial por usuario sobre los defaults
// del rol. Registro tipado: nil = sin override para esa capability.
type CapabilityOverrides struct {
	ViewDashboard   *bool `json:"view_dashboard,omitempty"`
	ManageLocations *bool `json:"manage_locations,omitempty"`
	ManageProjects  *bool `json:"manage_projects,omitempty"`
	ManageContracts *bool `json:"manage_contracts,omitempty"`
	ManageUsers     *bool `json:"manage_users,omitempty"`
	ViewReports     *bool `json:"view_reports,omitempty"`
	ExportReports   *bool `json:"export_reports,omitempty"`
}

// UserProfile es el registro de aplicación asociado 1:1 a una Identity.
// Puede no existir para identidades recién creadas; en ese caso el resolver
// sintetiza un perfil fallback (ver FallbackProfile).
type UserProfile struct {
	IdentityID  string
	Email       string
	DisplayName string
	Role        Role
	Active      bool
	Locale      string
	Timezone    string
	Overrides   *CapabilityOverrides

	// Fallback marca perfiles sintetizados en memoria, nunca persistidos.
	Fallback bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FallbackProfile construye un perfil sintetizado a partir de una Identity
// cuando no existe fila de perfil. Único punto de construcción: lo usan
// tanto el login (hint eager) como el resolver, para que no diverjan.
func FallbackProfile(id *Identity) *UserProfile {
	if id == nil {
		return nil
	}
	name := id.DisplayName
	if name == "" {
		if v, ok := id.Metadata["display_name"].(string); ok {
			name = v
		}
	}
	if name == "" {
		name = id.Email
	}
	return &UserProfile{
		IdentityID:  id.ID,
		Email:       id.Email,
		DisplayName: name,
		Role:        RoleLowest,
		Active:      true,
		Fallback:    true,
	}
}
