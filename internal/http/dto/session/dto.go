// Package session contiene los DTOs de los endpoints de sesión.
package session

import (
	"github.com/filmlot/sessiond/internal/authz"
	"github.com/filmlot/sessiond/internal/domain"
)

// LoginRequest es el body de POST /v1/session/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserPayload es la vista serializada del perfil resuelto.
type UserPayload struct {
	IdentityID  string `json:"identity_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
	Locale      string `json:"locale,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Fallback    bool   `json:"fallback,omitempty"`
}

// StateResponse es la respuesta de /me, /login y /refresh: el estado de
// sesión resuelto más la proyección de capabilities.
type StateResponse struct {
	User         *UserPayload       `json:"user"`
	Loading      bool               `json:"loading"`
	Capabilities authz.Capabilities `json:"capabilities"`
}

// NewUserPayload convierte un perfil de dominio al DTO.
func NewUserPayload(p *domain.UserProfile) *UserPayload {
	if p == nil {
		return nil
	}
	return &UserPayload{
		IdentityID:  p.IdentityID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        string(p.Role),
		Active:      p.Active,
		Locale:      p.Locale,
		Timezone:    p.Timezone,
		Fallback:    p.Fallback,
	}
}
