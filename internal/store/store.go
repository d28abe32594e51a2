// Package store define el contrato del identity store remoto: sign-in por
// password, sesión persistida, stream de cambios de auth y filas de perfil.
//
// Las implementaciones concretas viven en internal/store/memory (dev/tests)
// y internal/store/pg (PostgreSQL + cache de sesiones).
package store

import (
	"context"

	"github.com/filmlot/sessiond/internal/domain"
)

// AuthEvent es el tipo de evento del stream de cambios de auth.
type AuthEvent string

const (
	// EventInitialSession se emite al suscribirse si hay sesión persistida.
	EventInitialSession AuthEvent = "INITIAL_SESSION"
	// EventSignedIn se emite después de un sign-in exitoso.
	EventSignedIn AuthEvent = "SIGNED_IN"
	// EventSignedOut se emite cuando la sesión termina (logout o expiración).
	EventSignedOut AuthEvent = "SIGNED_OUT"
)

// AuthCallback recibe eventos de cambio de estado de auth.
// session es nil para EventSignedOut.
type AuthCallback func(event AuthEvent, session *domain.Session)

// SignInResult es el resultado de un sign-in exitoso.
type SignInResult struct {
	Identity *domain.Identity
	Session  *domain.Session
}

// IdentityStore es el colaborador externo de identidad y datos.
type IdentityStore interface {
	// GetCurrentSession retorna la sesión persistida, o (nil, nil) si no hay.
	GetCurrentSession(ctx context.Context) (*domain.Session, error)

	// SignInWithPassword autentica por email/password.
	// Retorna domain.ErrInvalidCredentials si las credenciales no coinciden.
	SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error)

	// SignOut termina la sesión actual. Best-effort: errores del backend se
	// reportan pero la sesión local queda terminada igual.
	SignOut(ctx context.Context) error

	// Subscribe registra un callback para cambios de auth.
	// Retorna la función para cancelar la suscripción.
	Subscribe(cb AuthCallback) (unsubscribe func())

	// FindProfileByID busca la fila de perfil por ID de identidad.
	// Retorna domain.ErrNotFound si no existe.
	FindProfileByID(ctx context.Context, identityID string) (*domain.UserProfile, error)

	// GetIdentity retorna la identidad de la sesión actual, o (nil, nil)
	// si no hay sesión. Usada para construir perfiles fallback.
	GetIdentity(ctx context.Context) (*domain.Identity, error)

	// UpsertProfile crea o actualiza una fila de perfil.
	// Perfiles fallback (p.Fallback) nunca se persisten: ErrInvalidInput.
	UpsertProfile(ctx context.Context, p *domain.UserProfile) error
}
