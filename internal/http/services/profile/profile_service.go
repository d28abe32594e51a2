// Package profile implementa el service de edición del perfil propio.
package profile

import (
	"context"
	"errors"

	"github.com/filmlot/sessiond/internal/authz"
	"github.com/filmlot/sessiond/internal/domain"
	dto "github.com/filmlot/sessiond/internal/http/dto/profile"
	"github.com/filmlot/sessiond/internal/observability/logger"
	"github.com/filmlot/sessiond/internal/store"
)

// Errores del service.
var (
	ErrNoActiveSession = errors.New("no active session")
	ErrInvalidOverride = errors.New("invalid capability override")
)

// Service define la edición del perfil de la sesión actual.
type Service interface {
	// UpdateOwn aplica el request sobre la fila de perfil de la sesión
	// actual y la persiste. Si no existe fila, la provisiona a partir de
	// la identidad con el rol de menor privilegio.
	UpdateOwn(ctx context.Context, req dto.UpdateRequest) (*domain.UserProfile, error)
}

// Deps contiene las dependencias del service.
type Deps struct {
	Store store.IdentityStore
}

type service struct {
	deps Deps
}

// NewService crea el service de perfil.
func NewService(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) UpdateOwn(ctx context.Context, req dto.UpdateRequest) (*domain.UserProfile, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("profile"),
		logger.Op("UpdateOwn"),
	)

	sess, err := s.deps.Store.GetCurrentSession(ctx)
	if err != nil || sess == nil {
		return nil, ErrNoActiveSession
	}

	current, err := s.deps.Store.FindProfileByID(ctx, sess.IdentityID)
	if err != nil {
		if !domain.IsNotFound(err) {
			return nil, err
		}
		// Sin fila todavía: provisionar desde la identidad, rol mínimo.
		id, ferr := s.deps.Store.GetIdentity(ctx)
		if ferr != nil || id == nil {
			return nil, ErrNoActiveSession
		}
		current = domain.FallbackProfile(id)
		current.Fallback = false // a partir de acá es una fila real
		log.Info("provisioning profile row", logger.IdentityID(id.ID))
	}

	if req.DisplayName != nil {
		current.DisplayName = *req.DisplayName
	}
	if req.Locale != nil {
		current.Locale = *req.Locale
	}
	if req.Timezone != nil {
		current.Timezone = *req.Timezone
	}
	if len(req.Overrides) > 0 {
		o, perr := authz.ParseOverrides(req.Overrides)
		if perr != nil {
			return nil, ErrInvalidOverride
		}
		current.Overrides = o
	}

	if err := s.deps.Store.UpsertProfile(ctx, current); err != nil {
		return nil, err
	}
	log.Debug("profile updated", logger.IdentityID(current.IdentityID))
	return current, nil
}
