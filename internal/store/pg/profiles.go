package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/filmlot/sessiond/internal/authz"
	"github.com/filmlot/sessiond/internal/domain"
)

// nullIfEmpty retorna nil si el string está vacío, para columnas opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Store) FindProfileByID(ctx context.Context, identityID string) (*domain.UserProfile, error) {
	const query = `
		SELECT identity_id, email, display_name, role, active, locale, timezone,
		       overrides, created_at, updated_at
		FROM profiles
		WHERE identity_id = $1
	`
	var (
		p         domain.UserProfile
		role      string
		locale    *string
		timezone  *string
		overrides []byte
	)
	err := s.pool.QueryRow(ctx, query, identityID).Scan(
		&p.IdentityID, &p.Email, &p.DisplayName, &role, &p.Active,
		&locale, &timezone, &overrides, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: profile lookup: %w", err)
	}

	p.Role = domain.ParseRole(role)
	if locale != nil {
		p.Locale = *locale
	}
	if timezone != nil {
		p.Timezone = *timezone
	}

	// Validar overrides en el borde donde entran al sistema.
	o, err := authz.ParseOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("pg: profile %s: %w", identityID, err)
	}
	p.Overrides = o

	return &p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *domain.UserProfile) error {
	if p == nil || p.IdentityID == "" {
		return domain.ErrInvalidInput
	}
	if p.Fallback {
		// Los perfiles fallback viven solo en memoria.
		return domain.ErrInvalidInput
	}

	var overrides []byte
	if p.Overrides != nil {
		b, err := json.Marshal(p.Overrides)
		if err != nil {
			return fmt.Errorf("pg: marshal overrides: %w", err)
		}
		overrides = b
	}

	const query = `
		INSERT INTO profiles (identity_id, email, display_name, role, active, locale, timezone, overrides, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (identity_id) DO UPDATE SET
			email        = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			role         = EXCLUDED.role,
			active       = EXCLUDED.active,
			locale       = EXCLUDED.locale,
			timezone     = EXCLUDED.timezone,
			overrides    = EXCLUDED.overrides,
			updated_at   = now()
	`
	_, err := s.pool.Exec(ctx, query,
		p.IdentityID, p.Email, p.DisplayName, string(p.Role), p.Active,
		nullIfEmpty(p.Locale), nullIfEmpty(p.Timezone), overrides,
	)
	if err != nil {
		return fmt.Errorf("pg: upsert profile: %w", err)
	}
	return nil
}
