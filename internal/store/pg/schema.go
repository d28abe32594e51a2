package pg

import (
	"context"
	"fmt"
)

// schema mínimo: identidades + perfiles 1:1 por identity_id.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS identities (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		display_name  TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		metadata      JSONB,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		identity_id   UUID PRIMARY KEY REFERENCES identities(id) ON DELETE CASCADE,
		email         TEXT NOT NULL,
		display_name  TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'viewer',
		active        BOOLEAN NOT NULL DEFAULT true,
		locale        TEXT,
		timezone      TEXT,
		overrides     JSONB,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_profiles_role ON profiles(role)`,
}

// EnsureSchema crea las tablas si no existen. Idempotente.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pg: ensure schema: %w", err)
		}
	}
	return nil
}
