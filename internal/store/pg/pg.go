// Package pg implementa store.IdentityStore sobre PostgreSQL.
// Identidades y perfiles viven en tablas; las sesiones en el cache de bytes
// bajo "sid:"+sha256(token), nunca el token crudo.
package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmlot/sessiond/internal/cache"
	"github.com/filmlot/sessiond/internal/domain"
	"github.com/filmlot/sessiond/internal/security/password"
	"github.com/filmlot/sessiond/internal/store"
	"github.com/filmlot/sessiond/internal/token"
)

// Config configura la conexión PostgreSQL.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store implementa store.IdentityStore sobre pgxpool + cache.
type Store struct {
	store.Broadcaster

	pool   *pgxpool.Pool
	cache  cache.Cache
	issuer *token.Issuer

	// slot de sesión persistida del proceso (único writer: este store)
	mu      sync.Mutex
	current string // token crudo; "" = sin sesión
}

// cachedSession es el payload serializado en el cache de sesiones.
type cachedSession struct {
	IdentityID string    `json:"identity_id"`
	Email      string    `json:"email"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// New crea el store y verifica la conexión.
func New(ctx context.Context, cfg Config, c cache.Cache, issuer *token.Issuer) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	} else {
		poolCfg.MinConns = 2
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}

	return &Store{pool: pool, cache: c, issuer: issuer}, nil
}

// Close cierra el pool.
func (s *Store) Close() {
	s.pool.Close()
}

func sessionKey(rawToken string) string {
	return "sid:" + token.SHA256Base64URL(rawToken)
}

func (s *Store) GetCurrentSession(ctx context.Context) (*domain.Session, error) {
	s.mu.Lock()
	raw := s.current
	s.mu.Unlock()
	if raw == "" {
		return nil, nil
	}

	b, err := s.cache.Get(ctx, sessionKey(raw))
	if cache.IsNotFound(err) {
		// Sesión revocada o expirada en el backend: limpiar el slot.
		s.clearCurrent(raw)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pg: session lookup: %w", err)
	}

	var cs cachedSession
	if err := json.Unmarshal(b, &cs); err != nil {
		s.clearCurrent(raw)
		return nil, nil
	}
	if time.Now().After(cs.ExpiresAt) {
		s.clearCurrent(raw)
		return nil, nil
	}
	return &domain.Session{
		Token:      raw,
		IdentityID: cs.IdentityID,
		Email:      cs.Email,
		ExpiresAt:  cs.ExpiresAt,
	}, nil
}

func (s *Store) clearCurrent(raw string) {
	s.mu.Lock()
	if s.current == raw {
		s.current = ""
	}
	s.mu.Unlock()
}

func (s *Store) SignInWithPassword(ctx context.Context, email, plain string) (*store.SignInResult, error) {
	const query = `
		SELECT id, email, display_name, password_hash, metadata, created_at
		FROM identities
		WHERE email = lower($1)
	`
	var (
		id       domain.Identity
		hash     string
		metadata []byte
	)
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&id.ID, &id.Email, &id.DisplayName, &hash, &metadata, &id.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("pg: identity lookup: %w", err)
	}
	if !password.Verify(plain, hash) {
		return nil, domain.ErrInvalidCredentials
	}
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &id.Metadata)
	}

	now := time.Now().UTC()
	raw, exp, err := s.issuer.Mint(id.ID, id.Email, now)
	if err != nil {
		return nil, fmt.Errorf("pg: mint session: %w", err)
	}

	payload, _ := json.Marshal(cachedSession{IdentityID: id.ID, Email: id.Email, ExpiresAt: exp})
	if err := s.cache.Set(ctx, sessionKey(raw), payload, time.Until(exp)); err != nil {
		return nil, fmt.Errorf("pg: persist session: %w", err)
	}

	sess := &domain.Session{Token: raw, IdentityID: id.ID, Email: id.Email, ExpiresAt: exp}

	s.mu.Lock()
	s.current = raw
	s.mu.Unlock()

	cp := *sess
	s.Emit(store.EventSignedIn, &cp)
	return &store.SignInResult{Identity: &id, Session: sess}, nil
}

func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	raw := s.current
	s.current = ""
	s.mu.Unlock()

	var err error
	if raw != "" {
		err = s.cache.Delete(ctx, sessionKey(raw))
	}
	s.Emit(store.EventSignedOut, nil)
	return err
}

func (s *Store) Subscribe(cb store.AuthCallback) func() {
	unsub := s.Broadcaster.Subscribe(cb)

	// Replicar el evento inicial si hay sesión persistida vigente.
	if sess, err := s.GetCurrentSession(context.Background()); err == nil && sess != nil {
		cb(store.EventInitialSession, sess)
	}
	return unsub
}

func (s *Store) GetIdentity(ctx context.Context) (*domain.Identity, error) {
	sess, err := s.GetCurrentSession(ctx)
	if err != nil || sess == nil {
		return nil, err
	}

	const query = `
		SELECT id, email, display_name, metadata, created_at
		FROM identities
		WHERE id = $1
	`
	var (
		id       domain.Identity
		metadata []byte
	)
	err = s.pool.QueryRow(ctx, query, sess.IdentityID).Scan(
		&id.ID, &id.Email, &id.DisplayName, &metadata, &id.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pg: identity fetch: %w", err)
	}
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &id.Metadata)
	}
	return &id, nil
}
