// Package memory implementa store.IdentityStore en memoria.
// Pensado para desarrollo y tests: seed de identidades/perfiles vía Options,
// sesiones firmadas con el issuer HS256 y slot de sesión persistida.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/filmlot/sessiond/internal/domain"
	"github.com/filmlot/sessiond/internal/security/password"
	"github.com/filmlot/sessiond/internal/store"
	"github.com/filmlot/sessiond/internal/token"
)

type identityRecord struct {
	identity domain.Identity
	hash     string
}

// Store es el identity store en memoria.
type Store struct {
	store.Broadcaster

	issuer *token.Issuer

	mu         sync.Mutex
	byEmail    map[string]*identityRecord
	byID       map[string]*identityRecord
	profiles   map[string]*domain.UserProfile
	current    *domain.Session
	signOutErr error // inyectable en tests: SignOut reporta pero igual limpia
}

// Options configura el store en memoria.
type Options struct {
	Issuer *token.Issuer
}

// New crea un store vacío.
func New(opts Options) *Store {
	return &Store{
		issuer:   opts.Issuer,
		byEmail:  make(map[string]*identityRecord),
		byID:     make(map[string]*identityRecord),
		profiles: make(map[string]*domain.UserProfile),
	}
}

// SeedIdentity registra una identidad con password. Retorna el ID asignado.
func (s *Store) SeedIdentity(email, plainPassword, displayName string) (string, error) {
	email = normalizeEmail(email)
	hash, err := password.Hash(password.Default, plainPassword)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return "", domain.ErrConflict
	}
	rec := &identityRecord{
		identity: domain.Identity{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: displayName,
			CreatedAt:   time.Now().UTC(),
		},
		hash: hash,
	}
	s.byEmail[email] = rec
	s.byID[rec.identity.ID] = rec
	return rec.identity.ID, nil
}

// SeedProfile registra una fila de perfil.
func (s *Store) SeedProfile(p *domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.profiles[p.IdentityID] = &cp
}

// SetSignOutError inyecta un error de backend en SignOut (tests).
func (s *Store) SetSignOutError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signOutErr = err
}

// RestoreSession instala una sesión persistida para una identidad seedeada,
// como si el proceso anterior la hubiera dejado. No emite eventos.
func (s *Store) RestoreSession(identityID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[identityID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sess, err := s.mintLocked(rec)
	if err != nil {
		return nil, err
	}
	s.current = sess
	return sess, nil
}

func (s *Store) mintLocked(rec *identityRecord) (*domain.Session, error) {
	now := time.Now().UTC()
	raw, exp, err := s.issuer.Mint(rec.identity.ID, rec.identity.Email, now)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		Token:      raw,
		IdentityID: rec.identity.ID,
		Email:      rec.identity.Email,
		ExpiresAt:  exp,
	}, nil
}

func (s *Store) GetCurrentSession(_ context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, nil
	}
	if s.current.Expired(time.Now()) {
		s.current = nil
		return nil, nil
	}
	cp := *s.current
	return &cp, nil
}

func (s *Store) SignInWithPassword(_ context.Context, email, plain string) (*store.SignInResult, error) {
	email = normalizeEmail(email)

	s.mu.Lock()
	rec, ok := s.byEmail[email]
	if !ok || !password.Verify(plain, rec.hash) {
		s.mu.Unlock()
		return nil, domain.ErrInvalidCredentials
	}
	sess, err := s.mintLocked(rec)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.current = sess
	id := rec.identity
	s.mu.Unlock()

	cp := *sess
	s.Emit(store.EventSignedIn, &cp)
	return &store.SignInResult{Identity: &id, Session: sess}, nil
}

func (s *Store) SignOut(_ context.Context) error {
	s.mu.Lock()
	err := s.signOutErr
	s.current = nil
	s.mu.Unlock()

	s.Emit(store.EventSignedOut, nil)
	return err
}

func (s *Store) Subscribe(cb store.AuthCallback) func() {
	unsub := s.Broadcaster.Subscribe(cb)

	// Si hay sesión persistida, replicar el evento inicial del stream.
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur != nil && !cur.Expired(time.Now()) {
		cp := *cur
		cb(store.EventInitialSession, &cp)
	}
	return unsub
}

func (s *Store) FindProfileByID(_ context.Context, identityID string) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[identityID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) GetIdentity(_ context.Context) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, nil
	}
	rec, ok := s.byID[s.current.IdentityID]
	if !ok {
		return nil, nil
	}
	id := rec.identity
	return &id, nil
}

func (s *Store) UpsertProfile(_ context.Context, p *domain.UserProfile) error {
	if p == nil || p.IdentityID == "" {
		return domain.ErrInvalidInput
	}
	if p.Fallback {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.UpdatedAt = time.Now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = cp.UpdatedAt
	}
	s.profiles[p.IdentityID] = &cp
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
