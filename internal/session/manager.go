// Package session implements the session bootstrap / profile resolver: the
// single writer of the resolved session state consumed by the route guard
// and the permission projection.
//
// State machine: Bootstrapping → {Authenticated(profile),
// Authenticated(fallback), Unauthenticated}, driven by Initialize, store
// auth events, Login, Logout and RefreshUser. Profile resolution is
// single-flight per identity id: concurrent triggers share one lookup and
// observe the same outcome.
package session

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/filmlot/sessiond/internal/domain"
	"github.com/filmlot/sessiond/internal/metrics"
	"github.com/filmlot/sessiond/internal/observability/logger"
	"github.com/filmlot/sessiond/internal/store"
)

// State is the resolved session state exposed to the rest of the app.
type State struct {
	CurrentUser *domain.UserProfile
	Loading     bool
}

// Deps contains the manager dependencies.
type Deps struct {
	Store   store.IdentityStore
	Metrics *metrics.Core // optional
}

// Manager produces and keeps current the resolved session state.
type Manager struct {
	store   store.IdentityStore
	metrics *metrics.Core

	// sf deduplicates concurrent profile lookups per identity id.
	sf singleflight.Group

	mu          sync.Mutex
	user        *domain.UserProfile
	loading     bool
	initialized bool
	closed      bool
	unsubscribe func()

	watchMu  sync.Mutex
	nextID   int
	watchers map[int]func(State)
}

// NewManager creates the manager in the Bootstrapping state (loading=true)
// and registers the standing auth-event subscription. Call Initialize once,
// and Close on teardown.
func NewManager(deps Deps) *Manager {
	m := &Manager{
		store:    deps.Store,
		metrics:  deps.Metrics,
		loading:  true,
		watchers: make(map[int]func(State)),
	}
	m.unsubscribe = deps.Store.Subscribe(m.handleAuthEvent)
	return m
}

// Snapshot returns the current resolved session state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{CurrentUser: m.user, Loading: m.loading}
}

// Watch registers an observer notified after each state change.
// Returns the deregistration func.
func (m *Manager) Watch(fn func(State)) func() {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = fn
	return func() {
		m.watchMu.Lock()
		defer m.watchMu.Unlock()
		delete(m.watchers, id)
	}
}

// Initialize restores any persisted session and resolves its profile.
// Runs once per process; a session-check failure degrades to "no session".
// Errors are never surfaced: the outcome is always a settled state with
// loading=false.
func (m *Manager) Initialize(ctx context.Context) {
	log := logger.From(ctx).With(
		logger.Component("session.manager"),
		logger.Op("Initialize"),
	)

	defer func() {
		m.mu.Lock()
		m.initialized = true
		m.mu.Unlock()
	}()

	sess, err := m.store.GetCurrentSession(ctx)
	if err != nil {
		// store unreachable during bootstrap: tratado como "no session"
		log.Warn("session check failed, treating as no session", logger.Err(err))
		m.commit(nil)
		return
	}
	if sess == nil {
		log.Debug("no persisted session")
		m.commit(nil)
		return
	}

	log.Debug("persisted session found", logger.IdentityID(sess.IdentityID))
	m.resolveProfile(ctx, sess.IdentityID, nil)
}

// handleAuthEvent is the standing subscription callback.
func (m *Manager) handleAuthEvent(event store.AuthEvent, sess *domain.Session) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if event == store.EventInitialSession && !m.initialized {
		// Initialize is already resolving this session. This check is an
		// optimization; the single-flight group is what actually prevents
		// duplicate lookups when the race slips through.
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	ctx := context.Background()
	switch event {
	case store.EventSignedIn, store.EventInitialSession:
		if sess != nil {
			m.resolveProfile(ctx, sess.IdentityID, nil)
		}
	case store.EventSignedOut:
		m.commit(nil)
	}
}

// resolveProfile is the single-flight-guarded core routine. The state
// mutation happens inside the flight so all concurrent callers observe one
// resolution. The flight is released on every exit path.
func (m *Manager) resolveProfile(ctx context.Context, identityID string, hint *domain.Identity) *domain.UserProfile {
	v, _, _ := m.sf.Do(identityID, func() (any, error) {
		p := m.lookupProfile(ctx, identityID, hint)
		m.commit(p)
		return p, nil
	})
	p, _ := v.(*domain.UserProfile)
	return p
}

// lookupProfile resolves the identity into a profile without touching
// shared state. Not-found and lookup errors degrade to a fallback profile;
// if even the identity fetch fails the result is nil.
func (m *Manager) lookupProfile(ctx context.Context, identityID string, hint *domain.Identity) *domain.UserProfile {
	log := logger.From(ctx).With(
		logger.Component("session.manager"),
		logger.Op("resolveProfile"),
		logger.IdentityID(identityID),
	)

	p, err := m.store.FindProfileByID(ctx, identityID)
	if err == nil {
		log.Debug("profile resolved", logger.Role(string(p.Role)))
		m.metrics.ObserveResolution("profile")
		return p
	}
	if !domain.IsNotFound(err) {
		log.Warn("profile lookup failed, degrading to fallback", logger.Err(err))
	} else {
		log.Debug("no profile row, building fallback")
	}

	id := hint
	if id == nil {
		fetched, ferr := m.store.GetIdentity(ctx)
		if ferr != nil {
			log.Warn("identity fetch failed", logger.Err(ferr))
		}
		id = fetched
	}
	if id == nil {
		m.metrics.ObserveResolution("none")
		return nil
	}

	m.metrics.ObserveResolution("fallback")
	return domain.FallbackProfile(id)
}

// Login authenticates against the store and awaits full profile resolution.
// Returns false for rejected credentials and for unexpected errors; never
// panics or propagates. Loading always ends false.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	log := logger.From(ctx).With(
		logger.Component("session.manager"),
		logger.Op("Login"),
	)

	m.setLoading(true)
	defer m.setLoading(false)

	res, err := m.store.SignInWithPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			log.Debug("credentials rejected")
			m.metrics.ObserveLogin("rejected")
		} else {
			log.Error("sign-in failed", logger.Err(err))
			m.metrics.ObserveLogin("error")
		}
		return false
	}

	// Pass the identity already in hand as the fallback hint so resolution
	// never needs a second identity fetch on the miss path.
	m.resolveProfile(ctx, res.Identity.ID, res.Identity)
	m.metrics.ObserveLogin("ok")
	return true
}

// Logout ends the session. Store-side errors are logged and swallowed; the
// local profile is cleared regardless for responsiveness.
func (m *Manager) Logout(ctx context.Context) {
	log := logger.From(ctx).With(
		logger.Component("session.manager"),
		logger.Op("Logout"),
	)

	m.setLoading(true)
	defer m.setLoading(false)

	if err := m.store.SignOut(ctx); err != nil {
		log.Warn("store sign-out failed, clearing local session anyway", logger.Err(err))
	}
	m.commitKeepLoading(nil)
	m.metrics.ObserveLogout()
}

// RefreshUser re-reads the current session and re-runs profile resolution.
// Used after the user edits their own profile.
func (m *Manager) RefreshUser(ctx context.Context) {
	log := logger.From(ctx).With(
		logger.Component("session.manager"),
		logger.Op("RefreshUser"),
	)

	m.setLoading(true)
	defer m.setLoading(false)

	sess, err := m.store.GetCurrentSession(ctx)
	if err != nil {
		log.Warn("session re-check failed", logger.Err(err))
		m.commitKeepLoading(nil)
		return
	}
	if sess == nil {
		m.commitKeepLoading(nil)
		return
	}
	m.resolveProfile(ctx, sess.IdentityID, nil)
}

// Close tears the manager down: cancels the subscription and blocks any
// in-flight resolution from mutating state afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	unsub := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// commit sets the current profile and clears loading, unless torn down.
func (m *Manager) commit(p *domain.UserProfile) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.user = p
	m.loading = false
	st := State{CurrentUser: m.user, Loading: m.loading}
	m.mu.Unlock()
	m.notify(st)
}

// commitKeepLoading sets the profile without touching the loading flag
// (the surrounding operation owns loading via its defer).
func (m *Manager) commitKeepLoading(p *domain.UserProfile) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.user = p
	st := State{CurrentUser: m.user, Loading: m.loading}
	m.mu.Unlock()
	m.notify(st)
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.loading = v
	st := State{CurrentUser: m.user, Loading: m.loading}
	m.mu.Unlock()
	m.notify(st)
}

func (m *Manager) notify(st State) {
	m.watchMu.Lock()
	fns := make([]func(State), 0, len(m.watchers))
	for _, fn := range m.watchers {
		fns = append(fns, fn)
	}
	m.watchMu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}
