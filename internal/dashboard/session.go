package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/validate"
)

// logoutTimeout bounds the best-effort backend logout.
const logoutTimeout = 5 * time.Second

// Snapshot is a consistent view of the session at one instant.
type Snapshot struct {
	Phase         auth.Phase
	Identity      auth.Identity
	Authenticated bool
}

// SessionStore owns the credential and the identity of the signed-in user.
// It is the only writer of the credential file and installs itself as the
// API client's token source and 401 handler.
type SessionStore struct {
	client AuthAPI
	creds  auth.CredentialStore
	bus    *eventbus.EventBus
	log    zerolog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	phase auth.Phase
	cred  auth.Credential
	gen   uint64 // bumped on every transition
}

// NewSessionStore creates a store in the Initializing phase and wires it
// into client.
func NewSessionStore(client AuthAPI, creds auth.CredentialStore, bus *eventbus.EventBus, log zerolog.Logger) *SessionStore {
	s := &SessionStore{
		client: client,
		creds:  creds,
		bus:    bus,
		log:    log.With().Str("component", "session").Logger(),
		now:    time.Now,
		phase:  auth.PhaseInitializing,
	}

	client.SetTokenSource(s.Token)
	client.OnUnauthorized(s.handleUnauthorized)
	return s
}

// Init restores the stored credential and confirms it with the backend.
// It returns an error only when the backend could not be reached; the
// session is then Unauthenticated but the credential stays on disk so a
// later Init can retry.
func (s *SessionStore) Init(ctx context.Context) error {
	cred, err := s.creds.Load()
	if err != nil {
		if !errors.Is(err, auth.ErrNoCredential) {
			s.log.Warn().Err(err).Msg("discarding unreadable credential")
			s.clearStored()
		}
		s.transition(auth.PhaseUnauthenticated, auth.Credential{})
		return nil
	}

	if cred.Expired(s.now()) {
		s.log.Info().Str("username", cred.Identity.Username).Msg("stored credential expired")
		s.clearStored()
		s.transition(auth.PhaseUnauthenticated, auth.Credential{})
		return nil
	}

	gen := s.transition(auth.PhaseTentative, cred)

	identity, err := s.client.Me(ctx)

	switch {
	case err == nil:
		cred.Identity = identity
		cred.SavedAt = s.now()
		if s.transitionFrom(gen, auth.PhaseConfirmed, cred) {
			s.persist(cred)
		}
		return nil
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrForbidden):
		s.log.Info().Err(err).Msg("stored credential rejected")
		if s.transitionFrom(gen, auth.PhaseUnauthenticated, auth.Credential{}) {
			s.clearStored()
		}
		return nil
	default:
		s.log.Warn().Err(err).Msg("could not confirm stored credential")
		s.transitionFrom(gen, auth.PhaseUnauthenticated, auth.Credential{})
		return fmt.Errorf("confirm session: %w", err)
	}
}

// Login validates creds, authenticates and persists the new credential.
func (s *SessionStore) Login(ctx context.Context, creds auth.Credentials) Result {
	if err := creds.Validate(); err != nil {
		return failed(err)
	}

	res, err := s.client.Login(ctx, creds)
	if err != nil {
		s.log.Debug().Err(err).Str("username", creds.Username).Msg("login failed")
		return failed(err)
	}

	cred := auth.Credential{Token: res.Token, Identity: res.Identity, SavedAt: s.now()}
	s.persist(cred)
	s.transition(auth.PhaseConfirmed, cred)

	s.log.Info().Str("username", res.Identity.Username).Msg("logged in")
	return Result{Success: true, Data: res.Identity}
}

// Register creates an account. The session is not changed; the user signs
// in separately.
func (s *SessionStore) Register(ctx context.Context, u auth.NewUser) Result {
	if err := u.Validate(); err != nil {
		return failed(err)
	}

	res, err := s.client.Register(ctx, u)
	if err != nil {
		return failed(err)
	}

	identity := res.Identity
	if identity.Username == "" {
		identity.Username = u.Username
		identity.Email = u.Email
	}
	return Result{Success: true, Data: identity}
}

// UsernameAvailable asks the backend whether username can still be
// registered. Malformed names are rejected without a request.
func (s *SessionStore) UsernameAvailable(ctx context.Context, username string) (bool, string, error) {
	if err := validate.Username(username); err != nil {
		return false, "", criterio.NewFieldErrors("username", err)
	}
	return s.client.UsernameAvailable(ctx, username)
}

// Logout forgets the credential locally, then tells the backend. Backend
// failures are logged and never reported.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.RLock()
	token := s.cred.Token
	s.mu.RUnlock()

	s.clearStored()
	s.transition(auth.PhaseUnauthenticated, auth.Credential{})

	if token == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, logoutTimeout)
	defer cancel()
	if err := s.client.Logout(ctx, token); err != nil {
		s.log.Debug().Err(err).Msg("backend logout failed")
	}
}

// Snapshot returns the phase and identity together.
func (s *SessionStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Phase:         s.phase,
		Identity:      s.cred.Identity,
		Authenticated: s.authenticatedLocked(),
	}
}

// Identity returns the current identity, which is zero when signed out.
func (s *SessionStore) Identity() auth.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Identity
}

// Phase returns the current session phase.
func (s *SessionStore) Phase() auth.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// IsAuthenticated is true only for a confirmed, unexpired credential.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

// Token returns the bearer token to send, or "" when no request should be
// authenticated.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Token
}

func (s *SessionStore) authenticatedLocked() bool {
	return s.phase == auth.PhaseConfirmed && s.cred.Token != "" && !s.cred.Expired(s.now())
}

// handleUnauthorized runs when an authenticated request was answered 401.
func (s *SessionStore) handleUnauthorized(err error) {
	s.mu.RLock()
	hadToken := s.cred.Token != ""
	s.mu.RUnlock()
	if !hadToken {
		return
	}

	s.log.Info().Err(err).Msg("credential rejected by backend")
	s.clearStored()
	s.transition(auth.PhaseUnauthenticated, auth.Credential{})
	s.bus.PublishSessionExpired(eventbus.SessionExpiredPayload{Reason: api.Message(err)})
}

// transition moves to phase with cred and publishes session.changed. It
// returns the new generation.
func (s *SessionStore) transition(phase auth.Phase, cred auth.Credential) uint64 {
	s.mu.Lock()
	prev := s.apply(phase, cred)
	gen := s.gen
	s.mu.Unlock()

	s.publish(prev, phase, cred.Identity)
	return gen
}

// transitionFrom applies the transition only if nothing else changed the
// session since generation gen. Login, Logout and 401 handling all win
// over a slow Init.
func (s *SessionStore) transitionFrom(gen uint64, phase auth.Phase, cred auth.Credential) bool {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return false
	}
	prev := s.apply(phase, cred)
	s.mu.Unlock()

	s.publish(prev, phase, cred.Identity)
	return true
}

func (s *SessionStore) apply(phase auth.Phase, cred auth.Credential) auth.Phase {
	prev := s.phase
	s.phase = phase
	s.cred = cred
	s.gen++
	return prev
}

func (s *SessionStore) publish(prev, phase auth.Phase, identity auth.Identity) {
	s.log.Debug().Stringer("from", prev).Stringer("to", phase).Msg("session phase")
	s.bus.PublishSessionChanged(eventbus.SessionChangedPayload{
		Phase:    phase,
		Previous: prev,
		Identity: identity,
	})
}

func (s *SessionStore) persist(cred auth.Credential) {
	if err := s.creds.Save(cred); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist credential")
	}
}

func (s *SessionStore) clearStored() {
	if err := s.creds.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear credential")
	}
}
