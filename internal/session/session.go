// Package session holds the credential registry and the current identity.
//
// The store is a two state machine, Anonymous and Authenticated. Password
// checks go through a PasswordVerifier and third party sign in through an
// IdentityProvider, so both can be replaced without touching the transitions.
package session

import (
	"context"
	"fmt"
	"strings"

	"budget/internal/core"
)

// State is the session state.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Store is the session state machine. It is not safe for concurrent use;
// callers serialise access.
type Store struct {
	registry core.Registry
	current  *core.Identity
	verifier PasswordVerifier
	provider IdentityProvider
}

// Option configures a Store.
type Option func(*Store)

// WithVerifier sets the password scheme. Defaults to PlaintextVerifier.
func WithVerifier(v PasswordVerifier) Option {
	return func(s *Store) { s.verifier = v }
}

// WithProvider sets the third party identity provider. Defaults to StubProvider.
func WithProvider(p IdentityProvider) Option {
	return func(s *Store) { s.provider = p }
}

// New creates a store from a persisted registry and an optional restored
// identity.
func New(registry core.Registry, restored *core.Identity, opts ...Option) *Store {
	s := &Store{
		registry: registry.Clone(),
		verifier: PlaintextVerifier{},
		provider: NewStubProvider(),
	}
	if restored != nil && !restored.IsZero() {
		id := *restored
		s.current = &id
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns Anonymous or Authenticated.
func (s *Store) State() State {
	if s.current == nil {
		return Anonymous
	}
	return Authenticated
}

// Current returns the signed in identity, if any.
func (s *Store) Current() (core.Identity, bool) {
	if s.current == nil {
		return core.Identity{}, false
	}
	return *s.current, true
}

// Registry returns a copy of the credential registry.
func (s *Store) Registry() core.Registry {
	return s.registry.Clone()
}

// SignUp registers a new email and signs it in. An email that is already
// registered fails with core.ErrEmailTaken and changes nothing.
func (s *Store) SignUp(name, email, password string) (core.Identity, error) {
	id := core.Identity{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := id.Validate(); err != nil {
		return core.Identity{}, err
	}
	if password == "" {
		return core.Identity{}, fmt.Errorf("password: %w", core.ErrMissingField)
	}
	if _, taken := s.registry[id.Email]; taken {
		return core.Identity{}, core.ErrEmailTaken
	}
	stored, err := s.verifier.Hash(password)
	if err != nil {
		return core.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	next := s.registry.Clone()
	next[id.Email] = core.Credential{Name: id.Name, Password: stored}
	s.registry = next
	s.current = &id
	return id, nil
}

// SignIn authenticates an email against the registry. On failure the
// session is left as it was.
func (s *Store) SignIn(email, password string) (core.Identity, error) {
	email = strings.TrimSpace(email)
	cred, ok := s.registry[email]
	if !ok || !s.verifier.Verify(cred.Password, password) {
		return core.Identity{}, core.ErrInvalidCredentials
	}
	id := core.Identity{Name: cred.Name, Email: email}
	s.current = &id
	return id, nil
}

// SignInWithProvider signs in with whatever identity the provider returns.
func (s *Store) SignInWithProvider(ctx context.Context) (core.Identity, error) {
	id, err := s.provider.Authenticate(ctx)
	if err != nil {
		return core.Identity{}, fmt.Errorf("provider sign in: %w", err)
	}
	s.current = &id
	return id, nil
}

// SignOut returns to Anonymous.
func (s *Store) SignOut() {
	s.current = nil
}
