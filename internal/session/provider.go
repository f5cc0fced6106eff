package session

import (
	"context"

	"budget/internal/core"
)

// IdentityProvider authenticates through a third party and returns the
// resulting identity.
type IdentityProvider interface {
	Authenticate(ctx context.Context) (core.Identity, error)
}

// StubProvider always succeeds with a fixed placeholder identity. It stands
// in for a federated sign in flow.
type StubProvider struct {
	Identity core.Identity
}

// NewStubProvider returns the placeholder Google identity.
func NewStubProvider() StubProvider {
	return StubProvider{Identity: core.Identity{Name: "Google User", Email: "user@gmail.com"}}
}

func (p StubProvider) Authenticate(_ context.Context) (core.Identity, error) {
	return p.Identity, nil
}
