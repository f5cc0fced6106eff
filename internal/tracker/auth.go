package tracker

import (
	"context"
	"errors"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/session"
)

// SignUp registers a new account and signs it in.
func (t *Tracker) SignUp(ctx context.Context, name, email, password string) (core.Identity, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, err := t.session.SignUp(name, email, password)
	if err != nil {
		t.sessionLogger().InfoContext(ctx, "Sign up rejected",
			log.FieldOperation, log.OpSignUp, log.FieldEmail, email, log.FieldError, err)
		return core.Identity{}, err
	}
	t.sessionLogger().InfoContext(ctx, "Account registered",
		log.FieldOperation, log.OpSignUp, log.FieldEmail, id.Email)

	return id, errors.Join(
		t.persist(ctx, "registry", t.gw.SaveCredentialRegistry(ctx, t.session.Registry())),
		t.persist(ctx, "session", t.gw.SaveSession(ctx, id)),
	)
}

// SignIn checks the password of a registered email. A failure leaves the
// session untouched.
func (t *Tracker) SignIn(ctx context.Context, email, password string) (core.Identity, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, err := t.session.SignIn(email, password)
	if err != nil {
		t.sessionLogger().InfoContext(ctx, "Sign in rejected",
			log.FieldOperation, log.OpSignIn, log.FieldEmail, email)
		return core.Identity{}, err
	}
	t.sessionLogger().InfoContext(ctx, "Signed in",
		log.FieldOperation, log.OpSignIn, log.FieldEmail, id.Email)
	return id, t.persist(ctx, "session", t.gw.SaveSession(ctx, id))
}

// SignInWithProvider signs in through the configured identity provider.
func (t *Tracker) SignInWithProvider(ctx context.Context) (core.Identity, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, err := t.session.SignInWithProvider(ctx)
	if err != nil {
		return core.Identity{}, err
	}
	t.sessionLogger().InfoContext(ctx, "Signed in with provider",
		log.FieldOperation, log.OpSignIn, log.FieldEmail, id.Email)
	return id, t.persist(ctx, "session", t.gw.SaveSession(ctx, id))
}

// SignOut clears the session.
func (t *Tracker) SignOut(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.session.SignOut()
	t.sessionLogger().InfoContext(ctx, "Signed out", log.FieldOperation, log.OpSignOut)
	return t.persist(ctx, "session", t.gw.ClearSession(ctx))
}

// Session reports the session state and the signed in identity.
func (t *Tracker) Session() (session.State, *core.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.session.Current(); ok {
		return session.Authenticated, &id
	}
	return session.Anonymous, nil
}

func (t *Tracker) sessionLogger() *log.Logger {
	return t.logger.WithComponent(log.ComponentSession)
}

func (t *Tracker) persist(ctx context.Context, what string, err error) error {
	if err == nil {
		return nil
	}
	err = persistenceError(err)
	t.logger.WarnContext(ctx, "State not saved, keeping in-memory state",
		log.FieldOperation, log.OpPersist, "record", what, log.FieldError, err)
	return err
}
