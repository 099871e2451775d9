// Package session is the single source of truth for whether the user is
// signed in, and as whom.
//
// The bearer token is persisted in an injected KeyValueStore under TokenKey
// and the current Session is published to subscribers on every transition:
// sign-in, sign-out and forced sign-out.
package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTasks/internal/client/state"
	"github.com/atinyakov/GophTasks/internal/logger"
	"github.com/atinyakov/GophTasks/internal/models"
)

// TokenKey is the fixed key the bearer token is stored under.
const TokenKey = "auth_token"

// Session is the published authentication state. IsAuthenticated is true
// exactly when Token is non-empty, and CurrentUser is set only then.
type Session struct {
	Token           string
	IsAuthenticated bool
	CurrentUser     *models.UserIdentity
}

// Authenticator performs the remote sign-up and sign-in calls.
type Authenticator interface {
	SignUp(ctx context.Context, cred models.Credentials) error
	SignIn(ctx context.Context, cred models.Credentials) (string, error)
}

// Store owns the Session. No other component writes the token.
type Store struct {
	kv    KeyValueStore
	auth  Authenticator
	state *state.Cell[Session]
	log   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for session transitions.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = logger.OrNop(log) }
}

// New returns a Store restored from the token persisted in kv, if any.
// A persisted token that cannot be decoded is discarded.
func New(kv KeyValueStore, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		auth:  auth,
		state: state.NewCell(Session{}),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if token, ok := kv.Get(TokenKey); ok && token != "" {
		identity, err := DecodeIdentity(token)
		if err != nil {
			s.forceSignOut(err)
		} else {
			s.state.Set(Session{Token: token, IsAuthenticated: true, CurrentUser: identity})
			s.log.Debug("session restored", zap.String("user", identity.Username))
		}
	}
	return s
}

// SignUp registers an account. It does not sign the user in.
func (s *Store) SignUp(ctx context.Context, cred models.Credentials) error {
	if err := s.auth.SignUp(ctx, cred); err != nil {
		s.log.Info("sign up failed", zap.String("user", cred.Username), zap.Error(err))
		return err
	}
	s.log.Info("signed up", zap.String("user", cred.Username))
	return nil
}

// SignIn exchanges cred for a token, stores it and publishes the
// authenticated Session. A token whose payload cannot be decoded results
// in a forced sign-out and an unauthenticated Session, not an error.
func (s *Store) SignIn(ctx context.Context, cred models.Credentials) (Session, error) {
	token, err := s.auth.SignIn(ctx, cred)
	if err != nil {
		s.log.Info("sign in failed", zap.String("user", cred.Username), zap.Error(err))
		return s.Session(), err
	}

	identity, err := DecodeIdentity(token)
	if err != nil {
		s.forceSignOut(err)
		return s.Session(), nil
	}

	if err := s.kv.Set(TokenKey, token); err != nil {
		s.log.Warn("failed to persist token", zap.Error(err))
	}
	next := Session{Token: token, IsAuthenticated: true, CurrentUser: identity}
	s.state.Set(next)
	s.log.Info("signed in", zap.String("user", identity.Username), zap.String("id", identity.ID))
	return next, nil
}

// SignOut clears the token and publishes the unauthenticated Session.
// It always succeeds and may be called repeatedly.
func (s *Store) SignOut() {
	if err := s.kv.Remove(TokenKey); err != nil {
		s.log.Warn("failed to remove token", zap.Error(err))
	}
	s.state.Set(Session{})
	s.log.Info("signed out")
}

func (s *Store) forceSignOut(reason error) {
	s.log.Warn("forced sign-out", zap.Error(reason))
	s.SignOut()
}

// Session returns the latest published Session.
func (s *Store) Session() Session { return s.state.Get() }

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string { return s.state.Get().Token }

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool { return s.state.Get().IsAuthenticated }

// CurrentUser returns the signed-in identity, or nil.
func (s *Store) CurrentUser() *models.UserIdentity { return s.state.Get().CurrentUser }

// Subscribe registers fn for every Session transition.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}
