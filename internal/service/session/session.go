// Package session manages the lifecycle of the access/refresh credential pair.
//
// Session is what the rest of the program talks to: it hands out fresh access
// tokens, reports the session state and lets callers install or drop credentials.
package session

import (
	"context"
	"fmt"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/logger"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/expiry"
)

type Session struct {
	*Coordinator

	observer *Observer
	store    credentialStore
	logger   logger.Logger
}

func New(cfg Config, store credentialStore, remote remoteAuthority, l logger.Logger, m recorder, opts ...expiry.Option) *Session {
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	policy := expiry.New(opts...)

	return &Session{
		Coordinator: NewCoordinator(cfg, store, remote, policy, l, m),
		observer:    NewObserver(store, policy),
		store:       store,
		logger:      l,
	}
}

// Stream of session states, see Observer.Observe
func (s *Session) ObserveSession(ctx context.Context) <-chan models.SessionState {
	return s.observer.Observe(ctx)
}

// Stored access token as is, without freshness check. Empty when logged out
func (s *Session) CurrentAccessToken() string {
	return s.store.Snapshot().AccessToken
}

// Something is stored, even if already expired
func (s *Session) HasCredentials() bool {
	return !s.store.Snapshot().IsEmpty()
}

func (s *Session) State() models.SessionState {
	return s.observer.State(s.store.Snapshot())
}

// Install credentials obtained by an external login
func (s *Session) Login(ctx context.Context, pair models.CredentialPair) error {
	if err := s.store.Write(ctx, pair); err != nil {
		return fmt.Errorf("error while saving login credentials. Err: %w", err)
	}

	s.logger.Info("Session started", "access_token", logger.Redact(pair.AccessToken))
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("error while clearing credentials. Err: %w", err)
	}

	s.logger.Info("Session ended", "reason", "logout")
	return nil
}
