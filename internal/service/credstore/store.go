// Package credstore holds the credential pair of the running session.
//
// Store caches the pair in memory over a durable repository.CredentialRepo and
// fans every change out to observers. Writes are serialized: the medium is
// updated first, then the cache, then observers are notified, so nobody ever
// sees a half-updated pair.
package credstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/logger"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/repository"
)

type Store struct {
	repo   repository.CredentialRepo
	logger logger.Logger

	// Serializes write + publish and guards subscribers
	mu      sync.Mutex
	current atomic.Pointer[models.CredentialPair]
	subs    map[uint64]chan models.CredentialPair
	nextID  uint64
}

func New(repo repository.CredentialRepo, l logger.Logger) *Store {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	s := &Store{
		repo:   repo,
		logger: l,
		subs:   make(map[uint64]chan models.CredentialPair),
	}
	s.current.Store(&models.CredentialPair{})

	return s
}

// Hydrate cache from the medium. Called once at start
func (s *Store) Load(ctx context.Context) error {
	pair, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("error while loading credentials. Err: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(pair)

	s.logger.Debug("Credentials loaded", "access_token", logger.Redact(pair.AccessToken), "has_refresh", pair.RefreshToken != "")
	return nil
}

// Current pair. Never blocks on writers
func (s *Store) Snapshot() models.CredentialPair {
	return *s.current.Load()
}

// Replace both slots at once
func (s *Store) Write(ctx context.Context, pair models.CredentialPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, pair); err != nil {
		return fmt.Errorf("error while saving credentials. Err: %w", err)
	}
	s.publish(pair)

	return nil
}

// Remove both slots at once
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("error while clearing credentials. Err: %w", err)
	}
	s.publish(models.CredentialPair{})

	return nil
}

// CompareAndWrite stores pair only while the stored refresh token is still refresh.
// An empty pair clears both slots. Reports whether the pair was applied.
func (s *Store) CompareAndWrite(ctx context.Context, refresh string, pair models.CredentialPair) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Load().RefreshToken != refresh {
		return false, nil
	}

	if pair.IsEmpty() {
		if err := s.repo.Clear(ctx); err != nil {
			return false, fmt.Errorf("error while clearing credentials. Err: %w", err)
		}
	} else if err := s.repo.Save(ctx, pair); err != nil {
		return false, fmt.Errorf("error while saving credentials. Err: %w", err)
	}
	s.publish(pair)

	return true, nil
}

// Observe returns a stream starting with the current pair followed by every change.
// A slow reader skips intermediate values and gets the latest one.
// Channel is closed when ctx is done.
func (s *Store) Observe(ctx context.Context) <-chan models.CredentialPair {
	ch := make(chan models.CredentialPair, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- *s.current.Load()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()

		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Must be called with mu held
func (s *Store) publish(pair models.CredentialPair) {
	s.current.Store(&pair)

	for _, ch := range s.subs {
		// Drop the value nobody read yet, only the latest matters
		select {
		case <-ch:
		default:
		}
		ch <- pair
	}
}
