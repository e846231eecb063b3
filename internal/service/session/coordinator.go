package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/apperrors"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/logger"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/metrics"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/authority"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/expiry"
)

const (
	DefaultWaitTimeout    = 10 * time.Second
	DefaultRefreshTimeout = 30 * time.Second
)

type remoteAuthority interface {
	Exchange(ctx context.Context, refresh string) (authority.Grant, error)
}

type credentialStore interface {
	Snapshot() models.CredentialPair
	Write(ctx context.Context, pair models.CredentialPair) error
	CompareAndWrite(ctx context.Context, refresh string, pair models.CredentialPair) (bool, error)
	Clear(ctx context.Context) error
	Observe(ctx context.Context) <-chan models.CredentialPair
}

type expiryPolicy interface {
	IsUsable(raw string, buffer time.Duration) bool
}

type recorder interface {
	RefreshDone(outcome string, seconds float64)
	WaitDone(outcome string)
	FastPath()
	WaitersAdd(delta float64)
}

type Config struct {
	// Access token must stay valid at least that long to be handed out.
	// Zero only requires the token to be unexpired
	AccessBuffer time.Duration

	// How long a caller waits for somebody else's refresh
	WaitTimeout time.Duration

	// Upper bound for one refresh episode, exchange included
	RefreshTimeout time.Duration

	// Persist refresh token returned by the authority instead of keeping the old one
	AcceptRotatedRefresh bool
}

func (c Config) withDefaults() Config {
	if c.WaitTimeout == 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	if c.RefreshTimeout == 0 {
		c.RefreshTimeout = DefaultRefreshTimeout
	}
	return c
}

// One refresh episode. done is closed exactly once, after the store is updated
type flight struct {
	id      uuid.UUID
	done    chan struct{}
	outcome string
}

// Coordinator keeps the access token fresh.
// Concurrent callers share a single refresh: the first one drives it, the rest wait.
type Coordinator struct {
	store     credentialStore
	authority remoteAuthority
	policy    expiryPolicy
	cfg       Config

	logger  logger.Logger
	metrics recorder

	mu       sync.Mutex
	inflight *flight
}

func NewCoordinator(cfg Config, store credentialStore, remote remoteAuthority, policy expiryPolicy, l logger.Logger, m recorder) *Coordinator {
	if policy == nil {
		policy = expiry.New()
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	if m == nil {
		m = noopRecorder{}
	}

	return &Coordinator{
		store:     store,
		authority: remote,
		policy:    policy,
		cfg:       cfg.withDefaults(),
		logger:    l,
		metrics:   m,
	}
}

// EnsureFresh reports whether a usable access token is stored once it returns.
// It refreshes the token when needed. Failures never escape: the session is cleared and false returned.
func (c *Coordinator) EnsureFresh(ctx context.Context) bool {
	if c.accessUsable() {
		c.metrics.FastPath()
		return true
	}

	c.mu.Lock()
	if f := c.inflight; f != nil {
		c.mu.Unlock()
		return c.wait(ctx, f)
	}

	// Someone may have finished a refresh between the check above and the lock
	if c.accessUsable() {
		c.mu.Unlock()
		c.metrics.FastPath()
		return true
	}

	f := &flight{id: uuid.New(), done: make(chan struct{})}
	c.inflight = f
	c.mu.Unlock()

	return c.drive(ctx, f)
}

func (c *Coordinator) accessUsable() bool {
	return c.policy.IsUsable(c.store.Snapshot().AccessToken, c.cfg.AccessBuffer)
}

// Driver side. Caller cancellation does not interrupt the episode, waiters depend on it
func (c *Coordinator) drive(ctx context.Context, f *flight) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.RefreshTimeout)
	defer cancel()

	log := c.logger.With("flight_id", f.id.String())
	log.Debug("Refresh started")
	started := time.Now()

	outcome := c.refresh(ctx, log)
	c.metrics.RefreshDone(outcome, time.Since(started).Seconds())

	// A session replaced during the episode may be usable whatever the outcome
	ok := outcome == metrics.RefreshSuccess || c.accessUsable()

	c.mu.Lock()
	f.outcome = outcome
	c.inflight = nil
	close(f.done)
	c.mu.Unlock()

	log.Debug("Refresh finished", "outcome", outcome, "duration", time.Since(started))
	return ok
}

func (c *Coordinator) refresh(ctx context.Context, log logger.Logger) string {
	pair := c.store.Snapshot()

	if strings.TrimSpace(pair.RefreshToken) == "" {
		log.Info("Session ended", "reason", apperrors.ErrRefreshTokenMissing)
		c.clear(ctx, log, pair.RefreshToken)
		return metrics.RefreshMissing
	}

	if !c.policy.IsUsable(pair.RefreshToken, expiry.RefreshBuffer) {
		log.Info("Session ended", "reason", apperrors.ErrRefreshTokenExpired, "refresh_token", logger.Redact(pair.RefreshToken))
		c.clear(ctx, log, pair.RefreshToken)
		return metrics.RefreshExpired
	}

	grant, err := c.authority.Exchange(ctx, pair.RefreshToken)
	if err != nil {
		outcome := metrics.RefreshRejected
		if errors.Is(err, apperrors.ErrRemoteUnavailable) {
			outcome = metrics.RefreshUnavailable
		}
		log.Warn("Session ended, refresh failed", "reason", err, "outcome", outcome)
		c.clear(ctx, log, pair.RefreshToken)
		return outcome
	}

	next := models.CredentialPair{AccessToken: grant.AccessToken, RefreshToken: pair.RefreshToken}
	if c.cfg.AcceptRotatedRefresh && grant.RefreshToken != "" {
		next.RefreshToken = grant.RefreshToken
	}

	// Logout or login during the exchange wins over its result
	stored, err := c.store.CompareAndWrite(ctx, pair.RefreshToken, next)
	if err != nil {
		log.Error("Session ended, failed to store refreshed credentials", "error", err)
		c.clear(ctx, log, pair.RefreshToken)
		return metrics.RefreshStoreFailed
	}
	if !stored {
		log.Info("Refreshed credentials dropped, session changed during exchange")
		return metrics.RefreshSuperseded
	}

	log.Info("Access token refreshed", "access_token", logger.Redact(next.AccessToken), "rotated", next.RefreshToken != pair.RefreshToken)
	return metrics.RefreshSuccess
}

// Clears only the session the episode started with
func (c *Coordinator) clear(ctx context.Context, log logger.Logger, refresh string) {
	if _, err := c.store.CompareAndWrite(ctx, refresh, models.CredentialPair{}); err != nil {
		log.Error("Failed to clear credentials", "error", err)
	}
}

// Waiter side. Never calls the authority and never clears the session
func (c *Coordinator) wait(ctx context.Context, f *flight) bool {
	c.metrics.WaitersAdd(1)
	defer c.metrics.WaitersAdd(-1)

	timer := time.NewTimer(c.cfg.WaitTimeout)
	defer timer.Stop()

	select {
	case <-f.done:
		c.logger.Debug("Awaited refresh finished", "flight_id", f.id.String(), "outcome", f.outcome)
		c.metrics.WaitDone(metrics.WaitCompleted)

	case <-timer.C:
		c.logger.Warn("Stopped waiting for refresh", "flight_id", f.id.String(), "error", apperrors.ErrWaitTimedOut, "timeout", c.cfg.WaitTimeout)
		c.metrics.WaitDone(metrics.WaitTimedOut)

	case <-ctx.Done():
		c.metrics.WaitDone(metrics.WaitCanceled)
		return false
	}

	return c.accessUsable()
}

type noopRecorder struct{}

func (noopRecorder) RefreshDone(string, float64) {}
func (noopRecorder) WaitDone(string)             {}
func (noopRecorder) FastPath()                   {}
func (noopRecorder) WaitersAdd(float64)          {}
