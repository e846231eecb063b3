package session

import (
	"context"
	"time"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/logger"
)

const DefaultCheckInterval = time.Minute

type freshener interface {
	EnsureFresh(ctx context.Context) bool
	HasCredentials() bool
}

// Keeper renews the access token in background: once on start, then every interval
type Keeper struct {
	interval time.Duration
	session  freshener
	logger   logger.Logger
}

func NewKeeper(interval time.Duration, s freshener, l logger.Logger) *Keeper {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	return &Keeper{interval: interval, session: s, logger: l}
}

// Run until ctx is done. Returned channel is closed when keeper stopped
func (k *Keeper) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	k.logger.Debug("Starting keeper", "interval", k.interval)

	go func() {
		defer close(idleStopped)

		k.check(ctx)

		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				k.logger.Debug("Keeper stopped by context")
				return

			case <-ticker.C:
				k.check(ctx)
			}
		}
	}()

	return idleStopped
}

func (k *Keeper) check(ctx context.Context) {
	if !k.session.HasCredentials() {
		k.logger.Debug("Keeper tick: no session, skip")
		return
	}

	if !k.session.EnsureFresh(ctx) {
		k.logger.Warn("Keeper tick: session is not fresh")
	}
}
