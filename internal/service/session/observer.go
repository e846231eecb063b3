package session

import (
	"context"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/expiry"
)

// Observer turns credential changes into session states
type Observer struct {
	store  credentialStore
	policy expiryPolicy
}

func NewObserver(store credentialStore, policy expiryPolicy) *Observer {
	if policy == nil {
		policy = expiry.New()
	}
	return &Observer{store: store, policy: policy}
}

// Stream starts with the current state. Equal consecutive states are emitted once.
// Slow readers get the latest state. Closed when ctx is done.
func (o *Observer) Observe(ctx context.Context) <-chan models.SessionState {
	in := o.store.Observe(ctx)
	out := make(chan models.SessionState, 1)

	go func() {
		defer close(out)

		var (
			last    models.SessionState
			started bool
		)
		for pair := range in {
			state := o.State(pair)
			if started && state == last {
				continue
			}
			started, last = true, state

			select {
			case <-out:
			default:
			}
			out <- state
		}
	}()

	return out
}

func (o *Observer) State(pair models.CredentialPair) models.SessionState {
	if o.policy.IsUsable(pair.AccessToken, 0) {
		return models.Authenticated(pair.AccessToken)
	}
	return models.Unauthenticated()
}
