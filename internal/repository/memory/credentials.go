package memory

import (
	"context"
	"sync"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/repository"
)

// Process-local medium. Credentials are lost on restart
type CredentialRepo struct {
	mu    sync.RWMutex
	slots map[string]string
}

var _ repository.CredentialRepo = (*CredentialRepo)(nil)

func NewCredentialRepo() *CredentialRepo {
	return &CredentialRepo{slots: make(map[string]string, 2)}
}

func (r *CredentialRepo) Load(_ context.Context) (models.CredentialPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return models.CredentialPair{
		AccessToken:  r.slots[repository.SlotAccessToken],
		RefreshToken: r.slots[repository.SlotRefreshToken],
	}, nil
}

func (r *CredentialRepo) Save(_ context.Context, pair models.CredentialPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := func(slot, value string) {
		if value == "" {
			delete(r.slots, slot)
			return
		}
		r.slots[slot] = value
	}
	set(repository.SlotAccessToken, pair.AccessToken)
	set(repository.SlotRefreshToken, pair.RefreshToken)

	return nil
}

func (r *CredentialRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.slots)
	return nil
}

func (r *CredentialRepo) Close() error { return nil }
