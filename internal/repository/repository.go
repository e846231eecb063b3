package repository

import (
	"context"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
)

// Names of the two durable slots
const (
	SlotAccessToken  = "access_token"
	SlotRefreshToken = "refresh_token"
)

// Durable medium holding the credential pair
// Absent slot is returned as empty string
type CredentialRepo interface {
	// Load both slots. Empty medium is not an error
	Load(ctx context.Context) (models.CredentialPair, error)

	// Save both slots at once. Empty value removes the slot
	// Must be atomic: concurrent Load never sees one slot updated and the other stale
	Save(ctx context.Context, pair models.CredentialPair) error

	// Remove both slots at once
	Clear(ctx context.Context) error

	// Release underlying resources
	Close() error
}
