package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
)

const (
	defaultSigningMethod = "HS256"
	defaultTTL           = 15 * time.Minute
)

// Issuer config with sensible defaults
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Token lifetime used by Issue
	// If not set than default is used
	TTL time.Duration
}

// Issuer mints signed compact tokens. Used by dev tooling and by tests that need
// credentials with a chosen expiration
type Issuer struct {
	key []byte
	alg jwt.SigningMethod
	ttl time.Duration
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaultTTL
	}

	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method %q", cfg.Alg)
	}

	return &Issuer{
		key: []byte(cfg.SecretKey),
		alg: alg,
		ttl: cfg.TTL,
	}, nil
}

// Issue token that expires after configured TTL
func (i *Issuer) Issue(subject string) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	return i.IssueExpiring(subject, now.Add(i.ttl))
}

// Issue token with explicit expiration. Expiration in the past is allowed
func (i *Issuer) IssueExpiring(subject string, expiresAt time.Time) (models.IssuedToken, error) {
	var issued models.IssuedToken
	now := time.Now().Truncate(time.Second)
	expiresAt = expiresAt.Truncate(time.Second)

	t := jwt.NewWithClaims(
		i.alg,
		jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	)

	value, err := t.SignedString(i.key)
	if err != nil {
		return issued, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}
