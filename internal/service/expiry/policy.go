package expiry

import (
	"strings"
	"time"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/token"
)

const (
	// Access token is renewed ahead of its real expiry so requests never leave with a dying credential
	AccessBuffer = 300 * time.Second

	// Refresh token is checked without lookahead: it gates whether renewal is attempted at all
	RefreshBuffer time.Duration = 0
)

type Option func(*Policy)

// Use custom clock. Tests mostly
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		p.now = now
	}
}

// Decides whether a token can still be used
// Safe for concurrent use
type Policy struct {
	now func() time.Time
}

func New(opts ...Option) *Policy {
	p := &Policy{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Token is usable if its expiration is strictly after now+buffer
// Blank or undecodable tokens are never usable
func (p *Policy) IsUsable(raw string, buffer time.Duration) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}

	claim, err := token.Decode(raw)
	if err != nil {
		return false
	}

	return claim.ExpiresAt > p.now().Add(buffer).Unix()
}
