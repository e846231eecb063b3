package models

import (
	"strings"
	"time"
)

// Access and refresh credentials held for the current session
// Empty string means the slot is absent
type CredentialPair struct {
	AccessToken  string
	RefreshToken string
}

// Both slots empty: nothing is stored
func (p CredentialPair) IsEmpty() bool {
	return strings.TrimSpace(p.AccessToken) == "" && strings.TrimSpace(p.RefreshToken) == ""
}

// Claim decoded from a compact token. Never persisted
type Claim struct {
	ExpiresAt int64 // unix seconds
}

func (c Claim) ExpiresTime() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// Token issued by the token issuer (dev tooling, tests)
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
