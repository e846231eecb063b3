package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Issuer(t *testing.T) {
	t.Parallel()

	t.Run("new defaults", func(t *testing.T) {
		i, err := NewIssuer(Config{SecretKey: "secret"})
		require.NoError(t, err, "issuer should be created without errors")

		require.Equal(t, []byte("secret"), i.key, "secret key should be set")
		require.Equal(t, defaultTTL, i.ttl, "default TTL should be set")
		require.Equal(t, defaultSigningMethod, i.alg.Alg(), "default signing method should be set")
	})

	t.Run("new fails", func(t *testing.T) {
		_, err := NewIssuer(Config{})
		require.Error(t, err, "empty secret must be rejected")

		_, err = NewIssuer(Config{SecretKey: "secret", Alg: "XX999"})
		require.Error(t, err, "unknown algorithm must be rejected")
	})

	t.Run("issue signed token", func(t *testing.T) {
		i, err := NewIssuer(Config{SecretKey: "test-secret-key", TTL: 15 * time.Minute})
		require.NoError(t, err)

		issued, err := i.Issue("u1")
		require.NoError(t, err)

		claims := &jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(issued.Value, claims, func(t *jwt.Token) (any, error) {
			return []byte("test-secret-key"), nil
		})
		require.NoError(t, err)
		require.True(t, parsed.Valid, "token should be valid")

		assert.Equal(t, "u1", claims.Subject)
		assert.NotEmpty(t, claims.ID, "token has to has jti")
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
		assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt.Time, 0, "issued expiration should match claims")
	})

	t.Run("issue already expired token", func(t *testing.T) {
		i, err := NewIssuer(Config{SecretKey: "secret"})
		require.NoError(t, err)

		issued, err := i.IssueExpiring("u1", time.Now().Add(-10*time.Second))
		require.NoError(t, err, "expired tokens must still be minted")

		claim, err := Decode(issued.Value)
		require.NoError(t, err)
		require.Less(t, claim.ExpiresAt, time.Now().Unix())
	})

	t.Run("tokens differ", func(t *testing.T) {
		i, err := NewIssuer(Config{SecretKey: "secret"})
		require.NoError(t, err)

		first, err := i.Issue("u1")
		require.NoError(t, err)
		second, err := i.Issue("u1")
		require.NoError(t, err)

		require.NotEqual(t, first.Value, second.Value, "jti makes every token unique")
	})
}
