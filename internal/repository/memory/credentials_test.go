package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
)

func Test_CredentialRepo(t *testing.T) {
	t.Parallel()

	t.Run("empty load", func(t *testing.T) {
		r := NewCredentialRepo()

		got, err := r.Load(t.Context())

		require.NoError(t, err)
		require.True(t, got.IsEmpty())
	})

	t.Run("save and load", func(t *testing.T) {
		r := NewCredentialRepo()
		pair := models.CredentialPair{AccessToken: "access", RefreshToken: "refresh"}

		require.NoError(t, r.Save(t.Context(), pair))
		got, err := r.Load(t.Context())

		require.NoError(t, err)
		require.Equal(t, pair, got)
	})

	t.Run("empty value removes slot", func(t *testing.T) {
		r := NewCredentialRepo()
		require.NoError(t, r.Save(t.Context(), models.CredentialPair{AccessToken: "access", RefreshToken: "refresh"}))

		require.NoError(t, r.Save(t.Context(), models.CredentialPair{RefreshToken: "refresh"}))
		got, err := r.Load(t.Context())

		require.NoError(t, err)
		require.Equal(t, models.CredentialPair{RefreshToken: "refresh"}, got)
		require.Len(t, r.slots, 1)
	})

	t.Run("clear", func(t *testing.T) {
		r := NewCredentialRepo()
		require.NoError(t, r.Save(t.Context(), models.CredentialPair{AccessToken: "access", RefreshToken: "refresh"}))

		require.NoError(t, r.Clear(t.Context()))
		got, err := r.Load(t.Context())

		require.NoError(t, err)
		require.True(t, got.IsEmpty())
	})

	t.Run("no torn reads", func(t *testing.T) {
		r := NewCredentialRepo()
		pairs := []models.CredentialPair{
			{AccessToken: "a1", RefreshToken: "r1"},
			{AccessToken: "a2", RefreshToken: "r2"},
		}
		require.NoError(t, r.Save(t.Context(), pairs[0]))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				_ = r.Save(t.Context(), pairs[i%2])
			}
		}()
		go func() {
			defer wg.Done()
			for range 1000 {
				got, _ := r.Load(t.Context())
				if got != pairs[0] && got != pairs[1] {
					t.Errorf("torn pair observed: %+v", got)
					return
				}
			}
		}()
		wg.Wait()
	})
}
