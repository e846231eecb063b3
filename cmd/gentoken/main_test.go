package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/token"
)

func Test_run(t *testing.T) {
	t.Run("token with ttl", func(t *testing.T) {
		var out bytes.Buffer

		err := run([]string{"--secret", "s3cr3t", "--ttl", "1h"}, &out)

		require.NoError(t, err)
		claim, err := token.Decode(strings.TrimSpace(out.String()))
		require.NoError(t, err, "printed value must be a compact token")
		require.WithinDuration(t, time.Now().Add(time.Hour), claim.ExpiresTime(), 2*time.Second)
	})

	t.Run("expired token", func(t *testing.T) {
		var out bytes.Buffer

		err := run([]string{"-s", "s3cr3t", "-t", "-1m", "-v"}, &out)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		claim, err := token.Decode(lines[0])
		require.NoError(t, err)
		require.True(t, claim.ExpiresTime().Before(time.Now()))
		require.True(t, strings.HasPrefix(lines[1], "expires at "))
	})

	t.Run("secret required", func(t *testing.T) {
		err := run([]string{"--ttl", "1h"}, &bytes.Buffer{})

		require.Error(t, err)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		err := run([]string{"--secret", "x", "--alg", "none-such"}, &bytes.Buffer{})

		require.Error(t, err)
	})
}
