package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Run("counters", func(t *testing.T) {
		m := New(prometheus.NewRegistry())

		m.RefreshDone(RefreshSuccess, 0.1)
		m.RefreshDone(RefreshSuccess, 0.2)
		m.RefreshDone(RefreshRejected, 0.3)
		m.WaitDone(WaitTimedOut)
		m.FastPath()
		m.WaitersAdd(3)
		m.WaitersAdd(-1)

		assert.InDelta(t, 2, testutil.ToFloat64(m.refreshes.WithLabelValues(RefreshSuccess)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.refreshes.WithLabelValues(RefreshRejected)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.waits.WithLabelValues(WaitTimedOut)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.fastPath), 0)
		assert.InDelta(t, 2, testutil.ToFloat64(m.waiters), 0)
	})

	t.Run("handler exposes collectors", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := New(reg)
		m.RefreshDone(RefreshExpired, 0)

		rec := httptest.NewRecorder()
		Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `sessiond_refresh_total{outcome="refresh_expired"} 1`)
	})
}
