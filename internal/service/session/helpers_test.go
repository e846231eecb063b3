package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/repository/memory"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/authority"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/credstore"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/token"
)

// Token expiring after d (negative d: already expired)
func expiringIn(t *testing.T, d time.Duration) string {
	t.Helper()

	issuer, err := token.NewIssuer(token.Config{SecretKey: "test-secret"})
	require.NoError(t, err)

	issued, err := issuer.IssueExpiring("tester", time.Now().Add(d))
	require.NoError(t, err)

	return issued.Value
}

func newStore(t *testing.T, pair models.CredentialPair) *credstore.Store {
	t.Helper()

	s := credstore.New(memory.NewCredentialRepo(), nil)
	require.NoError(t, s.Write(t.Context(), pair))
	return s
}

// Authority double. Blocks every exchange until release is closed, when release is set
type fakeAuthority struct {
	grant   authority.Grant
	err     error
	release chan struct{}

	calls   atomic.Int32
	lastCtx atomic.Pointer[context.Context]
	gotArgs chan string

	// Exchange context was already done when the answer was sent
	canceled atomic.Bool
}

func (a *fakeAuthority) Exchange(ctx context.Context, refresh string) (authority.Grant, error) {
	a.calls.Add(1)
	a.lastCtx.Store(&ctx)
	if a.gotArgs != nil {
		a.gotArgs <- refresh
	}

	if a.release != nil {
		<-a.release
	}
	a.canceled.Store(ctx.Err() != nil)

	return a.grant, a.err
}

// Store double that fails writes and lets clears through
type brokenStore struct {
	*credstore.Store
	writeErr error
	cleared  atomic.Bool
}

func (s *brokenStore) CompareAndWrite(ctx context.Context, refresh string, pair models.CredentialPair) (bool, error) {
	if !pair.IsEmpty() {
		return false, s.writeErr
	}
	s.cleared.Store(true)
	return s.Store.CompareAndWrite(ctx, refresh, pair)
}

// Recorder double tracking callers blocked on a running refresh
type waitRecorder struct {
	noopRecorder
	waiters  atomic.Int64
	outcomes chan string
}

func (r *waitRecorder) WaitersAdd(delta float64) {
	r.waiters.Add(int64(delta))
}

func (r *waitRecorder) RefreshDone(outcome string, _ float64) {
	if r.outcomes != nil {
		r.outcomes <- outcome
	}
}
