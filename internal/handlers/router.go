package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/handlers/middleware"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/logger"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
)

type sessionService interface {
	// Make sure stored access token is usable, refreshing it when needed
	EnsureFresh(ctx context.Context) bool

	// Current state derived from stored credentials
	State() models.SessionState

	// Stream of state transitions, closed with ctx
	ObserveSession(ctx context.Context) <-chan models.SessionState

	Login(ctx context.Context, pair models.CredentialPair) error
	Logout(ctx context.Context) error
}

type Options struct {
	// Served on GET /metrics when set
	Metrics http.Handler

	// Deadline for regular requests. Websocket streams are not limited
	Timeout time.Duration
}

// NewRouter builds local admin surface of the session daemon
func NewRouter(session sessionService, l logger.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimiddleware.RequestID,
		chimiddleware.Recoverer,
		middleware.LoggerMiddleware(l),
	)

	h := &SessionHandler{session: session, logger: l}

	r.Route("/session", func(r chi.Router) {
		r.Get("/watch", h.watch)

		r.Group(func(r chi.Router) {
			if opts.Timeout > 0 {
				r.Use(chimiddleware.Timeout(opts.Timeout))
			}
			r.Get("/", h.state)
			r.Post("/refresh", h.refresh)
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
		})
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	return r
}
