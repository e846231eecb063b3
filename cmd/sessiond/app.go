package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/db"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/handlers"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/logger"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/metrics"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/repository"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/repository/memory"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/repository/postgres"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/repository/redis"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/authority"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/credstore"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/session"
)

const (
	shutdownTimeout = 5 * time.Second
	requestTimeout  = time.Minute
)

type App struct {
	ListenAddr string
	Handler    http.Handler

	keeper *session.Keeper
	repo   repository.CredentialRepo
	logger logger.Logger
}

func NewApp(ctx context.Context, c *Config) (*App, error) {
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger. Err: %w", err)
	}

	repo, err := openRepo(ctx, c)
	if err != nil {
		return nil, err
	}

	app, err := newApp(ctx, c, repo, l)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	return app, nil
}

func newApp(ctx context.Context, c *Config, repo repository.CredentialRepo, l logger.Logger) (*App, error) {
	store := credstore.New(repo, l.WithGroup("store"))
	if err := store.Load(ctx); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client := authority.NewClient(authority.Config{Address: c.AuthorityAddr, Timeout: c.RefreshTimeout}, l.WithGroup("authority"))

	sess := session.New(session.Config{
		AccessBuffer:         c.AccessBuffer,
		WaitTimeout:          c.WaitTimeout,
		RefreshTimeout:       c.RefreshTimeout,
		AcceptRotatedRefresh: c.AcceptRotatedRefresh,
	}, store, client, l.WithGroup("session"), metrics.New(reg))

	// Seed credentials win over the stored ones
	if c.AccessToken != "" || c.RefreshToken != "" {
		err := sess.Login(ctx, models.CredentialPair{AccessToken: c.AccessToken, RefreshToken: c.RefreshToken})
		if err != nil {
			return nil, err
		}
	}

	router := handlers.NewRouter(sess, l, handlers.Options{
		Metrics: metrics.Handler(reg),
		Timeout: requestTimeout,
	})

	return &App{
		ListenAddr: c.AdminAddr,
		Handler:    router,
		keeper:     session.NewKeeper(c.CheckInterval, sess, l.WithGroup("keeper")),
		repo:       repo,
		logger:     l,
	}, nil
}

func openRepo(ctx context.Context, c *Config) (repository.CredentialRepo, error) {
	switch c.StoreBackend {
	case BackendPostgres:
		pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
		}
		return postgres.NewCredentialRepo(pool, postgres.DefaultNamespace, pool.Close), nil

	case BackendRedis:
		client, err := redis.Connect(ctx, c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
		}
		return redis.NewCredentialRepo(client, redis.DefaultKey), nil

	case BackendMemory:
		return memory.NewCredentialRepo(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
}

// Run keeper and admin server until ctx is done, then stop both gracefully
func (a *App) Run(ctx context.Context) error {
	defer a.repo.Close() // nolint:errcheck

	httpServer := &http.Server{
		Addr:              a.ListenAddr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	keeperStopped := a.keeper.Run(srvCtx)

	idleConnsClosed := make(chan struct{})
	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			a.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		a.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	a.logger.Info("Starting admin server", "address", a.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-keeperStopped

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
