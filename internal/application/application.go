package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/zdvihtech/counterweight/internal/api"
	"github.com/zdvihtech/counterweight/internal/catalog"
	"github.com/zdvihtech/counterweight/internal/config"
	"github.com/zdvihtech/counterweight/internal/metrics"
	"github.com/zdvihtech/counterweight/internal/solver"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	catalog *catalog.Memory
	solver  solver.Solver
	handler *api.Handler
	router  http.Handler
	metrics *metrics.Metrics
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := catalog.NewMemory()
	if err := store.Replace(cfg.InitialMaterials); err != nil {
		return nil, fmt.Errorf("failed to apply initial materials: %w", err)
	}

	m := metrics.New()
	s := solver.New()
	handler := api.NewHandler(s, store, api.WithMetrics(m))
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithRouterMetrics(m),
	)

	server := NewServer(cfg, router)

	return &App{
		catalog: store,
		solver:  s,
		handler: handler,
		router:  router,
		metrics: m,
		logger:  logger,
		server:  server,
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
