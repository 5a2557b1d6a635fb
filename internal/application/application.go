package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/eugenenazirov/offer-desk/internal/api"
	"github.com/eugenenazirov/offer-desk/internal/auth"
	"github.com/eugenenazirov/offer-desk/internal/backend"
	"github.com/eugenenazirov/offer-desk/internal/calculator"
	"github.com/eugenenazirov/offer-desk/internal/config"
	"github.com/eugenenazirov/offer-desk/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage    storage.Storage
	calculator calculator.Calculator
	backend    *backend.Client
	handler    *api.Handler
	router     http.Handler
	root       http.Handler
	logger     *zap.Logger
	server     *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetDimensions(cfg.InitialDimensions); err != nil {
		return nil, fmt.Errorf("failed to apply initial dimensions: %w", err)
	}

	client, err := backend.New(cfg.BackendURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithLogger(logger.Named("backend")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to parse locale: %w", err)
	}

	sessions := auth.NewSessions(cfg.SessionTTL, cfg.RememberSessionTTL)
	authSvc := auth.NewService(client, sessions, logger.Named("auth"))

	calc := calculator.New()
	handler := api.NewHandler(calc, store, client, authSvc,
		api.WithLogger(logger),
		api.WithLocale(locale),
	)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithAuthRequired(cfg.RequireAuth),
	)

	rootHandler := BuildRootHandler(apiRouter)

	return &App{
		storage:    store,
		calculator: calc,
		backend:    client,
		handler:    handler,
		router:     apiRouter,
		root:       rootHandler,
		logger:     logger,
		server:     NewServer(cfg, rootHandler),
	}, nil
}

// BuildRootHandler routes API requests and sends the bare root to the health check.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/api/health", http.StatusTemporaryRedirect)
	}))
	return mux
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

// Warmup loads the dimension table from the backend and probes the offer
// vocabulary. Both calls run concurrently. The configured dimensions stay in
// place when the dimension fetch fails; a failed vocabulary probe is only
// logged.
func (a *App) Warmup(ctx context.Context) error {
	var (
		dims     []calculator.PackageDimension
		modes    int
		vocabErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		dims, err = a.backend.Dimensions(ctx)
		return err
	})
	g.Go(func() error {
		vocabulary, err := a.backend.Vocabulary(ctx)
		modes, vocabErr = len(vocabulary.Modes), err
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("warm up from backend: %w", err)
	}

	if err := a.storage.SetDimensions(dims); err != nil {
		return fmt.Errorf("apply backend dimensions: %w", err)
	}

	if vocabErr != nil {
		a.logger.Warn("offer vocabulary unavailable during warm-up", zap.Error(vocabErr))
	}
	a.logger.Info("dimensions loaded from backend",
		zap.Int("package_types", len(dims)),
		zap.Int("modes", modes),
	)
	return nil
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

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.root
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
