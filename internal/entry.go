// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/studyplan/internal/api"
	"github.com/starford/studyplan/internal/docwatch"
	"github.com/starford/studyplan/internal/events"
	"github.com/starford/studyplan/internal/explainer"
	"github.com/starford/studyplan/internal/mcpserver"
	"github.com/starford/studyplan/internal/planner"
	"github.com/starford/studyplan/internal/storage"
	"github.com/starford/studyplan/internal/store"
	"github.com/starford/studyplan/internal/studyservice"
)

const defaultVersion = "dev"

// components is the wired object graph shared by the HTTP and MCP modes.
type components struct {
	logger *slog.Logger
	db     *store.DB
	files  *storage.FS
	svc    *studyservice.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: defaultVersion, logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger installs the structured JSON logger as the default.
func newLogger(app *application) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// bootstrap opens storage and the database and builds the service.
// The caller closes rt.db.
func bootstrap(app *application, logger *slog.Logger, publisher studyservice.Publisher) (*components, error) {
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("documents_path", cfg.Storage.DocumentsPath),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("knowledge_file", cfg.Explainer.KnowledgeFile),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Storage.DocumentsPath, 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}
	files, err := storage.NewFS(cfg.Storage.DocumentsPath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	table, err := explainer.LoadTable(cfg.Explainer.KnowledgeFile)
	if err != nil {
		return nil, fmt.Errorf("init explainer: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	svc := studyservice.New(studyservice.Deps{
		Subjects:    db,
		Documents:   db,
		Preferences: db,
		Plans:       db,
		Files:       files,
		Planner:     planner.New(cfg.Planner),
		Explainer:   explainer.New(logger, table, explainer.NewDocuments(db)),
		Events:      publisher,
		Logger:      logger,
	})

	// Pick up files dropped into the directory while we were down.
	res, err := docwatch.Sync(context.Background(), svc, files, logger)
	if err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial sync done",
			slog.Int("registered", res.Registered),
			slog.Int("forgotten", res.Forgotten),
			slog.Int("knowledge_entries", table.Len()))
	}

	return &components{logger: logger, db: db, files: files, svc: svc}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(app)
	broker := events.NewBroker(cfg.Events.Throttle, logger)
	defer broker.Close()

	rt, err := bootstrap(app, logger, broker)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.App.HTTP.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := rt.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api; the SSE stream lives at /api/events.
	r.Mount("/api", api.NewRouter(rt.svc, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the index in step with files added or removed outside the API.
	g.Go(func() error {
		if err := docwatch.Watch(gCtx, rt.svc, rt.files, docwatch.DefaultDebounce, logger); err != nil {
			logger.Error("document watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Open SSE streams would otherwise hold Shutdown for the full timeout.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup context so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio until the client disconnects.
func RunMCP(_ context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	rt, err := bootstrap(app, newLogger(app), nil)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	rt.logger.Info("MCP server starting", slog.String("version", app.version))
	if err := mcpserver.New(rt.svc, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
