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
	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/analysis"
	"github.com/starford/dagaz/internal/api"
	"github.com/starford/dagaz/internal/draftservice"
	"github.com/starford/dagaz/internal/feed"
	"github.com/starford/dagaz/internal/llm"
	"github.com/starford/dagaz/internal/mcpserver"
	"github.com/starford/dagaz/internal/settings"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/store"
	"github.com/starford/dagaz/internal/timeline"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("media_path", cfg.Media.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize the draft store.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Ensure the media directory exists, then open the store.
	if err := os.MkdirAll(cfg.Media.Path, 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	media, err := storage.NewFS(cfg.Media.Path)
	if err != nil {
		return fmt.Errorf("init media store: %w", err)
	}

	// Prompt settings: built-in defaults, optionally overridden from a
	// YAML file that is hot-reloaded on change.
	var prompts settings.Provider = settings.Static(settings.Defaults())
	var promptFile *settings.FileProvider
	if cfg.Prompts.Path != "" {
		promptFile = settings.NewFileProvider(cfg.Prompts.Path, logger)
		prompts = promptFile
	}

	// Upstream clients.
	searcher := feed.NewClient(cfg.Feed.SearchURL, cfg.Feed.Timeout())
	llmClient := llm.NewHTTPClient(cfg.LLM.Endpoint, cfg.LLM.Model, cfg.LLM.APIKey, cfg.LLM.Timeout())

	generator := timeline.NewGenerator(llmClient, prompts, logger)
	analyzer := analysis.NewGenerator(llmClient, prompts, logger)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	drafts := draftservice.NewService(db, broker.PublishDraftEvent)

	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		srv := mcpserver.New(drafts, generator, searcher, media)
		return srv.ServeStdio()
	}

	attachments := api.NewAttachmentHandler(media)
	apiRouter := api.NewRouter(drafts, generator, analyzer, searcher, attachments,
		cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Uploaded media (read access is unauthenticated).
	r.Get("/media/{filename}", attachments.ServeFile)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("media_root", media.Root()))

	g, gCtx := errgroup.WithContext(ctx)

	// Hot-reload prompt overrides on file change.
	if promptFile != nil {
		g.Go(func() error {
			if err := promptFile.Watch(gCtx); err != nil {
				logger.Warn("prompt watch stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
