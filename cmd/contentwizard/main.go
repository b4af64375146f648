// Package main is the entry point for the ContentWizard API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contentwizard/internal/ai"
	"contentwizard/internal/cache"
	"contentwizard/internal/catalog"
	"contentwizard/internal/config"
	"contentwizard/internal/database"
	"contentwizard/internal/export"
	"contentwizard/internal/handlers"
	"contentwizard/internal/middleware"
	"contentwizard/internal/router"
	"contentwizard/internal/session"
	"contentwizard/internal/storage"
	"contentwizard/internal/store"
	"contentwizard/internal/telegram"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Load the template catalog. Integrity problems are fatal.
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	for _, w := range cat.Warnings() {
		slog.Warn("catalog warning",
			"content_type", w.ContentType,
			"block", w.Block,
			"template", w.Template,
			"variable", w.Variable,
			"message", w.Message,
		)
	}
	stats := cat.Stats()
	slog.Info("catalog loaded",
		"content_types", stats.ContentTypes,
		"niches", stats.Niches,
		"templates", stats.Templates,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions and constructor drafts).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, session.NewSigner(cfg.SessionSecret, cfg.SessionTTL))
	draftStore := cache.NewDraftStore(valkeyClient, cache.DefaultDraftTTL)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	projectStore := store.NewProjectStore(db)
	exportStore := store.NewExportStore(db)

	// Connect to S3-compatible object storage (optional; exports answer 503
	// without it).
	var objects export.ObjectStore
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		objects = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, exports disabled")
	}

	// The bot only delivers export links; login works without it in dev.
	var notifier export.Notifier
	if cfg.TelegramBotToken != "" {
		notifier = telegram.NewBot(cfg.TelegramBotToken, cfg.TelegramAPIURL)
	} else {
		slog.Warn("telegram bot token not set, export notifications disabled")
	}
	exporter := export.NewExporter(objects, exportStore, notifier, cfg.ExportURLTTL)

	// Initialize the AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"claude":  {APIKey: cfg.ClaudeAPIKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"gemini":  {APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
		"mistral": {APIKey: cfg.MistralAPIKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	})
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)
	writer := ai.NewWriter(aiRegistry, aiRegistry)

	aiLimiter := middleware.NewRateLimiter(cfg.AIRateLimit, time.Minute)
	defer aiLimiter.Stop()

	// Create handler groups with their dependencies.
	validator := telegram.NewValidator(cfg.TelegramBotToken, cfg.InitDataMaxAge)
	authHandlers := handlers.NewAuth(validator, sessionStore, userStore, cat)
	catalogHandlers := handlers.NewCatalog(cat)
	projectHandlers := handlers.NewProjects(projectStore, cat, exporter)
	aiHandlers := handlers.NewAI(writer, userStore)
	draftHandlers := handlers.NewDrafts(draftStore, cat)

	r := router.New(sessionStore, aiLimiter, cfg.CORSOrigins,
		authHandlers, catalogHandlers, projectHandlers, aiHandlers, draftHandlers)

	// WriteTimeout must accommodate AI endpoints that wait on LLM responses.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
