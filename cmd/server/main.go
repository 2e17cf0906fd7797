// JobAgent - Conversational Job Application Assistant Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"jobagent/internal/agi"
	"jobagent/internal/api"
	"jobagent/internal/chat"
	"jobagent/internal/config"
	"jobagent/internal/conversation"
	"jobagent/internal/jobs"
	"jobagent/internal/letters"
	"jobagent/internal/llm"
	"jobagent/internal/middleware"
	"jobagent/internal/networking"
	"jobagent/internal/notify"
	"jobagent/internal/resume"
	"jobagent/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "agent_mock", cfg.Agent.Mock)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	// Browser-automation executor: real Sessions API or deterministic mock.
	var executor agi.Executor
	if cfg.Agent.Mock {
		executor = agi.NewMockExecutor(logger)
		slog.Info("Agent executor running in mock mode")
	} else {
		executor = agi.NewClient(agi.SessionsConfig{
			BaseURL:         cfg.Agent.BaseURL,
			APIKey:          cfg.Agent.APIKey,
			AgentName:       cfg.Agent.AgentName,
			RequestTimeout:  cfg.Agent.RequestTimeout,
			PollInterval:    cfg.Agent.PollInterval,
			CompleteTimeout: cfg.Agent.CompleteTimeout,
		}, logger)
	}

	completer := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model)

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			slog.Warn("Failed to initialize Telegram notifier, notifications disabled", "error", err)
		} else {
			notifier = tg
			slog.Info("Telegram notifications enabled", "chat_id", cfg.Telegram.ChatID)
		}
	}

	// Initialize services.
	generator := letters.NewGenerator(completer)
	jobSvc := jobs.NewService(repo, executor, generator, notifier, cfg.PlatformBaseURL, logger)
	netSvc := networking.NewService(repo, executor, notifier, cfg.PlatformBaseURL, logger)
	extractor := conversation.NewExtractor(completer, repo, logger)
	convSvc := conversation.NewService(repo, extractor, jobSvc, netSvc, logger)
	parser := resume.NewParser(completer)

	events := api.NewEventLog(0, logger)

	// Initialize handlers.
	handler := api.NewHandler(repo, convSvc, jobSvc, netSvc, parser, events, logger)
	wsHandler := chat.NewWebSocketHandler(convSvc, cfg.FrontendURL, cfg.IsDevelopment(), logger)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	handler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	// Create server.
	// Note: conversation turns can run for minutes while the browser agent
	// works, so no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start webhook event log sweeper.
	events.StartSweeper(ctx)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
