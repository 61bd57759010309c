// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/planwise-ai/calendar-assistant/internal/agent"
	"github.com/planwise-ai/calendar-assistant/internal/checkpoint"
	"github.com/planwise-ai/calendar-assistant/internal/config"
	"github.com/planwise-ai/calendar-assistant/internal/google"
	"github.com/planwise-ai/calendar-assistant/internal/handler"
	"github.com/planwise-ai/calendar-assistant/internal/llm"
	"github.com/planwise-ai/calendar-assistant/internal/middleware"
	natsclient "github.com/planwise-ai/calendar-assistant/internal/nats"
	"github.com/planwise-ai/calendar-assistant/internal/service"
	"github.com/planwise-ai/calendar-assistant/pkg/logger"
	"github.com/planwise-ai/calendar-assistant/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "calendar-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Select the checkpoint backend
	var store checkpoint.Store
	var nc *natsclient.Client
	switch cfg.CheckpointBackend {
	case "nats":
		nc, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer nc.Close()

		natsStore := checkpoint.NewNATSStore(nc)
		if err := natsStore.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure checkpoint stream", zap.Error(err))
			os.Exit(1)
		}
		store = natsStore
	default:
		store = checkpoint.NewMemoryStore()
	}

	// Initialize LLM client
	provider := llm.Provider(cfg.DefaultLLM)
	apiKey := cfg.AnthropicAPIKey
	if provider == llm.ProviderOpenAI {
		apiKey = cfg.OpenAIAPIKey
	}
	llmClient, err := llm.NewClient(provider, apiKey)
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.CalendarTimezone)
	if err != nil {
		log.Error("invalid calendar timezone", zap.String("timezone", cfg.CalendarTimezone), zap.Error(err))
		os.Exit(1)
	}

	// Initialize services
	credStore := google.NewMemoryCredentialStore()
	authorizer := google.NewAuthorizer(google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, credStore)
	authSvc := service.NewAuthService(authorizer, cfg.CalendarTimezone)

	agentCfg := agent.Config{
		Model:        cfg.ModelName,
		Temperature:  cfg.Temperature,
		MaxTurns:     cfg.AgentMaxTurns,
		ModelTimeout: cfg.ModelTimeout,
		ToolTimeout:  cfg.ToolTimeout,
	}
	chatSvc := service.NewChatService(llmClient, store, agentCfg, cfg.WorkflowMaxCycles, loc, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(nc)
	chatHandler := handler.NewChatHandler(chatSvc, authSvc, log)
	authHandler := handler.NewAuthHandler(authSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RequireScope("calendar"))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat/reply", chatHandler.Reply)

		r.Route("/auth/google", func(r chi.Router) {
			r.Get("/url", authHandler.AuthURL)
			r.Post("/callback", authHandler.Callback)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
