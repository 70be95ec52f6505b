// Package main is the entry point for the API server.
package main

import (
	"context"
	"errors"
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

	"github.com/wavechat-ai/wavechat-server/internal/bus"
	"github.com/wavechat-ai/wavechat-server/internal/config"
	"github.com/wavechat-ai/wavechat-server/internal/handler"
	"github.com/wavechat-ai/wavechat-server/internal/llm"
	"github.com/wavechat-ai/wavechat-server/internal/middleware"
	natsclient "github.com/wavechat-ai/wavechat-server/internal/nats"
	"github.com/wavechat-ai/wavechat-server/internal/service"
	"github.com/wavechat-ai/wavechat-server/internal/store"
	"github.com/wavechat-ai/wavechat-server/pkg/logger"
	"github.com/wavechat-ai/wavechat-server/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

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
		tp, err := tracing.InitTracer(ctx, "wavechat-server", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to MongoDB
	mongoClient, err := store.Dial(ctx, cfg.MongoURI)
	if err != nil {
		log.Error("failed to connect to MongoDB", zap.Error(err))
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)

	db := mongoClient.Database(cfg.MongoDatabase)
	chatStore := store.NewMongoChatStore(db)
	settingsStore := store.NewMongoSettingsStore(db)

	// Select the live-update bus transport: NATS when configured, the
	// in-process broker otherwise.
	var broker bus.Broker
	var nc *natsclient.Client
	if cfg.NATSURL != "" {
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
		broker = nc
	} else {
		broker = bus.NewMemoryBroker()
	}

	hub := bus.NewHub(broker, log)

	// Initialize completion provider
	var llmClient llm.Client
	switch llm.Provider(cfg.LLMProvider) {
	case llm.ProviderAnthropic:
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		llmClient, err = llm.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL)
	}
	if err != nil {
		log.Warn("failed to create completion client, replies degrade to the apology fallback", zap.Error(err))
		llmClient = nil
	}
	completer := llm.NewFallbackCompleter(llmClient, log)

	// Initialize services
	settingsSvc := service.NewSettingsService(settingsStore, cfg.DefaultModel, log)
	chatSvc := service.NewChatService(chatStore, settingsSvc, completer, hub, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(func(ctx context.Context) error {
		if err := mongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("mongodb not reachable: %w", err)
		}
		if nc != nil && !nc.IsConnected() {
			return errors.New("NATS not connected")
		}
		return nil
	})
	chatHandler := handler.NewChatHandler(chatSvc, log)
	adminHandler := handler.NewAdminHandler(chatSvc, settingsSvc, log)
	liveHandler := handler.NewLiveHandler(hub, cfg.AdminPassword, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", middleware.AdminPasswordHeader},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Live channel
	r.Get("/ws", liveHandler.Serve)

	// Public chat routes
	r.Route("/chat", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/", chatHandler.Submit)
		r.Get("/", chatHandler.ListRecent)
		r.Get("/user/{userId}", chatHandler.ListByUser)
		r.Get("/{id}", chatHandler.Get)
	})

	// Admin routes behind the shared-secret gate
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.AdminPassword))

		r.Get("/settings", adminHandler.GetSettings)
		r.Put("/settings", adminHandler.UpdateSettings)

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", adminHandler.ListChats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", adminHandler.GetChat)
				r.Delete("/", adminHandler.DeleteChat)
				r.Post("/reply", adminHandler.Reply)
				r.Put("/toggle-auto-reply", adminHandler.ToggleAutoReply)
			})
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
