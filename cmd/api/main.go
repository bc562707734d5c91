package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/helptech/helptech-platform/internal/catalog"
	"github.com/helptech/helptech-platform/internal/chat"
	"github.com/helptech/helptech-platform/internal/config"
	"github.com/helptech/helptech-platform/internal/httpapi"
	"github.com/helptech/helptech-platform/internal/llm"
	"github.com/helptech/helptech-platform/internal/notify"
	"github.com/helptech/helptech-platform/internal/observability/metrics"
	"github.com/helptech/helptech-platform/internal/store"
	"github.com/helptech/helptech-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting helptech chat API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"chat_mode", cfg.ChatMode,
	)

	ctx := context.Background()

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	chatMetrics := metrics.NewChatMetrics(registry)

	// Storage (optional)
	var storage store.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		storage = store.NewPostgresPool(pool)
		logger.Info("postgres storage enabled")
	} else {
		logger.Warn("DATABASE_URL not set; bookings and chat logs are not persisted")
	}

	// Session snapshots (optional)
	var snapshots *chat.SessionStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
		snapshots = chat.NewSessionStore(rdb, cfg.SessionTTL, nil)
		logger.Info("redis session snapshots enabled", "ttl", cfg.SessionTTL.String())
	}

	// Generative completion provider (optional)
	completer := buildCompleter(ctx, cfg, logger)

	// Email notifications
	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
		logger.Info("sendgrid email sender enabled")
	} else {
		sender = notify.NewStubSender(logger)
		logger.Warn("SENDGRID_API_KEY not set; emails are logged, not sent")
	}
	notifier := notify.NewService(sender, cfg.SupportEmail, logger)

	// Dialog engine and orchestrator
	engine := chat.NewEngine(catalog.Default())

	delay := chat.TypingDelay
	if !cfg.TypingDelay {
		delay = chat.NoDelay
	}
	opts := []chat.Option{
		chat.WithMode(chat.Mode(cfg.ChatMode)),
		chat.WithDelay(delay),
		chat.WithDedupeWindow(cfg.DedupeWindow),
		chat.WithNotifier(notifier),
		chat.WithMetrics(chatMetrics),
	}
	if storage != nil {
		opts = append(opts, chat.WithStorage(storage))
	}
	if snapshots != nil {
		opts = append(opts, chat.WithSnapshots(snapshots))
	}
	if completer != nil {
		opts = append(opts, chat.WithCompleter(completer))
	}
	orchestrator := chat.NewOrchestrator(engine, logger, opts...)

	// HTTP surface
	chatHandler := httpapi.NewHandler(orchestrator, logger)
	webchatHandler := httpapi.NewWebChatHandler(orchestrator, logger)

	router := httpapi.NewRouter(&httpapi.RouterConfig{
		Logger:             logger,
		Chat:               chatHandler,
		WebChat:            webchatHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.AllowedOrigin,
		RateLimitPerSecond: 5,
		RateLimitBurst:     20,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildCompleter wires the configured completion provider, with the other
// provider as automatic fallback when both keys are present.
func buildCompleter(ctx context.Context, cfg *config.Config, logger *logging.Logger) llm.Client {
	var openaiClient llm.Client
	if cfg.OpenAIAPIKey != "" {
		c, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			logger.Error("failed to create openai client", "error", err)
			os.Exit(1)
		}
		openaiClient = c
	}

	var geminiClient llm.Client
	if cfg.GeminiAPIKey != "" {
		c, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		geminiClient = c
	}

	var primary, fallback llm.Client
	switch cfg.LLMProvider {
	case "openai":
		primary, fallback = openaiClient, geminiClient
	case "gemini":
		primary, fallback = geminiClient, openaiClient
	case "":
		return nil
	default:
		logger.Error("unknown LLM_PROVIDER", "provider", cfg.LLMProvider)
		os.Exit(1)
	}

	if primary == nil {
		logger.Error("LLM_PROVIDER set but its API key is missing", "provider", cfg.LLMProvider)
		os.Exit(1)
	}

	logger.Info("completion provider enabled",
		"provider", cfg.LLMProvider,
		"fallback_available", fallback != nil,
	)
	return llm.NewFallbackClient(primary, fallback, logger)
}
