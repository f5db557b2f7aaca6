package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/juberthrdzz/vapi-voice-agent/internal/config"
	"github.com/juberthrdzz/vapi-voice-agent/internal/event"
	handler "github.com/juberthrdzz/vapi-voice-agent/internal/handler/http"
	"github.com/juberthrdzz/vapi-voice-agent/internal/kitchen"
	"github.com/juberthrdzz/vapi-voice-agent/internal/menu"
	redisrepo "github.com/juberthrdzz/vapi-voice-agent/internal/repository/redis"
	"github.com/juberthrdzz/vapi-voice-agent/internal/service"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/health"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/httpclient"
	pkgkafka "github.com/juberthrdzz/vapi-voice-agent/pkg/kafka"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/tracing"
)

// App wires together all dependencies and runs the voice agent service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Load the static menu catalog once; a broken menu file is fatal.
	m, err := menu.Load(cfg.MenuPath)
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	logger.Info("menu loaded",
		slog.String("path", cfg.MenuPath),
		slog.Int("categories", len(m.Categories())),
	)

	// Initialize Redis client.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize tracing.
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  "voice-agent",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.TracingEndpoint,
		SampleRate:   cfg.TracingSampler,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Kitchen webhook client behind a circuit breaker. NewNotifier returns
	// nil when no webhook URL is configured.
	cbClient := httpclient.NewCircuitBreaker(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("kitchen-webhook"),
		logger,
	)
	notifier := kitchen.NewNotifier(kitchen.Config{
		WebhookURL:   cfg.KitchenWebhookURL,
		RestaurantID: cfg.RestaurantID,
		OrderType:    cfg.KitchenOrderType,
	}, cbClient, logger)
	if notifier != nil {
		logger.Info("kitchen webhook enabled", slog.String("restaurant_id", cfg.RestaurantID))
	}

	// Build the dependency graph.
	cartRepo := redisrepo.NewCartRepository(rdb, cfg.CartTTLDuration())
	orderRepo := redisrepo.NewOrderRepository(rdb, cfg.OrderTTLDuration())
	sessionRepo := redisrepo.NewSessionRepository(rdb, cfg.SessionTTLDuration())
	eventProducer := event.NewProducer(producer, logger)

	var kitchenNotifier service.KitchenNotifier
	if notifier != nil {
		kitchenNotifier = notifier
	}
	cartService := service.NewCartService(m, cartRepo, orderRepo, eventProducer, kitchenNotifier, logger, cfg.MaxCartQuantity)
	voiceService := service.NewVoiceService(sessionRepo, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(m, cartService, voiceService, healthHandler, logger, cfg.PprofAllowedCIDRs)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	// Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	// Close Redis client.
	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
