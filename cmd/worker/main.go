package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aetherdesk-ai/aetherdesk-backend/internal/notifications"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/realtime"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/mail"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/metrics"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/migrate"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/idempotency"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/pubsub"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/redis"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/webhook"
)

// Processed-event markers outlive any realistic redelivery window.
const idempotencyTTL = 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	mailClient, err := mail.NewClient(
		cfg.Mail.APIKey,
		mail.WithBaseURL(cfg.Mail.BaseURL),
		mail.WithDefaultFrom(cfg.Mail.DefaultFrom),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build mail client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	dispatchMetrics := metrics.NewDispatchMetrics(registry)

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Mail:       mailClient,
		Webhook:    webhook.NewClient(),
		Metrics:    dispatchMetrics,
		MailCfg:    cfg.Mail,
		Automation: cfg.Automation,
		PublicURL:  cfg.App.PublicURL,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build dispatcher", err)
		os.Exit(1)
	}

	idempotencyManager, err := idempotency.NewManager(redisClient, idempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to build idempotency manager", err)
		os.Exit(1)
	}

	notificationConsumer, err := notifications.NewConsumer(dispatcher, pubsubClient.NotificationSubscription(), idempotencyManager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build notification consumer", err)
		os.Exit(1)
	}

	realtimeConsumer, err := realtime.NewConsumer(pubsubClient.RealtimeSubscription(), idempotencyManager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build realtime consumer", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config:               cfg,
		Logger:               logg,
		DB:                   dbClient,
		Redis:                redisClient,
		PubSub:               pubsubClient,
		NotificationConsumer: notificationConsumer,
		RealtimeConsumer:     realtimeConsumer,
		MetricsHandler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "worker",
	})
	logg.Info(ctx, "starting worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "worker shutting down gracefully")
}
