// Command notifier consumes the notifications topic and hands each message
// to the delivery webhook once per notification id.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuedesk/internal/infra/broker/kafka"
	"venuedesk/internal/infra/config"
	mongodb "venuedesk/internal/infra/db/mongo"
	"venuedesk/internal/infra/inbox"
	"venuedesk/internal/infra/notify"
	"venuedesk/internal/infra/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.NotifierReady()
	}
	if err != nil {
		obs.NewLogger("dev", "info").Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB, mongodb.ConnectOptions{AppName: "venuedesk-notifier"})
	if err != nil {
		logger.Error("mongo init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close(context.Background())
	}()

	relay := notify.Relay{
		Inbox:  inbox.NewStore(client.DB, cfg.ConsumerGroup, cfg.InboxRetention),
		Sender: notify.NewWebhookSender(cfg.WebhookURL, cfg.WebhookTimeout, logger),
		Logger: logger,
	}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, nil, relay, kafka.ConsumerOptions{
		Retries: cfg.ConsumerRetries,
		Backoff: time.Second,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("kafka consumer init failed", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	topic := cfg.KafkaTopicPrefix + cfg.NotificationTopic
	logger.Info("notifier starting", "topic", topic, "group", cfg.ConsumerGroup)
	if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("notifier stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("notifier stopped")
}
