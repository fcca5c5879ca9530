package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
	retries int
	backoff time.Duration
}

type ConsumerOptions struct {
	// Retries is how many more times a failing message is handed to the
	// handler before it is logged and skipped.
	Retries int
	Backoff time.Duration
	Logger  *slog.Logger
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, opts ConsumerOptions) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return newConsumer(g, handler, opts), nil
}

func newConsumer(g sarama.ConsumerGroup, handler MessageHandler, opts ConsumerOptions) *Consumer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Consumer{group: g, handler: handler, logger: logger, retries: opts.Retries, backoff: backoff}
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, c.groupHandler()); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

func (c *Consumer) groupHandler() consumerGroupHandler {
	return consumerGroupHandler{handler: c.handler, logger: c.logger, retries: c.retries, backoff: c.backoff}
}

type consumerGroupHandler struct {
	handler MessageHandler
	logger  *slog.Logger
	retries int
	backoff time.Duration
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.deliver(sess.Context(), message); err != nil {
			if sess.Context().Err() != nil {
				return nil
			}
			h.logger.Error("kafka message dropped", "topic", message.Topic, "partition", message.Partition, "offset", message.Offset, "error", err)
		}
		sess.MarkMessage(message, "")
	}
	return nil
}

// deliver hands msg to the handler, retrying with a linear backoff.
func (h consumerGroupHandler) deliver(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var err error
	for attempt := 0; attempt <= h.retries; attempt++ {
		if err = h.handler.Handle(ctx, msg); err == nil {
			return nil
		}
		if attempt == h.retries {
			break
		}
		h.logger.Warn("kafka message failed, retrying", "topic", msg.Topic, "offset", msg.Offset, "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * h.backoff):
		}
	}
	return err
}
