package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"

	"venuedesk/internal/infra/broker/kafka"
)

type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Sender interface {
	Send(ctx context.Context, env Envelope) error
}

// Relay consumes the notifications topic and delivers each message once.
type Relay struct {
	Inbox  Inbox
	Sender Sender
	Logger *slog.Logger
}

func (r Relay) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		r.logger().WarnContext(ctx, "dropping malformed notification", "offset", msg.Offset, "error", err)
		return nil
	}
	if env.ID == "" || env.Destination == "" {
		r.logger().WarnContext(ctx, "dropping incomplete notification", "offset", msg.Offset)
		return nil
	}
	seen, err := r.Inbox.Seen(ctx, env.ID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}
	if err := r.Sender.Send(ctx, env); err != nil {
		if errors.Is(err, ErrDeliveryRejected) {
			r.logger().WarnContext(ctx, "notification rejected", "id", env.ID, "booking_id", env.BookingID, "error", err)
			return nil
		}
		if ferr := r.Inbox.Forget(ctx, env.ID); ferr != nil {
			r.logger().ErrorContext(ctx, "inbox forget failed", "id", env.ID, "error", ferr)
		}
		return err
	}
	r.logger().InfoContext(ctx, "notification delivered", "id", env.ID, "booking_id", env.BookingID)
	return nil
}

func (r Relay) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

var _ kafka.MessageHandler = Relay{}
