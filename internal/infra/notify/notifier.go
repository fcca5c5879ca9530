package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"venuedesk/internal/app/policies"
)

var ErrNoDestination = errors.New("notify: destination is required")

// Envelope is the wire form of a notification on the notifications topic.
type Envelope struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	Message     string    `json:"message"`
	BookingID   string    `json:"booking_id,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// KafkaNotifier hands notifications to the notifier process through Kafka,
// keyed by booking so messages for one booking stay ordered.
type KafkaNotifier struct {
	Producer Publisher
	Topic    string
	Now      func() time.Time
	NewID    func() string
}

func (n KafkaNotifier) Notify(ctx context.Context, msg policies.Notification) error {
	if strings.TrimSpace(msg.Destination) == "" {
		return ErrNoDestination
	}
	env := Envelope{
		ID:          n.newID(),
		Destination: msg.Destination,
		Message:     msg.Message,
		BookingID:   msg.BookingID,
		SentAt:      n.now().UTC(),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("notify: encode: %w", err)
	}
	key := msg.BookingID
	if key == "" {
		key = msg.Destination
	}
	headers := map[string]string{"content-type": "application/json", "notification-id": env.ID}
	if err := n.Producer.Publish(ctx, n.topic(), key, payload, headers); err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	return nil
}

func (n KafkaNotifier) topic() string {
	if n.Topic == "" {
		return "notifications.v1"
	}
	return n.Topic
}

func (n KafkaNotifier) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func (n KafkaNotifier) newID() string {
	if n.NewID != nil {
		return n.NewID()
	}
	return uuid.NewString()
}

// LogNotifier writes notifications to the log. Used when no broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, msg policies.Notification) error {
	if strings.TrimSpace(msg.Destination) == "" {
		return ErrNoDestination
	}
	log := n.Logger
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "notification", "destination", msg.Destination, "booking_id", msg.BookingID, "message", msg.Message)
	return nil
}

var (
	_ policies.Notifier = KafkaNotifier{}
	_ policies.Notifier = LogNotifier{}
)
