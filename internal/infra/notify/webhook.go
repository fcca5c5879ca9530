package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var ErrDeliveryRejected = errors.New("notify: webhook rejected notification")

// WebhookSender posts notifications to a delivery gateway. Calls go through a
// circuit breaker so a dead gateway is not hammered while messages retry.
type WebhookSender struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewWebhookSender(url string, timeout time.Duration, logger *slog.Logger) *WebhookSender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "notify-webhook",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// 4xx means the gateway is up; the message itself is bad.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrDeliveryRejected)
		},
	})
	return &WebhookSender{url: url, client: &http.Client{Timeout: timeout}, breaker: breaker}
}

func (s *WebhookSender) Send(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("notify: encode: %w", err)
	}
	_, err = s.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", env.ID)
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("notify: webhook status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("%w: status %d", ErrDeliveryRejected, resp.StatusCode)
		}
		return nil, nil
	})
	return err
}

// State exposes the breaker state for readiness reporting.
func (s *WebhookSender) State() gobreaker.State {
	return s.breaker.State()
}
