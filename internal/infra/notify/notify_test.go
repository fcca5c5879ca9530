package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/app/policies"
	"venuedesk/internal/infra/broker/kafka"
)

var sentAt = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func TestKafkaNotifierPublishesEnvelope(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sync := mocks.NewSyncProducer(t, cfg)
	sync.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "notifications.v1" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "HTL-20260201-0001" {
			return errors.New("wrong key " + string(key))
		}
		raw, _ := msg.Value.Encode()
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return err
		}
		if env.ID != "n-1" || env.Destination != "+62811" || !env.SentAt.Equal(sentAt) {
			return errors.New("unexpected envelope")
		}
		return nil
	})
	defer sync.Close()

	n := KafkaNotifier{
		Producer: kafka.NewProducerFromSync(sync),
		Now:      func() time.Time { return sentAt },
		NewID:    func() string { return "n-1" },
	}
	err := n.Notify(context.Background(), policies.Notification{Destination: "+62811", Message: "Booking received", BookingID: "HTL-20260201-0001"})
	require.NoError(t, err)
}

func TestNotifiersRequireDestination(t *testing.T) {
	assert.ErrorIs(t, KafkaNotifier{}.Notify(context.Background(), policies.Notification{Message: "x"}), ErrNoDestination)
	assert.ErrorIs(t, LogNotifier{}.Notify(context.Background(), policies.Notification{Message: "x"}), ErrNoDestination)
	assert.NoError(t, LogNotifier{}.Notify(context.Background(), policies.Notification{Destination: "@ayu", Message: "x"}))
}

func TestWebhookSenderPostsJSON(t *testing.T) {
	var got Envelope
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, time.Second, nil)
	require.NoError(t, s.Send(context.Background(), Envelope{ID: "n-1", Destination: "@ayu", Message: "hi"}))
	assert.Equal(t, "n-1", key)
	assert.Equal(t, "hi", got.Message)
}

func TestWebhookSenderBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, time.Second, nil)
	for i := 0; i < 5; i++ {
		assert.Error(t, s.Send(context.Background(), Envelope{ID: "n"}))
	}
	assert.Equal(t, gobreaker.StateOpen, s.State())
	assert.ErrorIs(t, s.Send(context.Background(), Envelope{ID: "n"}), gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), calls.Load())
}

func TestWebhookSenderClientErrorsKeepBreakerClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, time.Second, nil)
	for i := 0; i < 6; i++ {
		assert.ErrorIs(t, s.Send(context.Background(), Envelope{ID: "n"}), ErrDeliveryRejected)
	}
	assert.Equal(t, gobreaker.StateClosed, s.State())
}

type memInbox struct {
	seen    map[string]bool
	forgets int
}

func (m *memInbox) Seen(_ context.Context, id string) (bool, error) {
	if m.seen[id] {
		return true, nil
	}
	m.seen[id] = true
	return false, nil
}

func (m *memInbox) Forget(_ context.Context, id string) error {
	m.forgets++
	delete(m.seen, id)
	return nil
}

type stubSender struct {
	err  error
	sent []string
}

func (s *stubSender) Send(_ context.Context, env Envelope) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, env.ID)
	return nil
}

func message(t *testing.T, env Envelope) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Value: raw}
}

func TestRelayDeliversOnce(t *testing.T) {
	inbox := &memInbox{seen: map[string]bool{}}
	sender := &stubSender{}
	r := Relay{Inbox: inbox, Sender: sender}
	msg := message(t, Envelope{ID: "n-1", Destination: "@ayu", Message: "hi"})

	require.NoError(t, r.Handle(context.Background(), msg))
	require.NoError(t, r.Handle(context.Background(), msg))
	assert.Equal(t, []string{"n-1"}, sender.sent)
}

func TestRelayForgetsFailedDelivery(t *testing.T) {
	inbox := &memInbox{seen: map[string]bool{}}
	sender := &stubSender{err: errors.New("gateway down")}
	r := Relay{Inbox: inbox, Sender: sender}
	msg := message(t, Envelope{ID: "n-1", Destination: "@ayu"})

	assert.Error(t, r.Handle(context.Background(), msg))
	assert.Equal(t, 1, inbox.forgets)

	sender.err = nil
	require.NoError(t, r.Handle(context.Background(), msg))
	assert.Equal(t, []string{"n-1"}, sender.sent)
}

func TestRelayDropsBadMessages(t *testing.T) {
	inbox := &memInbox{seen: map[string]bool{}}
	sender := &stubSender{err: ErrDeliveryRejected}
	r := Relay{Inbox: inbox, Sender: sender}

	assert.NoError(t, r.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")}))
	assert.NoError(t, r.Handle(context.Background(), message(t, Envelope{ID: "n-2"})))
	assert.NoError(t, r.Handle(context.Background(), message(t, Envelope{ID: "n-3", Destination: "@x"})))
	assert.Zero(t, inbox.forgets)
}
