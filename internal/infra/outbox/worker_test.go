package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	docs   []*EventDocument
	sent   []string
	failed []string
}

func (q *fakeQueue) Claim(context.Context, string) (*EventDocument, error) {
	if len(q.docs) == 0 {
		return nil, nil
	}
	doc := q.docs[0]
	q.docs = q.docs[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, _ time.Time, _ string) error {
	q.failed = append(q.failed, id)
	return nil
}

type published struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

type fakeProducer struct {
	out  []published
	fail bool
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.out = append(p.out, published{topic, key, payload, headers})
	return nil
}

func TestTopicFor(t *testing.T) {
	w := &Worker{}
	assert.Equal(t, "booking.events.v1", w.topicFor("booking.requested"))
	assert.Equal(t, "invoice.events.v1", w.topicFor("invoice.paid"))
	w.TopicPrefix = "staging."
	assert.Equal(t, "staging.booking.events.v1", w.topicFor("booking.cancelled"))
}

func TestFormatPayloadWrapsCloudEvent(t *testing.T) {
	w := &Worker{}
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	payload, headers, err := w.formatPayload(&EventDocument{
		ID:         "evt-1",
		Name:       "booking.confirmed",
		Aggregate:  "HTL-20260201-0001",
		Payload:    []byte(`{"booking_id":"HTL-20260201-0001"}`),
		OccurredAt: at,
		Headers:    map[string]string{"correlation_id": "req-42", "aggregate_type": "booking"},
	})
	require.NoError(t, err)

	var evt map[string]any
	require.NoError(t, json.Unmarshal(payload, &evt))
	assert.Equal(t, "booking.confirmed.v1", evt["type"])
	assert.Equal(t, "app://venuedesk", evt["source"])
	assert.Equal(t, "evt-1", evt["id"])
	assert.Equal(t, "HTL-20260201-0001", evt["subject"])
	assert.Equal(t, "req-42", evt["correlationid"])
	assert.Equal(t, "booking", headers["aggregate_type"])
	assert.Equal(t, "application/cloudevents+json", headers["content-type"])

	_, _, err = w.formatPayload(&EventDocument{Payload: []byte("not json")})
	assert.Error(t, err)
}

func TestDrainRelaysAndMarks(t *testing.T) {
	q := &fakeQueue{docs: []*EventDocument{
		{ID: "1", Name: "booking.requested", Aggregate: "HTL-1", Payload: []byte(`{}`)},
		{ID: "2", Name: "invoice.issued", Aggregate: "INV-1", Payload: []byte(`{}`)},
		{ID: "3", Name: "broken", Payload: []byte(`[`)},
	}}
	p := &fakeProducer{}
	w := &Worker{Store: q, Producer: p, Batch: 10}

	require.NoError(t, w.drain(context.Background()))
	assert.Equal(t, []string{"1", "2"}, q.sent)
	assert.Equal(t, []string{"3"}, q.failed)
	require.Len(t, p.out, 2)
	assert.Equal(t, "invoice.events.v1", p.out[1].topic)
	assert.Equal(t, "INV-1", p.out[1].key)
}

func TestPublishFailureSchedulesRetry(t *testing.T) {
	q := &fakeQueue{docs: []*EventDocument{{ID: "1", Name: "booking.requested", Payload: []byte(`{}`)}}}
	w := &Worker{Store: q, Producer: &fakeProducer{fail: true}, Backoff: []time.Duration{time.Second}}
	require.NoError(t, w.drain(context.Background()))
	assert.Equal(t, []string{"1"}, q.failed)
	assert.Empty(t, q.sent)
}

func TestRunRequiresDependencies(t *testing.T) {
	assert.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}
