package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/domain/shared/events"
)

type paidEvent struct {
	InvoiceID string    `json:"invoice_id"`
	At        time.Time `json:"at"`
}

func (e paidEvent) EventName() string     { return "invoice.paid" }
func (e paidEvent) AggregateID() string   { return e.InvoiceID }
func (e paidEvent) OccurredAt() time.Time { return e.At }

type aggregate struct {
	events.EventRecorder
}

type listBox struct{ records []EventRecord }

func (b *listBox) Add(_ context.Context, rec EventRecord) error {
	b.records = append(b.records, rec)
	return nil
}

func (b *listBox) Flush(context.Context) error { return nil }

func TestRecordAggregatesEncodesAndDrains(t *testing.T) {
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.FixedZone("WITA", 8*3600))
	agg := &aggregate{}
	agg.Record(paidEvent{InvoiceID: "INV-20260201-0001", At: at})
	box := &listBox{}
	ids := 0
	enc := JSONEventEncoder{IDGenerator: func() string { ids++; return "evt-" + string(rune('0'+ids)) }}

	ctx := WithCorrelationID(context.Background(), "req-9")
	require.NoError(t, RecordAggregates(ctx, box, enc, agg, nil))
	require.Len(t, box.records, 1)

	rec := box.records[0]
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "invoice.paid", rec.Name)
	assert.Equal(t, "INV-20260201-0001", rec.Aggregate)
	assert.Equal(t, time.UTC, rec.OccurredAt.Location())
	assert.Equal(t, map[string]string{
		HeaderAggregateType: "invoice",
		HeaderSchemaVersion: "1",
		HeaderCorrelationID: "req-9",
	}, rec.Headers)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Payload, &payload))
	assert.Equal(t, "INV-20260201-0001", payload["invoice_id"])

	require.NoError(t, RecordAggregates(ctx, box, enc, agg))
	assert.Len(t, box.records, 1)
}

func TestCorrelationIDIgnoresEmpty(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	assert.Empty(t, CorrelationID(ctx))
}

func TestRecordAggregatesWithoutOutbox(t *testing.T) {
	agg := &aggregate{}
	agg.Record(paidEvent{InvoiceID: "INV-1"})
	assert.NoError(t, RecordAggregates(context.Background(), nil, nil, agg))
}
