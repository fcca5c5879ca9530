package outbox

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"venuedesk/internal/domain/shared/events"
)

// Header names carried from the outbox record to the relayed message.
const (
	HeaderCorrelationID = "correlation_id"
	HeaderAggregateType = "aggregate_type"
	HeaderSchemaVersion = "schema_version"
)

// EventRecord is a serialized domain event waiting to be relayed. Aggregate is
// the booking or invoice id and becomes the partition key.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ctx context.Context, ev events.DomainEvent) (EventRecord, error)
}

type correlationKey struct{}

// WithCorrelationID tags every event recorded under ctx with id, usually the
// HTTP request id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// JSONEventEncoder marshals the event as its JSON payload.
type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ctx context.Context, ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	newID := e.IDGenerator
	if newID == nil {
		newID = uuid.NewString
	}
	name := ev.EventName()
	headers := map[string]string{
		HeaderAggregateType: aggregateType(name),
		HeaderSchemaVersion: "1",
	}
	if id := CorrelationID(ctx); id != "" {
		headers[HeaderCorrelationID] = id
	}
	return EventRecord{
		ID:         newID(),
		Name:       name,
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    headers,
	}, nil
}

// aggregateType is the event name prefix: "booking" for "booking.confirmed".
func aggregateType(name string) string {
	if idx := strings.IndexByte(name, '.'); idx > 0 {
		return name[:idx]
	}
	return name
}

// Puller is any aggregate holding recorded events.
type Puller interface {
	Pull() []events.DomainEvent
}

// RecordAggregates drains the aggregates' events into the outbox in order.
// Nil aggregates are skipped.
func RecordAggregates(ctx context.Context, box Outbox, encoder EventEncoder, aggs ...Puller) error {
	if box == nil {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, agg := range aggs {
		if agg == nil {
			continue
		}
		for _, ev := range agg.Pull() {
			rec, err := encoder.Encode(ctx, ev)
			if err != nil {
				return err
			}
			if err := box.Add(ctx, rec); err != nil {
				return err
			}
		}
	}
	return nil
}
