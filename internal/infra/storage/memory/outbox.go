package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "venuedesk/internal/app/outbox"
)

// Outbox keeps events in memory until flushed. Flushed events are logged and
// retained in Published so tests can inspect them.
type Outbox struct {
	mu        sync.Mutex
	pending   []appoutbox.EventRecord
	published []appoutbox.EventRecord
	logger    *slog.Logger
}

func NewOutbox(logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbox{logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, rec := range o.pending {
		o.logger.DebugContext(ctx, "event published", "event", rec.Name, "aggregate", rec.Aggregate, "id", rec.ID)
	}
	o.published = append(o.published, o.pending...)
	o.pending = nil
	return nil
}

// Discard drops events recorded by a command that did not commit.
func (o *Outbox) Discard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = nil
}

// Published returns the names of all flushed events in order.
func (o *Outbox) Published() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, 0, len(o.published))
	for _, rec := range o.published {
		names = append(names, rec.Name)
	}
	return names
}

var _ appoutbox.Outbox = (*Outbox)(nil)
