package middleware

import (
	"context"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/outbox"
)

// Discarder is implemented by outboxes that buffer records in process and
// must drop them when a command fails.
type Discarder interface {
	Discard()
}

// OutboxFlush flushes buffered event records once the command succeeded.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				if d, ok := box.(Discarder); ok {
					d.Discard()
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
