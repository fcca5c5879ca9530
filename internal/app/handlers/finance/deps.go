package finance

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"venuedesk/internal/app/outbox"
	"venuedesk/internal/app/policies"
	"venuedesk/internal/domain/shared/ident"
)

type Deps struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Archive policies.InvoiceArchive
	IDs     ident.Generator
	// EntryIDs names ledger entries.
	EntryIDs func() string
	Now      func() time.Time
	Logger   *slog.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) entryID() string {
	if d.EntryIDs != nil {
		return d.EntryIDs()
	}
	return uuid.NewString()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
