package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"venuedesk/internal/app/outbox"
	"venuedesk/internal/app/policies"
	"venuedesk/internal/app/uow"
	"venuedesk/internal/domain/allocation"
	domainbooking "venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/inventory"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/ident"
)

const maxIDAttempts = 8

var ErrIDSpaceExhausted = errors.New("booking: could not allocate a free booking id")

// Deps are the collaborators shared by the booking handlers.
type Deps struct {
	Pricing          pricing.Config
	Inventory        *inventory.Inventory
	Outbox           outbox.Outbox
	Encoder          outbox.EventEncoder
	Notifier         policies.Notifier
	AdminDestination string
	// Tolerance is how far, in minor units, a client-submitted total may drift
	// from the server quote.
	Tolerance int64
	IDs       ident.Generator
	Now       func() time.Time
	Logger    *slog.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d Deps) strategy(kind domainbooking.Kind) allocation.Strategy {
	if kind == domainbooking.KindHotel {
		return allocation.Rooms{Inventory: d.Inventory}
	}
	return allocation.Hall{}
}

// freeID draws identifiers until one is unused.
func (d Deps) freeID(ctx context.Context, repo domainbooking.Repository, prefix string, at time.Time) (domainbooking.BookingID, error) {
	gen := d.IDs
	if gen == nil {
		gen = ident.Random
	}
	for i := 0; i < maxIDAttempts; i++ {
		id := domainbooking.BookingID(gen(prefix, at))
		_, err := repo.ByID(ctx, id)
		if errors.Is(err, domainbooking.ErrBookingNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrIDSpaceExhausted
}

// place draws a free id, builds the booking under it and persists it with its
// slot claims. An insert rejected as a duplicate id is retried with a fresh one.
func (d Deps) place(ctx context.Context, unit uow.UnitOfWork, prefix string, at time.Time, build func(domainbooking.BookingID) (*domainbooking.Booking, error)) (*domainbooking.Booking, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := d.freeID(ctx, unit.Bookings(), prefix, at)
		if err != nil {
			return nil, err
		}
		b, err := build(id)
		if err != nil {
			return nil, err
		}
		err = unit.Bookings().Insert(ctx, b)
		if errors.Is(err, domainbooking.ErrDuplicateID) {
			d.logger().DebugContext(ctx, "booking id taken on insert", "booking_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := unit.Claims().Claim(ctx, b.ID, allocation.ClaimKeys(b)); err != nil {
			return nil, err
		}
		if err := outbox.RecordAggregates(ctx, d.Outbox, d.Encoder, b); err != nil {
			return nil, err
		}
		d.notifyAfterCommit(ctx, createdNotices(d.AdminDestination, b)...)
		return b, nil
	}
	return nil, ErrIDSpaceExhausted
}

func (d Deps) notifyAfterCommit(ctx context.Context, notes ...policies.Notification) {
	if d.Notifier == nil || len(notes) == 0 {
		return
	}
	log := d.logger()
	uow.AfterCommit(ctx, func(ctx context.Context) {
		for _, n := range notes {
			if n.Destination == "" {
				continue
			}
			if err := d.Notifier.Notify(ctx, n); err != nil {
				log.WarnContext(ctx, "notification failed", "booking_id", n.BookingID, "destination", n.Destination, "error", err)
			}
		}
	})
}
