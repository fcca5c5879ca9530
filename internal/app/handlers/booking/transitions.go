package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/dto"
	"venuedesk/internal/app/handlers/support"
	"venuedesk/internal/app/middleware"
	"venuedesk/internal/app/outbox"
	domainbooking "venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/shared/errs"
)

// Transition is a staff command that moves a booking along its status machine.
type Transition interface {
	commands.Command
	middleware.StaffGated
	Target() string
	Apply(b *domainbooking.Booking, now time.Time) error
}

type ConfirmBookingCommand struct {
	BookingID string `json:"booking_id" validate:"required"`
}

func (ConfirmBookingCommand) Key() string         { return "booking.confirm" }
func (ConfirmBookingCommand) RequiresStaff() bool { return true }
func (c ConfirmBookingCommand) Target() string    { return c.BookingID }
func (ConfirmBookingCommand) Apply(b *domainbooking.Booking, now time.Time) error {
	return b.Confirm(now)
}

type CheckInBookingCommand struct {
	BookingID string `json:"booking_id" validate:"required"`
}

func (CheckInBookingCommand) Key() string         { return "booking.check_in" }
func (CheckInBookingCommand) RequiresStaff() bool { return true }
func (c CheckInBookingCommand) Target() string    { return c.BookingID }
func (CheckInBookingCommand) Apply(b *domainbooking.Booking, now time.Time) error {
	return b.CheckIn(now)
}

type CheckOutBookingCommand struct {
	BookingID string `json:"booking_id" validate:"required"`
}

func (CheckOutBookingCommand) Key() string         { return "booking.check_out" }
func (CheckOutBookingCommand) RequiresStaff() bool { return true }
func (c CheckOutBookingCommand) Target() string    { return c.BookingID }
func (CheckOutBookingCommand) Apply(b *domainbooking.Booking, now time.Time) error {
	return b.CheckOut(now)
}

type CompleteBookingCommand struct {
	BookingID string `json:"booking_id" validate:"required"`
}

func (CompleteBookingCommand) Key() string         { return "booking.complete" }
func (CompleteBookingCommand) RequiresStaff() bool { return true }
func (c CompleteBookingCommand) Target() string    { return c.BookingID }
func (CompleteBookingCommand) Apply(b *domainbooking.Booking, now time.Time) error {
	return b.Complete(now)
}

// TransitionHandler serves every Transition command type.
type TransitionHandler[C Transition] struct {
	Deps
	// NotifyCustomer sends the guest a status message after commit.
	NotifyCustomer bool
}

func (h *TransitionHandler[C]) Handle(ctx context.Context, cmd C) (*dto.BookingActionResult, error) {
	unit, err := support.RequireUnit(ctx)
	if err != nil {
		return nil, err
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(strings.TrimSpace(cmd.Target())))
	if err != nil {
		return nil, err
	}
	from := b.Status
	if err := cmd.Apply(b, h.now()); err != nil {
		return nil, transitionError(err, b, cmd.Key())
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := outbox.RecordAggregates(ctx, h.Outbox, h.Encoder, b); err != nil {
		return nil, err
	}
	if h.NotifyCustomer {
		h.notifyAfterCommit(ctx, statusNotice(b))
	}
	h.logger().InfoContext(ctx, "booking transitioned", "booking_id", b.ID, "from", from, "to", b.Status)
	return &dto.BookingActionResult{BookingID: string(b.ID), Status: string(b.Status), InvoiceID: b.InvoiceID}, nil
}

func transitionError(err error, b *domainbooking.Booking, action string) error {
	if errors.Is(err, domainbooking.ErrInvalidTransition) {
		verb := strings.ReplaceAll(strings.TrimPrefix(action, "booking."), "_", "-")
		return errs.Because(err, "cannot %s a %s booking that is %s", verb, b.Kind, b.Status)
	}
	return err
}
