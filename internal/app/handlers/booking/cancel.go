package booking

import (
	"context"
	"strings"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/dto"
	"venuedesk/internal/app/handlers/support"
	"venuedesk/internal/app/middleware"
	"venuedesk/internal/app/outbox"
	domainbooking "venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/finance"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string `json:"booking_id" validate:"required"`
	Reason    string `json:"reason,omitempty"`
}

func (CancelBookingCommand) Key() string         { return cancelBookingKey }
func (CancelBookingCommand) RequiresStaff() bool { return true }

// CancelBookingHandler cancels a booking, frees its slots and voids its
// current invoice together with the income booked against it.
type CancelBookingHandler struct {
	Deps
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.BookingActionResult, error) {
	unit, err := support.RequireUnit(ctx)
	if err != nil {
		return nil, err
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(strings.TrimSpace(cmd.BookingID)))
	if err != nil {
		return nil, err
	}
	now := h.now()
	if err := b.Cancel(strings.TrimSpace(cmd.Reason), now); err != nil {
		return nil, transitionError(err, b, cmd.Key())
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Claims().Release(ctx, b.ID); err != nil {
		return nil, err
	}

	var inv *finance.Invoice
	if b.InvoiceID != "" {
		inv, err = unit.Invoices().ByID(ctx, finance.InvoiceID(b.InvoiceID))
		if err != nil {
			return nil, err
		}
		if entry := inv.Void(now); entry != "" {
			if err := unit.Ledger().Delete(ctx, entry); err != nil {
				return nil, err
			}
		}
		if err := unit.Invoices().Save(ctx, inv); err != nil {
			return nil, err
		}
	}

	aggs := []outbox.Puller{b}
	if inv != nil {
		aggs = append(aggs, inv)
	}
	if err := outbox.RecordAggregates(ctx, h.Outbox, h.Encoder, aggs...); err != nil {
		return nil, err
	}
	h.notifyAfterCommit(ctx, statusNotice(b))
	h.logger().InfoContext(ctx, "booking cancelled", "booking_id", b.ID, "invoice_id", b.InvoiceID)
	return &dto.BookingActionResult{BookingID: string(b.ID), Status: string(b.Status), InvoiceID: b.InvoiceID}, nil
}

var _ commands.Handler[CancelBookingCommand, *dto.BookingActionResult] = (*CancelBookingHandler)(nil)
var _ middleware.StaffGated = CancelBookingCommand{}
