package booking

import (
	"context"
	"strings"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/dto"
	"venuedesk/internal/app/handlers/support"
	"venuedesk/internal/app/middleware"
	domainbooking "venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/errs"
	"venuedesk/internal/domain/shared/ident"
)

const createAuditoriumBookingKey = "booking.auditorium.create"

type CreateAuditoriumBookingCommand struct {
	HallSelection
	ContactInput
	EventName       string `json:"event_name" validate:"required"`
	ClientTotal     *int64 `json:"client_total,omitempty"`
	Notes           string `json:"notes,omitempty"`
	IdempotencyKeyV string `json:"-"`
}

func (CreateAuditoriumBookingCommand) Key() string { return createAuditoriumBookingKey }

func (c CreateAuditoriumBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (CreateAuditoriumBookingCommand) ResultPrototype() any { return &dto.BookingView{} }

// RequiresStaff gates manual extra hours behind staff credentials.
func (c CreateAuditoriumBookingCommand) RequiresStaff() bool { return c.ExtraHours > 0 }

type CreateAuditoriumBookingHandler struct {
	Deps
}

func (h *CreateAuditoriumBookingHandler) Handle(ctx context.Context, cmd CreateAuditoriumBookingCommand) (*dto.BookingView, error) {
	unit, err := support.RequireUnit(ctx)
	if err != nil {
		return nil, err
	}
	contact := cmd.contact()
	missing := contact.Missing()
	if strings.TrimSpace(cmd.EventName) == "" {
		missing = append(missing, "event_name")
	}
	if len(missing) > 0 {
		return nil, errs.Missing(missing...)
	}
	hl, err := cmd.HallSelection.resolve()
	if err != nil {
		return nil, err
	}
	if len(h.Pricing.HallPackages) == 0 {
		return nil, errs.Rejected(pricing.ErrNoPackages)
	}
	quote := pricing.QuoteHall(h.Pricing, hl.input)
	if err := pricing.CheckAdvisory(quote, cmd.ClientTotal, h.Tolerance); err != nil {
		return nil, err
	}

	existing, err := unit.Bookings().ListActiveOverlapping(ctx, domainbooking.KindAuditorium, hl.window)
	if err != nil {
		return nil, err
	}
	if _, err := h.strategy(domainbooking.KindAuditorium).Allocate(existing, hl.window, domainbooking.RoomRequest{}); err != nil {
		return nil, err
	}

	pkg, _ := pricing.MatchPackage(h.Pricing, hl.input.Duration)
	now := h.now()
	b, err := h.place(ctx, unit, ident.PrefixAuditorium, now, func(id domainbooking.BookingID) (*domainbooking.Booking, error) {
		return domainbooking.NewAuditorium(domainbooking.HallParams{
			ID:      id,
			Window:  hl.window,
			Contact: contact,
			Details: domainbooking.HallDetails{
				EventName:  strings.TrimSpace(cmd.EventName),
				Package:    pkg.Name,
				Duration:   hl.input.Duration,
				AfterHours: hl.input.AfterHours,
				ExtraHours: hl.input.ExtraHours,
				Services:   hl.input.Services,
			},
			Price:     quote,
			Notes:     cmd.Notes,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "auditorium booking created", "booking_id", b.ID, "window_start", b.Window.Start, "duration", hl.input.Duration, "total", b.Price.Total.String())

	view := dto.MapBooking(b)
	return &view, nil
}

var _ commands.Handler[CreateAuditoriumBookingCommand, *dto.BookingView] = (*CreateAuditoriumBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateAuditoriumBookingCommand{}
var _ middleware.StaffGated = CreateAuditoriumBookingCommand{}
