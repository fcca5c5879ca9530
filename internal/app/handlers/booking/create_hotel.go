package booking

import (
	"context"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/dto"
	"venuedesk/internal/app/handlers/support"
	"venuedesk/internal/app/middleware"
	domainbooking "venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/errs"
	"venuedesk/internal/domain/shared/ident"
)

const createHotelBookingKey = "booking.hotel.create"

type CreateHotelBookingCommand struct {
	StaySelection
	ContactInput
	// ClientTotal is the total the client displayed, in minor units. It is
	// checked against the server quote and never stored.
	ClientTotal     *int64 `json:"client_total,omitempty"`
	Notes           string `json:"notes,omitempty"`
	IdempotencyKeyV string `json:"-"`
}

func (CreateHotelBookingCommand) Key() string { return createHotelBookingKey }

func (c CreateHotelBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (CreateHotelBookingCommand) ResultPrototype() any { return &dto.BookingView{} }

type CreateHotelBookingHandler struct {
	Deps
}

func (h *CreateHotelBookingHandler) Handle(ctx context.Context, cmd CreateHotelBookingCommand) (*dto.BookingView, error) {
	unit, err := support.RequireUnit(ctx)
	if err != nil {
		return nil, err
	}
	contact := cmd.contact()
	if missing := contact.Missing(); len(missing) > 0 {
		return nil, errs.Missing(missing...)
	}
	st, err := cmd.StaySelection.resolve()
	if err != nil {
		return nil, err
	}
	quote := pricing.QuoteHotel(h.Pricing, st.input)
	if err := pricing.CheckAdvisory(quote, cmd.ClientTotal, h.Tolerance); err != nil {
		return nil, err
	}

	existing, err := unit.Bookings().ListActiveOverlapping(ctx, domainbooking.KindHotel, st.window)
	if err != nil {
		return nil, err
	}
	rooms, err := h.strategy(domainbooking.KindHotel).Allocate(existing, st.window, st.request)
	if err != nil {
		return nil, err
	}

	now := h.now()
	b, err := h.place(ctx, unit, ident.PrefixHotel, now, func(id domainbooking.BookingID) (*domainbooking.Booking, error) {
		return domainbooking.NewHotel(domainbooking.HotelParams{
			ID:      id,
			Stay:    st.window,
			Contact: contact,
			Details: domainbooking.HotelDetails{
				Request: st.request,
				Rooms:   rooms,
				Nights:  st.nights,
				Pickup:  st.input.Pickup,
				Meals:   st.input.Meals,
			},
			Price:     quote,
			Notes:     cmd.Notes,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "hotel booking created", "booking_id", b.ID, "rooms", rooms, "nights", st.nights, "total", b.Price.Total.String())

	view := dto.MapBooking(b)
	return &view, nil
}

var _ commands.Handler[CreateHotelBookingCommand, *dto.BookingView] = (*CreateHotelBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateHotelBookingCommand{}
