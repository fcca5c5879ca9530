package booking

import (
	"context"
	"strings"

	"venuedesk/internal/app/dto"
	"venuedesk/internal/app/handlers/support"
	"venuedesk/internal/app/queries"
	"venuedesk/internal/app/uow"
	domainbooking "venuedesk/internal/domain/booking"
)

type GetBookingQuery struct {
	BookingID string `json:"booking_id" validate:"required"`
}

func (GetBookingQuery) Key() string { return "booking.get" }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.BookingView, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(strings.TrimSpace(q.BookingID)))
	if err != nil {
		return dto.BookingView{}, err
	}
	return dto.MapBooking(b), nil
}

var _ queries.Handler[GetBookingQuery, dto.BookingView] = (*GetBookingHandler)(nil)
