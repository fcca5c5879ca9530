package booking

import (
	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/dto"
	"venuedesk/internal/app/queries"
	"venuedesk/internal/app/uow"
)

// Register wires every booking command and query onto the buses.
func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, deps Deps, factory uow.UoWFactory) {
	commands.RegisterHandler[CreateHotelBookingCommand, *dto.BookingView](cmdBus, &CreateHotelBookingHandler{Deps: deps})
	commands.RegisterHandler[CreateAuditoriumBookingCommand, *dto.BookingView](cmdBus, &CreateAuditoriumBookingHandler{Deps: deps})
	commands.RegisterHandler[ConfirmBookingCommand, *dto.BookingActionResult](cmdBus, &TransitionHandler[ConfirmBookingCommand]{Deps: deps, NotifyCustomer: true})
	commands.RegisterHandler[CheckInBookingCommand, *dto.BookingActionResult](cmdBus, &TransitionHandler[CheckInBookingCommand]{Deps: deps})
	commands.RegisterHandler[CheckOutBookingCommand, *dto.BookingActionResult](cmdBus, &TransitionHandler[CheckOutBookingCommand]{Deps: deps})
	commands.RegisterHandler[CompleteBookingCommand, *dto.BookingActionResult](cmdBus, &TransitionHandler[CompleteBookingCommand]{Deps: deps})
	commands.RegisterHandler[CancelBookingCommand, *dto.BookingActionResult](cmdBus, &CancelBookingHandler{Deps: deps})

	quotes := &QuoteHandler{Pricing: deps.Pricing}
	queries.RegisterHandler[GetBookingQuery, dto.BookingView](queryBus, &GetBookingHandler{UoWFactory: factory})
	queries.RegisterHandler[QuoteHotelQuery, dto.QuoteView](queryBus, queries.HandlerFunc[QuoteHotelQuery, dto.QuoteView](quotes.Hotel))
	queries.RegisterHandler[QuoteAuditoriumQuery, dto.QuoteView](queryBus, queries.HandlerFunc[QuoteAuditoriumQuery, dto.QuoteView](quotes.Auditorium))
}
