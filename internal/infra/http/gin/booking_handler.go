package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/dto"
	bookingapp "venuedesk/internal/app/handlers/booking"
	"venuedesk/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h BookingHandler) CreateHotel(c *gin.Context) {
	var cmd bookingapp.CreateHotelBookingCommand
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.IdempotencyKeyV = idempotencyKey(c)
	dispatch[bookingapp.CreateHotelBookingCommand, *dto.BookingView](c, h.Commands, h.Logger, cmd, http.StatusCreated)
}

func (h BookingHandler) CreateAuditorium(c *gin.Context) {
	var cmd bookingapp.CreateAuditoriumBookingCommand
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.IdempotencyKeyV = idempotencyKey(c)
	dispatch[bookingapp.CreateAuditoriumBookingCommand, *dto.BookingView](c, h.Commands, h.Logger, cmd, http.StatusCreated)
}

func (h BookingHandler) Get(c *gin.Context) {
	ask[bookingapp.GetBookingQuery, dto.BookingView](c, h.Queries, h.Logger, bookingapp.GetBookingQuery{BookingID: c.Param("id")})
}

func (h BookingHandler) Confirm(c *gin.Context) {
	dispatch[bookingapp.ConfirmBookingCommand, *dto.BookingActionResult](c, h.Commands, h.Logger, bookingapp.ConfirmBookingCommand{BookingID: c.Param("id")}, http.StatusOK)
}

func (h BookingHandler) CheckIn(c *gin.Context) {
	dispatch[bookingapp.CheckInBookingCommand, *dto.BookingActionResult](c, h.Commands, h.Logger, bookingapp.CheckInBookingCommand{BookingID: c.Param("id")}, http.StatusOK)
}

func (h BookingHandler) CheckOut(c *gin.Context) {
	dispatch[bookingapp.CheckOutBookingCommand, *dto.BookingActionResult](c, h.Commands, h.Logger, bookingapp.CheckOutBookingCommand{BookingID: c.Param("id")}, http.StatusOK)
}

func (h BookingHandler) Complete(c *gin.Context) {
	dispatch[bookingapp.CompleteBookingCommand, *dto.BookingActionResult](c, h.Commands, h.Logger, bookingapp.CompleteBookingCommand{BookingID: c.Param("id")}, http.StatusOK)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	cmd := bookingapp.CancelBookingCommand{BookingID: c.Param("id"), Reason: strings.TrimSpace(req.Reason)}
	dispatch[bookingapp.CancelBookingCommand, *dto.BookingActionResult](c, h.Commands, h.Logger, cmd, http.StatusOK)
}

func (h BookingHandler) QuoteHotel(c *gin.Context) {
	var q bookingapp.QuoteHotelQuery
	if !bindJSON(c, &q) {
		return
	}
	ask[bookingapp.QuoteHotelQuery, dto.QuoteView](c, h.Queries, h.Logger, q)
}

func (h BookingHandler) QuoteAuditorium(c *gin.Context) {
	var q bookingapp.QuoteAuditoriumQuery
	if !bindJSON(c, &q) {
		return
	}
	ask[bookingapp.QuoteAuditoriumQuery, dto.QuoteView](c, h.Queries, h.Logger, q)
}

func dispatch[C commands.Command, R any](c *gin.Context, bus commands.Bus, logger *slog.Logger, cmd C, status int) {
	if bus == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	result, err := commands.Dispatch[C, R](c.Request.Context(), bus, cmd)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(status, result)
}

func ask[Q queries.Query, R any](c *gin.Context, bus queries.Bus, logger *slog.Logger, q Q) {
	if bus == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	result, err := queries.Ask[Q, R](c.Request.Context(), bus, q)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

func idempotencyKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}

var _ BookingHTTP = BookingHandler{}
