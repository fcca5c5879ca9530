package ginserver

import (
	"log/slog"

	gin "github.com/gin-gonic/gin"

	"venuedesk/internal/app/dto"
	availabilityapp "venuedesk/internal/app/handlers/availability"
	"venuedesk/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Day lists the bookings touching ?date= plus the rooms and hall state.
func (h AvailabilityHandler) Day(c *gin.Context) {
	q := availabilityapp.DayAvailabilityQuery{
		Date:   c.Query("date"),
		Kind:   c.Query("kind"),
		Status: c.Query("status"),
	}
	ask[availabilityapp.DayAvailabilityQuery, dto.DayAvailability](c, h.Queries, h.Logger, q)
}

func (h AvailabilityHandler) Rooms(c *gin.Context) {
	ask[availabilityapp.ListRoomsQuery, []dto.RoomView](c, h.Queries, h.Logger, availabilityapp.ListRoomsQuery{})
}

var _ AvailabilityHTTP = AvailabilityHandler{}
