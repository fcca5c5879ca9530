package availability

import (
	"context"
	"sort"
	"strings"

	"venuedesk/internal/app/dto"
	"venuedesk/internal/app/handlers/support"
	"venuedesk/internal/app/queries"
	"venuedesk/internal/app/uow"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/inventory"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/errs"
	"venuedesk/internal/domain/shared/money"
)

// DayAvailabilityQuery lists what is booked on one calendar day. Without a
// status filter cancelled bookings are left out; with one, only bookings in
// that exact status are listed.
type DayAvailabilityQuery struct {
	Date   string `json:"date" validate:"required"`
	Kind   string `json:"kind,omitempty"`
	Status string `json:"status,omitempty"`
}

func (DayAvailabilityQuery) Key() string { return "availability.day" }

type DayAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
	Inventory  *inventory.Inventory
}

func (h *DayAvailabilityHandler) Handle(ctx context.Context, q DayAvailabilityQuery) (dto.DayAvailability, error) {
	day, err := daterange.ParseDay(q.Date)
	if err != nil {
		return dto.DayAvailability{}, errs.Invalid("date must be formatted YYYY-MM-DD")
	}
	kinds, err := parseKinds(q.Kind)
	if err != nil {
		return dto.DayAvailability{}, err
	}
	status := booking.Status(strings.ToLower(strings.TrimSpace(q.Status)))
	if status != "" && !knownStatus(status) {
		return dto.DayAvailability{}, errs.Invalid("unknown status %q", q.Status)
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.DayAvailability{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	window := daterange.Day(day)
	out := dto.DayAvailability{Date: daterange.FormatDay(day), Rows: []dto.AvailabilityRow{}}
	for _, kind := range kinds {
		live, err := unit.Bookings().ListActiveOverlapping(execCtx, kind, window)
		if err != nil {
			return dto.DayAvailability{}, err
		}
		listed := live
		if status != "" {
			listed, err = unit.Bookings().ListOverlapping(execCtx, kind, window, status)
			if err != nil {
				return dto.DayAvailability{}, err
			}
		}
		out.Rows = append(out.Rows, h.rows(listed)...)
		switch kind {
		case booking.KindHotel:
			out.FreeRooms = h.freeRooms(live)
		case booking.KindAuditorium:
			out.HallFree = len(live) == 0
		}
	}
	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i], out.Rows[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Kind != b.Kind {
			return a.Kind > b.Kind
		}
		return a.Room < b.Room
	})
	return out, nil
}

func (h *DayAvailabilityHandler) rows(bookings []*booking.Booking) []dto.AvailabilityRow {
	var out []dto.AvailabilityRow
	for _, b := range bookings {
		base := dto.AvailabilityRow{
			BookingID: string(b.ID),
			Kind:      string(b.Kind),
			Status:    string(b.Status),
			Guest:     b.Contact.Name,
			Start:     b.Window.Start,
			End:       b.Window.End,
		}
		switch {
		case b.Hotel != nil:
			for _, n := range b.Hotel.Rooms {
				row := base
				row.Room = n
				if h.Inventory != nil {
					if r, ok := h.Inventory.Room(n); ok {
						row.RoomType = string(r.Type)
					}
				}
				out = append(out, row)
			}
		case b.Hall != nil:
			base.EventName = b.Hall.EventName
			out = append(out, base)
		default:
			out = append(out, base)
		}
	}
	return out
}

func (h *DayAvailabilityHandler) freeRooms(live []*booking.Booking) []string {
	if h.Inventory == nil {
		return nil
	}
	taken := make(map[string]struct{})
	for _, b := range live {
		if b.Hotel == nil {
			continue
		}
		for _, n := range b.Hotel.Rooms {
			taken[n] = struct{}{}
		}
	}
	free := []string{}
	for _, r := range h.Inventory.Rooms() {
		if _, ok := taken[r.Number]; !ok {
			free = append(free, r.Number)
		}
	}
	return free
}

func parseKinds(raw string) ([]booking.Kind, error) {
	switch k := booking.Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case "":
		return []booking.Kind{booking.KindHotel, booking.KindAuditorium}, nil
	case booking.KindHotel, booking.KindAuditorium:
		return []booking.Kind{k}, nil
	default:
		return nil, errs.Invalid("unknown booking kind %q", raw)
	}
}

func knownStatus(s booking.Status) bool {
	switch s {
	case booking.StatusPending, booking.StatusConfirmed, booking.StatusCheckedIn,
		booking.StatusCheckedOut, booking.StatusCompleted, booking.StatusCancelled:
		return true
	}
	return false
}

type ListRoomsQuery struct{}

func (ListRoomsQuery) Key() string { return "inventory.rooms" }

type ListRoomsHandler struct {
	Inventory *inventory.Inventory
	Pricing   pricing.Config
}

func (h *ListRoomsHandler) Handle(_ context.Context, _ ListRoomsQuery) ([]dto.RoomView, error) {
	rooms := h.Inventory.Rooms()
	out := make([]dto.RoomView, 0, len(rooms))
	for _, r := range rooms {
		rate := h.Pricing.RoomRates[r.Type]
		out = append(out, dto.RoomView{
			Number:       r.Number,
			Type:         string(r.Type),
			Floor:        r.Floor,
			NightlyPrice: dto.MapMoney(money.Money{Amount: rate, Currency: h.Pricing.HotelCurrency}),
		})
	}
	return out, nil
}

// Register wires the availability queries.
func Register(bus *queries.InMemoryBus, factory uow.UoWFactory, inv *inventory.Inventory, cfg pricing.Config) {
	queries.RegisterHandler[DayAvailabilityQuery, dto.DayAvailability](bus, &DayAvailabilityHandler{UoWFactory: factory, Inventory: inv})
	queries.RegisterHandler[ListRoomsQuery, []dto.RoomView](bus, &ListRoomsHandler{Inventory: inv, Pricing: cfg})
}
