package booking

import (
	"strings"

	domainbooking "venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/inventory"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/errs"
)

// Upper bounds on a single hotel request. They keep every priced line well
// inside int64 minor units.
const (
	MaxStayNights       = 365
	MaxRoomsPerType     = 100
	MaxExtraBedsPerRoom = 1
	MaxMealQuantity     = 500
	MaxMealServings     = 6
)

type ContactInput struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Messenger string `json:"messenger" validate:"required"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

func (c ContactInput) contact() domainbooking.Contact {
	return domainbooking.Contact{
		Name:      strings.TrimSpace(c.Name),
		Phone:     strings.TrimSpace(c.Phone),
		Messenger: strings.TrimSpace(c.Messenger),
		Email:     strings.TrimSpace(c.Email),
	}
}

// StaySelection is what a hotel guest picks. Dates are YYYY-MM-DD; check-out
// is exclusive.
type StaySelection struct {
	CheckIn   string                  `json:"check_in" validate:"required"`
	CheckOut  string                  `json:"check_out" validate:"required"`
	Rooms     map[string]int          `json:"rooms" validate:"required"`
	ExtraBeds map[string]int          `json:"extra_beds,omitempty"`
	Pickup    string                  `json:"pickup,omitempty"`
	Meals     []pricing.MealSelection `json:"meals,omitempty"`
}

type stay struct {
	window  daterange.DateRange
	nights  int
	request domainbooking.RoomRequest
	input   pricing.HotelInput
}

func (s StaySelection) resolve() (stay, error) {
	in, err := daterange.ParseDay(s.CheckIn)
	if err != nil {
		return stay{}, errs.Invalid("check_in must be a date formatted YYYY-MM-DD")
	}
	out, err := daterange.ParseDay(s.CheckOut)
	if err != nil {
		return stay{}, errs.Invalid("check_out must be a date formatted YYYY-MM-DD")
	}
	window, err := daterange.New(in, out)
	if err != nil {
		return stay{}, errs.Invalid("check_out must be after check_in")
	}
	rooms, err := roomCounts(s.Rooms)
	if err != nil {
		return stay{}, err
	}
	for t, n := range rooms {
		if n > MaxRoomsPerType {
			return stay{}, errs.Invalid("at most %d %s rooms can be booked at once", MaxRoomsPerType, t)
		}
	}
	beds, err := roomCounts(s.ExtraBeds)
	if err != nil {
		return stay{}, err
	}
	for t, n := range beds {
		if rooms[t] == 0 {
			return stay{}, errs.Invalid("extra beds for %s need at least one %s room", t, t)
		}
		if n > rooms[t]*MaxExtraBedsPerRoom {
			return stay{}, errs.Invalid("at most %d extra bed(s) per %s room", MaxExtraBedsPerRoom, t)
		}
	}
	for _, m := range s.Meals {
		if m.Quantity < 0 {
			return stay{}, errs.Invalid("meal quantity cannot be negative")
		}
		if m.Quantity > MaxMealQuantity {
			return stay{}, errs.Invalid("meal quantity for %s cannot exceed %d", m.Package, MaxMealQuantity)
		}
		if len(m.Servings) > MaxMealServings {
			return stay{}, errs.Invalid("meal %s allows at most %d serving times", m.Package, MaxMealServings)
		}
	}
	nights := pricing.Nights(window)
	if nights > MaxStayNights {
		return stay{}, errs.Invalid("a stay cannot be longer than %d nights", MaxStayNights)
	}
	return stay{
		window:  window,
		nights:  nights,
		request: domainbooking.RoomRequest{Quantities: rooms, ExtraBeds: beds},
		input: pricing.HotelInput{
			Nights:    nights,
			Rooms:     rooms,
			ExtraBeds: beds,
			Pickup:    strings.TrimSpace(s.Pickup),
			Meals:     s.Meals,
		},
	}, nil
}

func roomCounts(raw map[string]int) (map[inventory.RoomType]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[inventory.RoomType]int, len(raw))
	for k, v := range raw {
		t := inventory.RoomType(strings.ToLower(strings.TrimSpace(k)))
		if !t.Valid() {
			return nil, errs.Invalid("unknown room type %q", k)
		}
		if v < 0 {
			return nil, errs.Invalid("room quantity for %s cannot be negative", t)
		}
		if v > 0 {
			out[t] += v
		}
	}
	return out, nil
}

// HallSelection is what an auditorium renter picks. Times are whole hours,
// HH:00, with 24:00 allowed as the end.
type HallSelection struct {
	Date       string            `json:"date" validate:"required"`
	StartTime  string            `json:"start_time" validate:"required"`
	EndTime    string            `json:"end_time" validate:"required"`
	ExtraHours int               `json:"extra_hours,omitempty" validate:"gte=0,lte=24"`
	Services   map[string]string `json:"services,omitempty"`
}

type hall struct {
	window daterange.DateRange
	input  pricing.HallInput
}

func (s HallSelection) resolve() (hall, error) {
	day, err := daterange.ParseDay(s.Date)
	if err != nil {
		return hall{}, errs.Invalid("date must be formatted YYYY-MM-DD")
	}
	start, err := pricing.ParseClock(s.StartTime)
	if err != nil {
		return hall{}, errs.Rejected(err)
	}
	end, err := pricing.ParseClock(s.EndTime)
	if err != nil {
		return hall{}, errs.Rejected(err)
	}
	duration, afterHours, err := pricing.HallTiming(start, end)
	if err != nil {
		return hall{}, errs.Rejected(err)
	}
	return hall{
		window: daterange.DateRange{Start: start.On(day), End: end.On(day)},
		input: pricing.HallInput{
			Duration:   duration,
			AfterHours: afterHours,
			ExtraHours: s.ExtraHours,
			Services:   pricing.ServiceSelection(s.Services),
		},
	}, nil
}
