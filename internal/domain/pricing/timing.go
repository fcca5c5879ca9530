package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"venuedesk/internal/domain/shared/daterange"
)

const (
	MinHallHours = 1
	MaxHallHours = 14

	afterHoursFrom  = 22
	afterHoursUntil = 7
)

var (
	ErrInvalidClock       = errors.New("pricing: clock time must be HH:00 between 00:00 and 24:00")
	ErrInvalidWindow      = errors.New("pricing: end time must be after start time")
	ErrDurationOutOfRange = fmt.Errorf("pricing: rental must last between %d and %d hours", MinHallHours, MaxHallHours)
)

// ClockTime is an hour of the day; 24 is only meaningful as an end time.
type ClockTime int

func ParseClock(value string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, ErrInvalidClock
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, ErrInvalidClock
	}
	if parts[1] != "00" {
		return 0, ErrInvalidClock
	}
	return ClockTime(hour), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:00", int(c))
}

// On anchors the clock time to a calendar day.
func (c ClockTime) On(day time.Time) time.Time {
	return daterange.StartOfDay(day).Add(time.Duration(c) * time.Hour)
}

// HallTiming derives the rental duration and how many of its hourly slots fall in
// the nightly after-hours window. Windows wrapping past midnight are rejected.
func HallTiming(start, end ClockTime) (duration int, afterHours int, err error) {
	if start < 0 || start > 23 || end < 0 || end > 24 {
		return 0, 0, ErrInvalidClock
	}
	if end <= start {
		return 0, 0, ErrInvalidWindow
	}
	duration = int(end - start)
	if duration < MinHallHours || duration > MaxHallHours {
		return 0, 0, ErrDurationOutOfRange
	}
	for h := int(start); h < int(end); h++ {
		if h >= afterHoursFrom || h < afterHoursUntil {
			afterHours++
		}
	}
	return duration, afterHours, nil
}

// Nights counts billable nights of a stay: partial days round up, minimum one.
func Nights(stay daterange.DateRange) int {
	days := stay.Duration().Hours() / 24
	n := int(math.Ceil(days))
	if n < 1 {
		return 1
	}
	return n
}
