package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end must be after start")
)

const dayLayout = "2006-01-02"

// DateRange represents a half-open interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: start.UTC(), End: end.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day returns the [00:00, 24:00) range of the calendar day containing t.
func Day(t time.Time) DateRange {
	start := StartOfDay(t)
	return DateRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// StartOfDay truncates t to midnight UTC of its calendar date.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, value, time.UTC)
}

// FormatDay renders t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

func (dr DateRange) Validate() error {
	if dr.End.IsZero() || dr.Start.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Duration() time.Duration {
	return dr.End.Sub(dr.Start)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

func (dr DateRange) ContainsInstant(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.Start) || t.After(dr.Start)) && t.Before(dr.End)
}

// EndClock prints the end as HH:MM, using 24:00 when the range runs to the
// midnight after its start day.
func (dr DateRange) EndClock() string {
	if dr.End.After(dr.Start) && dr.End.Equal(StartOfDay(dr.Start).AddDate(0, 0, 1)) {
		return "24:00"
	}
	return dr.End.Format("15:04")
}

// Days lists the midnight of every calendar day the range touches, in order.
func (dr DateRange) Days() []time.Time {
	var out []time.Time
	for d := StartOfDay(dr.Start); d.Before(dr.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
