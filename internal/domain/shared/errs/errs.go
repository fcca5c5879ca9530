// Package errs holds the user-facing failure taxonomy shared by the booking core.
// Validation and capacity failures are detected before anything is written and are
// safe to show to callers verbatim; everything else is treated as an internal fault.
package errs

import (
	"errors"
	"fmt"
	"strings"

	"venuedesk/internal/domain/shared/daterange"
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Fields []string
	Reason string
	cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		msg := "missing required fields: " + strings.Join(e.Fields, ", ")
		if e.Reason != "" {
			msg = e.Reason + " (" + msg + ")"
		}
		return msg
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.cause }

// Rejected turns a domain sentinel into a ValidationError that still matches it
// with errors.Is. The "pkg: " prefix is dropped from the message.
func Rejected(err error) error {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 && !strings.Contains(msg[:i], " ") {
		msg = msg[i+2:]
	}
	return &ValidationError{Reason: msg, cause: err}
}

// Because builds a ValidationError with a formatted reason that still matches
// cause with errors.Is.
func Because(cause error, format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...), cause: cause}
}

// Invalid builds a ValidationError with a formatted reason.
func Invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Missing builds a ValidationError listing the absent fields.
func Missing(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// CapacityError reports that inventory or the shared hall is unavailable for a window.
type CapacityError struct {
	RoomType  string
	Remaining int
	Conflict  *daterange.DateRange
	Reason    string
}

func (e *CapacityError) Error() string {
	switch {
	case e.Reason != "":
		return e.Reason
	case e.Conflict != nil:
		return fmt.Sprintf("The auditorium is already booked from %s to %s on %s.",
			e.Conflict.Start.Format("15:04"), e.Conflict.EndClock(), daterange.FormatDay(e.Conflict.Start))
	default:
		return fmt.Sprintf("Not enough available %s rooms for the selected dates. Only %d left.", e.RoomType, e.Remaining)
	}
}

// UserMessage returns the text of the validation or capacity failure inside
// err, and false when err is an internal fault that must not be shown.
func UserMessage(err error) (string, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Error(), true
	}
	var c *CapacityError
	if errors.As(err, &c) {
		return c.Error(), true
	}
	return "", false
}
