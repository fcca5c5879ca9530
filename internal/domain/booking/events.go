package booking

import (
	"time"

	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/money"
)

type Requested struct {
	BookingID BookingID           `json:"booking_id"`
	Kind      Kind                `json:"kind"`
	Window    daterange.DateRange `json:"window"`
	Rooms     []string            `json:"rooms,omitempty"`
	Total     money.Money         `json:"total"`
	At        time.Time           `json:"at"`
}

func (e Requested) EventName() string     { return "booking.requested" }
func (e Requested) AggregateID() string   { return string(e.BookingID) }
func (e Requested) OccurredAt() time.Time { return e.At }

type Confirmed struct {
	BookingID BookingID `json:"booking_id"`
	Kind      Kind      `json:"kind"`
	At        time.Time `json:"at"`
}

func (e Confirmed) EventName() string     { return "booking.confirmed" }
func (e Confirmed) AggregateID() string   { return string(e.BookingID) }
func (e Confirmed) OccurredAt() time.Time { return e.At }

type CheckedIn struct {
	BookingID BookingID `json:"booking_id"`
	At        time.Time `json:"at"`
}

func (e CheckedIn) EventName() string     { return "booking.checked_in" }
func (e CheckedIn) AggregateID() string   { return string(e.BookingID) }
func (e CheckedIn) OccurredAt() time.Time { return e.At }

type CheckedOut struct {
	BookingID BookingID `json:"booking_id"`
	At        time.Time `json:"at"`
}

func (e CheckedOut) EventName() string     { return "booking.checked_out" }
func (e CheckedOut) AggregateID() string   { return string(e.BookingID) }
func (e CheckedOut) OccurredAt() time.Time { return e.At }

type Completed struct {
	BookingID BookingID `json:"booking_id"`
	Kind      Kind      `json:"kind"`
	At        time.Time `json:"at"`
}

func (e Completed) EventName() string     { return "booking.completed" }
func (e Completed) AggregateID() string   { return string(e.BookingID) }
func (e Completed) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID BookingID `json:"booking_id"`
	Kind      Kind      `json:"kind"`
	From      Status    `json:"from"`
	Reason    string    `json:"reason,omitempty"`
	InvoiceID string    `json:"invoice_id,omitempty"`
	At        time.Time `json:"at"`
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.BookingID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }
