package finance

import (
	"time"

	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/shared/money"
)

type Issued struct {
	InvoiceID InvoiceID         `json:"invoice_id"`
	BookingID booking.BookingID `json:"booking_id"`
	Total     money.Money       `json:"total"`
	At        time.Time         `json:"at"`
}

func (e Issued) EventName() string     { return "invoice.issued" }
func (e Issued) AggregateID() string   { return string(e.InvoiceID) }
func (e Issued) OccurredAt() time.Time { return e.At }

type Paid struct {
	InvoiceID InvoiceID         `json:"invoice_id"`
	BookingID booking.BookingID `json:"booking_id"`
	Total     money.Money       `json:"total"`
	At        time.Time         `json:"at"`
}

func (e Paid) EventName() string     { return "invoice.paid" }
func (e Paid) AggregateID() string   { return string(e.InvoiceID) }
func (e Paid) OccurredAt() time.Time { return e.At }

type Voided struct {
	InvoiceID     InvoiceID         `json:"invoice_id"`
	BookingID     booking.BookingID `json:"booking_id"`
	LedgerEntryID string            `json:"ledger_entry_id,omitempty"`
	At            time.Time         `json:"at"`
}

func (e Voided) EventName() string     { return "invoice.voided" }
func (e Voided) AggregateID() string   { return string(e.InvoiceID) }
func (e Voided) OccurredAt() time.Time { return e.At }
