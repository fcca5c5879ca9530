package finance

import (
	"context"
	"errors"
	"time"

	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/events"
	"venuedesk/internal/domain/shared/money"
)

var (
	ErrInvoiceNotFound   = errors.New("finance: invoice not found")
	ErrInvoiceNotPayable = errors.New("finance: invoice is not payable")
	ErrAlreadyPaid       = errors.New("finance: invoice already paid")
	ErrDuplicateID       = errors.New("finance: duplicate id")
	ErrConcurrentUpdate  = errors.New("finance: concurrent update detected")
)

type InvoiceID string

type InvoiceStatus string

const (
	StatusIssued InvoiceStatus = "issued"
	StatusPaid   InvoiceStatus = "paid"
	StatusVoid   InvoiceStatus = "void"
)

// Invoice is an immutable snapshot of a booking's price at issue time. Only its
// status moves.
type Invoice struct {
	ID             InvoiceID
	BookingID      booking.BookingID
	Customer       string
	Lines          []pricing.Line
	Total          money.Money
	Secondary      []pricing.Line
	SecondaryTotal money.Money
	Status         InvoiceStatus
	LedgerEntryID  string
	IssuedAt       time.Time
	PaidAt         *time.Time
	VoidedAt       *time.Time
	Version        int64
	events.EventRecorder
}

type InvoiceRepository interface {
	ByID(ctx context.Context, id InvoiceID) (*Invoice, error)
	Insert(ctx context.Context, inv *Invoice) error
	Save(ctx context.Context, inv *Invoice) error
}

// Issue snapshots the booking's current quote.
func Issue(id InvoiceID, b *booking.Booking, at time.Time) *Invoice {
	q := b.Price.Copy()
	inv := &Invoice{
		ID:             id,
		BookingID:      b.ID,
		Customer:       b.Contact.Name,
		Lines:          q.Lines,
		Total:          q.Total,
		Secondary:      q.Secondary,
		SecondaryTotal: q.SecondaryTotal,
		Status:         StatusIssued,
		IssuedAt:       at.UTC(),
	}
	inv.Record(Issued{InvoiceID: id, BookingID: b.ID, Total: q.Total, At: inv.IssuedAt})
	return inv
}

// Pay marks the invoice paid against the given income entry.
func (inv *Invoice) Pay(entryID string, at time.Time) error {
	switch inv.Status {
	case StatusIssued:
	case StatusPaid:
		return ErrAlreadyPaid
	default:
		return ErrInvoiceNotPayable
	}
	paid := at.UTC()
	inv.Status = StatusPaid
	inv.PaidAt = &paid
	inv.LedgerEntryID = entryID
	inv.Record(Paid{InvoiceID: inv.ID, BookingID: inv.BookingID, Total: inv.Total, At: paid})
	return nil
}

// Void retires the invoice and returns the income entry that must be removed
// with it, if any. Voiding twice is a no-op.
func (inv *Invoice) Void(at time.Time) string {
	if inv.Status == StatusVoid {
		return ""
	}
	voided := at.UTC()
	entry := inv.LedgerEntryID
	inv.Status = StatusVoid
	inv.VoidedAt = &voided
	inv.LedgerEntryID = ""
	inv.Record(Voided{InvoiceID: inv.ID, BookingID: inv.BookingID, LedgerEntryID: entry, At: voided})
	return entry
}
