package dto

import (
	"time"

	"venuedesk/internal/domain/finance"
)

type InvoiceView struct {
	ID             string     `json:"id"`
	BookingID      string     `json:"booking_id"`
	Customer       string     `json:"customer"`
	Status         string     `json:"status"`
	Lines          []LineDTO  `json:"lines"`
	Total          MoneyDTO   `json:"total"`
	Secondary      []LineDTO  `json:"secondary,omitempty"`
	SecondaryTotal *MoneyDTO  `json:"secondary_total,omitempty"`
	IssuedAt       time.Time  `json:"issued_at"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	VoidedAt       *time.Time `json:"voided_at,omitempty"`
}

type LedgerEntryView struct {
	ID         string    `json:"id"`
	Direction  string    `json:"direction"`
	Category   string    `json:"category"`
	Amount     MoneyDTO  `json:"amount"`
	InvoiceID  string    `json:"invoice_id,omitempty"`
	BookingID  string    `json:"booking_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func MapInvoice(inv *finance.Invoice) InvoiceView {
	view := InvoiceView{
		ID:        string(inv.ID),
		BookingID: string(inv.BookingID),
		Customer:  inv.Customer,
		Status:    string(inv.Status),
		Lines:     mapLines(inv.Lines),
		Total:     MapMoney(inv.Total),
		IssuedAt:  inv.IssuedAt,
		PaidAt:    inv.PaidAt,
		VoidedAt:  inv.VoidedAt,
	}
	if len(inv.Secondary) > 0 {
		view.Secondary = mapLines(inv.Secondary)
		st := MapMoney(inv.SecondaryTotal)
		view.SecondaryTotal = &st
	}
	return view
}

func MapLedgerEntry(e *finance.LedgerEntry) LedgerEntryView {
	return LedgerEntryView{
		ID:         e.ID,
		Direction:  string(e.Direction),
		Category:   e.Category,
		Amount:     MapMoney(e.Amount),
		InvoiceID:  string(e.InvoiceID),
		BookingID:  e.BookingID,
		Note:       e.Note,
		OccurredAt: e.OccurredAt,
	}
}
