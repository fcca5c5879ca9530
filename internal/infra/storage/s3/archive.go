package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venuedesk/internal/app/policies"
	"venuedesk/internal/domain/finance"
	"venuedesk/internal/domain/pricing"
)

// InvoiceArchive writes issued invoices as JSON snapshots under
// invoices/<booking>/<invoice>.json.
type InvoiceArchive struct {
	Uploader Uploader
}

type invoiceSnapshot struct {
	ID             string         `json:"id"`
	BookingID      string         `json:"booking_id"`
	Customer       string         `json:"customer"`
	Lines          []pricing.Line `json:"lines"`
	Total          string         `json:"total"`
	Secondary      []pricing.Line `json:"secondary,omitempty"`
	SecondaryTotal string         `json:"secondary_total,omitempty"`
	Status         string         `json:"status"`
	IssuedAt       time.Time      `json:"issued_at"`
}

func (a InvoiceArchive) Store(ctx context.Context, inv *finance.Invoice) (string, error) {
	if a.Uploader == nil {
		return "", errors.New("s3: archive has no uploader")
	}
	snap := invoiceSnapshot{
		ID:        string(inv.ID),
		BookingID: string(inv.BookingID),
		Customer:  inv.Customer,
		Lines:     inv.Lines,
		Total:     inv.Total.String(),
		Secondary: inv.Secondary,
		Status:    string(inv.Status),
		IssuedAt:  inv.IssuedAt,
	}
	if !inv.SecondaryTotal.IsZero() {
		snap.SecondaryTotal = inv.SecondaryTotal.String()
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("s3: encode invoice: %w", err)
	}
	key := fmt.Sprintf("invoices/%s/%s.json", inv.BookingID, inv.ID)
	return a.Uploader.Upload(ctx, key, bytes.NewReader(body), "application/json")
}

var _ policies.InvoiceArchive = InvoiceArchive{}
