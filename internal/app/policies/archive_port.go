package policies

import (
	"context"

	"venuedesk/internal/domain/finance"
)

// InvoiceArchive keeps an external copy of issued invoices and returns where
// the copy lives.
type InvoiceArchive interface {
	Store(ctx context.Context, inv *finance.Invoice) (string, error)
}
