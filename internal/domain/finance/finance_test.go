package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/errs"
	"venuedesk/internal/domain/shared/money"
)

var at = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func sampleBooking() *booking.Booking {
	return &booking.Booking{
		ID:      "HTL-20260210-0001",
		Kind:    booking.KindHotel,
		Contact: booking.Contact{Name: "Ayu"},
		Price: pricing.Quote{
			Lines: []pricing.Line{{Label: "double x1 x2 nights", Amount: money.Must(7000, "USD")}},
			Total: money.Must(7000, "USD"),
		},
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	inv := Issue("INV-20260210-0001", sampleBooking(), at)
	assert.Equal(t, StatusIssued, inv.Status)
	assert.Equal(t, int64(7000), inv.Total.Amount)

	require.NoError(t, inv.Pay("entry-1", at))
	assert.Equal(t, StatusPaid, inv.Status)
	assert.ErrorIs(t, inv.Pay("entry-2", at), ErrAlreadyPaid)

	assert.Equal(t, "entry-1", inv.Void(at))
	assert.Equal(t, StatusVoid, inv.Status)
	assert.Empty(t, inv.Void(at))
	assert.ErrorIs(t, inv.Pay("entry-3", at), ErrInvoiceNotPayable)

	names := make([]string, 0)
	for _, e := range inv.Pull() {
		names = append(names, e.EventName())
	}
	assert.Equal(t, []string{"invoice.issued", "invoice.paid", "invoice.voided"}, names)
}

func TestInvoiceSnapshotIsDetached(t *testing.T) {
	b := sampleBooking()
	inv := Issue("INV-1", b, at)
	b.Price.Lines[0].Label = "changed"
	assert.Equal(t, "double x1 x2 nights", inv.Lines[0].Label)
}

func TestNewExpenseValidation(t *testing.T) {
	_, err := NewExpense("e1", "", money.Money{Amount: 100}, "", at)
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"category", "currency"}, verr.Fields)

	_, err = NewExpense("e1", "laundry", money.Must(0, "IDR"), "", at)
	assert.ErrorAs(t, err, &verr)

	e, err := NewExpense("e1", " laundry ", money.Must(50000, "IDR"), "sheets", at)
	require.NoError(t, err)
	assert.Equal(t, Expense, e.Direction)
	assert.Equal(t, "laundry", e.Category)
}

func TestSummarize(t *testing.T) {
	from, _ := daterange.ParseDay("2026-02-01")
	window := daterange.DateRange{Start: from, End: from.AddDate(0, 1, 0)}
	inv := Issue("INV-1", sampleBooking(), at)
	expense, err := NewExpense("e1", "laundry", money.Must(50000, "IDR"), "", at)
	require.NoError(t, err)
	usdExpense, err := NewExpense("e2", "repairs", money.Must(1500, "USD"), "", at)
	require.NoError(t, err)
	outside, err := NewExpense("e3", "repairs", money.Must(900, "USD"), "", window.End)
	require.NoError(t, err)

	got := Summarize([]*LedgerEntry{IncomeFor("i1", inv, at), expense, usdExpense, outside}, window)
	assert.Equal(t, 3, got.Entries)
	assert.Equal(t, []Totals{
		{Currency: "IDR", Expense: 50000, Net: -50000},
		{Currency: "USD", Income: 7000, Expense: 1500, Net: 5500},
	}, got.Totals)
}
