package finance

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/errs"
	"venuedesk/internal/domain/shared/money"
)

var ErrEntryNotFound = errors.New("finance: ledger entry not found")

type Direction string

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

const CategoryBooking = "booking"

type LedgerEntry struct {
	ID         string
	Direction  Direction
	Category   string
	Amount     money.Money
	InvoiceID  InvoiceID
	BookingID  string
	Note       string
	OccurredAt time.Time
}

type LedgerRepository interface {
	Insert(ctx context.Context, e *LedgerEntry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, window daterange.DateRange) ([]*LedgerEntry, error)
}

// IncomeFor books the payment of an invoice.
func IncomeFor(id string, inv *Invoice, at time.Time) *LedgerEntry {
	return &LedgerEntry{
		ID:         id,
		Direction:  Income,
		Category:   CategoryBooking,
		Amount:     inv.Total,
		InvoiceID:  inv.ID,
		BookingID:  string(inv.BookingID),
		OccurredAt: at.UTC(),
	}
}

func NewExpense(id, category string, amount money.Money, note string, at time.Time) (*LedgerEntry, error) {
	var missing []string
	if strings.TrimSpace(category) == "" {
		missing = append(missing, "category")
	}
	if amount.Currency == "" {
		missing = append(missing, "currency")
	}
	if len(missing) > 0 {
		return nil, errs.Missing(missing...)
	}
	if amount.Amount <= 0 {
		return nil, errs.Invalid("expense amount must be positive")
	}
	return &LedgerEntry{
		ID:         id,
		Direction:  Expense,
		Category:   strings.TrimSpace(category),
		Amount:     amount,
		Note:       note,
		OccurredAt: at.UTC(),
	}, nil
}

// Totals are minor-unit sums for one currency.
type Totals struct {
	Currency string `json:"currency"`
	Income   int64  `json:"income"`
	Expense  int64  `json:"expense"`
	Net      int64  `json:"net"`
}

type Cashflow struct {
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Entries int       `json:"entries"`
	Totals  []Totals  `json:"totals"`
}

// Summarize folds the entries falling inside [from, to) into per-currency totals,
// ordered by currency code.
func Summarize(entries []*LedgerEntry, window daterange.DateRange) Cashflow {
	byCur := make(map[string]*Totals)
	out := Cashflow{From: window.Start, To: window.End}
	for _, e := range entries {
		if !window.ContainsInstant(e.OccurredAt) {
			continue
		}
		t, ok := byCur[e.Amount.Currency]
		if !ok {
			t = &Totals{Currency: e.Amount.Currency}
			byCur[e.Amount.Currency] = t
		}
		switch e.Direction {
		case Income:
			t.Income += e.Amount.Amount
		case Expense:
			t.Expense += e.Amount.Amount
		}
		t.Net = t.Income - t.Expense
		out.Entries++
	}
	for _, t := range byCur {
		out.Totals = append(out.Totals, *t)
	}
	sort.Slice(out.Totals, func(i, j int) bool { return out.Totals[i].Currency < out.Totals[j].Currency })
	return out
}
