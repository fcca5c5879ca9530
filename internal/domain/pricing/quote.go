package pricing

import (
	"venuedesk/internal/domain/shared/errs"
	"venuedesk/internal/domain/shared/money"
)

type Line struct {
	Label  string      `json:"label" bson:"label"`
	Amount money.Money `json:"amount" bson:"amount"`
}

// Quote is an ordered price breakdown. Secondary carries charges billed in a
// second currency (hotel meals) that are shown but never added to Total.
type Quote struct {
	Lines          []Line      `json:"lines" bson:"lines"`
	Total          money.Money `json:"total" bson:"total"`
	Secondary      []Line      `json:"secondary,omitempty" bson:"secondary,omitempty"`
	SecondaryTotal money.Money `json:"secondary_total" bson:"secondary_total"`
	Version        string      `json:"pricing_version" bson:"pricing_version"`
}

func (q Quote) Copy() Quote {
	clone := q
	clone.Lines = append([]Line(nil), q.Lines...)
	clone.Secondary = append([]Line(nil), q.Secondary...)
	return clone
}

type builder struct {
	currency string
	lines    []Line
	total    int64
}

func newBuilder(currency string) *builder {
	return &builder{currency: currency}
}

func (b *builder) add(label string, amount int64) {
	b.lines = append(b.lines, Line{Label: label, Amount: money.Money{Amount: amount, Currency: b.currency}})
	b.total += amount
}

func (b *builder) sum() money.Money {
	return money.Money{Amount: b.total, Currency: b.currency}
}

// CheckAdvisory compares a client-computed total against the server quote.
// A nil client total is accepted; anything further off than tolerance is rejected.
func CheckAdvisory(q Quote, clientTotal *int64, tolerance int64) error {
	if clientTotal == nil {
		return nil
	}
	diff := *clientTotal - q.Total.Amount
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return errs.Invalid("submitted total %s does not match the computed total %s",
			money.Money{Amount: *clientTotal, Currency: q.Total.Currency}, q.Total)
	}
	return nil
}
