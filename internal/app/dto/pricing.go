package dto

import domainpricing "venuedesk/internal/domain/pricing"

type LineDTO struct {
	Label  string   `json:"label"`
	Amount MoneyDTO `json:"amount"`
}

// QuoteView is a price breakdown. Secondary lines are billed in a separate
// currency and never summed into Total.
type QuoteView struct {
	Lines          []LineDTO `json:"lines"`
	Total          MoneyDTO  `json:"total"`
	Secondary      []LineDTO `json:"secondary,omitempty"`
	SecondaryTotal *MoneyDTO `json:"secondary_total,omitempty"`
	Version        string    `json:"pricing_version,omitempty"`
}

func MapQuote(q domainpricing.Quote) QuoteView {
	view := QuoteView{
		Lines:   mapLines(q.Lines),
		Total:   MapMoney(q.Total),
		Version: q.Version,
	}
	if len(q.Secondary) > 0 {
		view.Secondary = mapLines(q.Secondary)
		st := MapMoney(q.SecondaryTotal)
		view.SecondaryTotal = &st
	}
	return view
}

func mapLines(lines []domainpricing.Line) []LineDTO {
	out := make([]LineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineDTO{Label: l.Label, Amount: MapMoney(l.Amount)})
	}
	return out
}
