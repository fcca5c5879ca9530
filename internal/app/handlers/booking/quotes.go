package booking

import (
	"context"

	"venuedesk/internal/app/dto"
	"venuedesk/internal/app/queries"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/errs"
)

// QuoteHotelQuery previews the price of a stay without touching storage.
type QuoteHotelQuery struct {
	StaySelection
}

func (QuoteHotelQuery) Key() string { return "quote.hotel" }

type QuoteAuditoriumQuery struct {
	HallSelection
}

func (QuoteAuditoriumQuery) Key() string { return "quote.auditorium" }

type QuoteHandler struct {
	Pricing pricing.Config
}

func (h *QuoteHandler) Hotel(_ context.Context, q QuoteHotelQuery) (dto.QuoteView, error) {
	st, err := q.StaySelection.resolve()
	if err != nil {
		return dto.QuoteView{}, err
	}
	if st.request.TotalRooms() == 0 {
		return dto.QuoteView{}, errs.Invalid("no rooms requested")
	}
	return dto.MapQuote(pricing.QuoteHotel(h.Pricing, st.input)), nil
}

func (h *QuoteHandler) Auditorium(_ context.Context, q QuoteAuditoriumQuery) (dto.QuoteView, error) {
	hl, err := q.HallSelection.resolve()
	if err != nil {
		return dto.QuoteView{}, err
	}
	if len(h.Pricing.HallPackages) == 0 {
		return dto.QuoteView{}, errs.Rejected(pricing.ErrNoPackages)
	}
	return dto.MapQuote(pricing.QuoteHall(h.Pricing, hl.input)), nil
}

var (
	_ queries.Handler[QuoteHotelQuery, dto.QuoteView]      = queries.HandlerFunc[QuoteHotelQuery, dto.QuoteView]((&QuoteHandler{}).Hotel)
	_ queries.Handler[QuoteAuditoriumQuery, dto.QuoteView] = queries.HandlerFunc[QuoteAuditoriumQuery, dto.QuoteView]((&QuoteHandler{}).Auditorium)
)
