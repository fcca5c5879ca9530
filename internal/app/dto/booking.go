package dto

import (
	"time"

	domainbooking "venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

type ContactDTO struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Messenger string `json:"messenger"`
	Email     string `json:"email,omitempty"`
}

type HotelView struct {
	Rooms     []string       `json:"rooms"`
	Requested map[string]int `json:"requested"`
	ExtraBeds map[string]int `json:"extra_beds,omitempty"`
	Nights    int            `json:"nights"`
	Pickup    string         `json:"pickup,omitempty"`
}

type HallView struct {
	EventName  string            `json:"event_name"`
	Package    string            `json:"package"`
	Duration   int               `json:"duration_hours"`
	AfterHours int               `json:"after_hours"`
	ExtraHours int               `json:"extra_hours"`
	Services   map[string]string `json:"services,omitempty"`
}

type BookingView struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Status    string     `json:"status"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Contact   ContactDTO `json:"contact"`
	Quote     QuoteView  `json:"quote"`
	Hotel     *HotelView `json:"hotel,omitempty"`
	Hall      *HallView  `json:"hall,omitempty"`
	InvoiceID string     `json:"invoice_id,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BookingActionResult is returned by status transition commands.
type BookingActionResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
	InvoiceID string `json:"invoice_id,omitempty"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:    value.Amount,
		Currency:  value.Currency,
		Formatted: value.String(),
	}
}

func MapBooking(b *domainbooking.Booking) BookingView {
	view := BookingView{
		ID:     string(b.ID),
		Kind:   string(b.Kind),
		Status: string(b.Status),
		Start:  b.Window.Start,
		End:    b.Window.End,
		Contact: ContactDTO{
			Name:      b.Contact.Name,
			Phone:     b.Contact.Phone,
			Messenger: b.Contact.Messenger,
			Email:     b.Contact.Email,
		},
		Quote:     MapQuote(b.Price),
		InvoiceID: b.InvoiceID,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if h := b.Hotel; h != nil {
		view.Hotel = &HotelView{
			Rooms:     append([]string(nil), h.Rooms...),
			Requested: stringKeys(h.Request.Quantities),
			ExtraBeds: stringKeys(h.Request.ExtraBeds),
			Nights:    h.Nights,
			Pickup:    h.Pickup,
		}
	}
	if h := b.Hall; h != nil {
		view.Hall = &HallView{
			EventName:  h.EventName,
			Package:    h.Package,
			Duration:   h.Duration,
			AfterHours: h.AfterHours,
			ExtraHours: h.ExtraHours,
			Services:   h.Services,
		}
	}
	return view
}

func stringKeys[K ~string](m map[K]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
