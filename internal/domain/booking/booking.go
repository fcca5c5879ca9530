package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"venuedesk/internal/domain/inventory"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/errs"
	"venuedesk/internal/domain/shared/events"
)

var (
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrBookingNotFound   = errors.New("booking: not found")
	ErrDuplicateID       = errors.New("booking: duplicate booking id")
	ErrConcurrentUpdate  = errors.New("booking: concurrent update detected")
	ErrRoomCountMismatch = errors.New("booking: assigned rooms do not match requested quantities")
)

type BookingID string

type Kind string

const (
	KindHotel      Kind = "hotel"
	KindAuditorium Kind = "auditorium"
)

func (k Kind) Valid() bool {
	return k == KindHotel || k == KindAuditorium
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Contact struct {
	Name      string `json:"name" bson:"name"`
	Phone     string `json:"phone" bson:"phone"`
	Messenger string `json:"messenger" bson:"messenger"`
	Email     string `json:"email,omitempty" bson:"email,omitempty"`
}

// Missing lists the required contact fields that are blank.
func (c Contact) Missing() []string {
	var out []string
	if strings.TrimSpace(c.Name) == "" {
		out = append(out, "name")
	}
	if strings.TrimSpace(c.Phone) == "" {
		out = append(out, "phone")
	}
	if strings.TrimSpace(c.Messenger) == "" {
		out = append(out, "messenger")
	}
	return out
}

// RoomRequest holds requested quantities and extra beds per room type.
type RoomRequest struct {
	Quantities map[inventory.RoomType]int `json:"quantities" bson:"quantities"`
	ExtraBeds  map[inventory.RoomType]int `json:"extra_beds,omitempty" bson:"extra_beds,omitempty"`
}

func (r RoomRequest) TotalRooms() int {
	n := 0
	for _, q := range r.Quantities {
		if q > 0 {
			n += q
		}
	}
	return n
}

type HotelDetails struct {
	Request RoomRequest             `json:"request" bson:"request"`
	Rooms   []string                `json:"rooms" bson:"rooms"`
	Nights  int                     `json:"nights" bson:"nights"`
	Pickup  string                  `json:"pickup,omitempty" bson:"pickup,omitempty"`
	Meals   []pricing.MealSelection `json:"meals,omitempty" bson:"meals,omitempty"`
}

type HallDetails struct {
	EventName  string                   `json:"event_name" bson:"event_name"`
	Package    string                   `json:"package" bson:"package"`
	Duration   int                      `json:"duration" bson:"duration"`
	AfterHours int                      `json:"after_hours" bson:"after_hours"`
	ExtraHours int                      `json:"extra_hours" bson:"extra_hours"`
	Services   pricing.ServiceSelection `json:"services,omitempty" bson:"services,omitempty"`
}

// Booking is a reservation of hotel rooms or of the auditorium for a time window.
type Booking struct {
	ID        BookingID
	Kind      Kind
	Window    daterange.DateRange
	Status    Status
	Contact   Contact
	Price     pricing.Quote
	Hotel     *HotelDetails
	Hall      *HallDetails
	InvoiceID string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

// Repository persists bookings. List methods never return cancelled bookings
// unless a status filter asks for them.
type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Insert(ctx context.Context, b *Booking) error
	Save(ctx context.Context, b *Booking) error
	ListActiveOverlapping(ctx context.Context, kind Kind, window daterange.DateRange) ([]*Booking, error)
	ListOverlapping(ctx context.Context, kind Kind, window daterange.DateRange, status Status) ([]*Booking, error)
}

type HotelParams struct {
	ID        BookingID
	Stay      daterange.DateRange
	Contact   Contact
	Details   HotelDetails
	Price     pricing.Quote
	Notes     string
	CreatedAt time.Time
}

func NewHotel(p HotelParams) (*Booking, error) {
	if missing := p.Contact.Missing(); len(missing) > 0 {
		return nil, errs.Missing(missing...)
	}
	if len(p.Details.Rooms) != p.Details.Request.TotalRooms() || len(p.Details.Rooms) == 0 {
		return nil, ErrRoomCountMismatch
	}
	details := p.Details
	details.Rooms = append([]string(nil), p.Details.Rooms...)
	b := newBooking(p.ID, KindHotel, p.Stay, p.Contact, p.Price, p.Notes, p.CreatedAt)
	b.Hotel = &details
	b.Record(Requested{BookingID: b.ID, Kind: b.Kind, Window: b.Window, Rooms: details.Rooms, Total: b.Price.Total, At: b.CreatedAt})
	return b, nil
}

type HallParams struct {
	ID        BookingID
	Window    daterange.DateRange
	Contact   Contact
	Details   HallDetails
	Price     pricing.Quote
	Notes     string
	CreatedAt time.Time
}

func NewAuditorium(p HallParams) (*Booking, error) {
	if missing := p.Contact.Missing(); len(missing) > 0 {
		return nil, errs.Missing(missing...)
	}
	details := p.Details
	b := newBooking(p.ID, KindAuditorium, p.Window, p.Contact, p.Price, p.Notes, p.CreatedAt)
	b.Hall = &details
	b.Record(Requested{BookingID: b.ID, Kind: b.Kind, Window: b.Window, Total: b.Price.Total, At: b.CreatedAt})
	return b, nil
}

func newBooking(id BookingID, kind Kind, window daterange.DateRange, contact Contact, price pricing.Quote, notes string, at time.Time) *Booking {
	now := at.UTC()
	return &Booking{
		ID:        id,
		Kind:      kind,
		Window:    window,
		Status:    StatusPending,
		Contact:   contact,
		Price:     price.Copy(),
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Nights recomputes the stay length from the stored window.
func (b *Booking) Nights() int {
	if b.Kind != KindHotel {
		return 0
	}
	return pricing.Nights(b.Window)
}

func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}
	b.transition(StatusConfirmed, now)
	b.Record(Confirmed{BookingID: b.ID, Kind: b.Kind, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckIn(now time.Time) error {
	if b.Kind != KindHotel || b.Status != StatusConfirmed {
		return ErrInvalidTransition
	}
	b.transition(StatusCheckedIn, now)
	b.Record(CheckedIn{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckOut(now time.Time) error {
	if b.Kind != KindHotel || b.Status != StatusCheckedIn {
		return ErrInvalidTransition
	}
	b.transition(StatusCheckedOut, now)
	b.Record(CheckedOut{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	switch b.Status {
	case StatusConfirmed, StatusCheckedOut:
	default:
		return ErrInvalidTransition
	}
	b.transition(StatusCompleted, now)
	b.Record(Completed{BookingID: b.ID, Kind: b.Kind, At: b.UpdatedAt})
	return nil
}

// Cancel frees the booking's rooms or hall slot for future allocation. The
// record itself is kept.
func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidTransition
	}
	from := b.Status
	b.transition(StatusCancelled, now)
	b.Record(Cancelled{BookingID: b.ID, Kind: b.Kind, From: from, Reason: reason, InvoiceID: b.InvoiceID, At: b.UpdatedAt})
	return nil
}

// LinkInvoice points the booking at its current invoice. Completed bookings may
// still be invoiced.
func (b *Booking) LinkInvoice(invoiceID string, now time.Time) error {
	if b.Status == StatusCancelled {
		return ErrInvalidTransition
	}
	b.InvoiceID = invoiceID
	b.UpdatedAt = now.UTC()
	return nil
}

func (b *Booking) transition(to Status, now time.Time) {
	b.Status = to
	b.UpdatedAt = now.UTC()
}
