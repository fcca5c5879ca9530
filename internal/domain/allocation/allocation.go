// Package allocation decides which physical resources a booking occupies and
// derives the slot keys the claim store uses to make that decision atomic.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/inventory"
	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/errs"
)

// ErrSlotTaken is returned by a claim store when any key of a claim is already held.
var ErrSlotTaken = errors.New("allocation: slot already taken")

// Strategy checks a candidate booking against the bookings already holding
// overlapping windows and fills in whatever the candidate needs assigned.
type Strategy interface {
	Kind() booking.Kind
	Allocate(existing []*booking.Booking, window daterange.DateRange, req booking.RoomRequest) ([]string, error)
}

// Rooms allocates hotel rooms from a fixed inventory.
type Rooms struct {
	Inventory *inventory.Inventory
}

func (Rooms) Kind() booking.Kind { return booking.KindHotel }

func (s Rooms) Allocate(existing []*booking.Booking, window daterange.DateRange, req booking.RoomRequest) ([]string, error) {
	return AssignRooms(s.Inventory, existing, req, window)
}

// Hall guards the single shared auditorium.
type Hall struct{}

func (Hall) Kind() booking.Kind { return booking.KindAuditorium }

func (Hall) Allocate(existing []*booking.Booking, window daterange.DateRange, _ booking.RoomRequest) ([]string, error) {
	return nil, CheckHall(existing, window)
}

// AssignRooms picks, per room type in the fixed type order, the first free rooms
// in inventory order. Either every requested room is assigned or none is.
func AssignRooms(inv *inventory.Inventory, existing []*booking.Booking, req booking.RoomRequest, window daterange.DateRange) ([]string, error) {
	occupied := make(map[string]struct{})
	for _, b := range existing {
		if !blocks(b, booking.KindHotel, window) || b.Hotel == nil {
			continue
		}
		for _, n := range b.Hotel.Rooms {
			occupied[n] = struct{}{}
		}
	}

	var assigned []string
	for _, t := range inventory.RoomTypes {
		want := req.Quantities[t]
		if want <= 0 {
			continue
		}
		var free []string
		for _, r := range inv.ByType(t) {
			if _, taken := occupied[r.Number]; !taken {
				free = append(free, r.Number)
			}
		}
		if len(free) < want {
			return nil, &errs.CapacityError{RoomType: string(t), Remaining: len(free)}
		}
		assigned = append(assigned, free[:want]...)
	}
	if len(assigned) == 0 {
		return nil, errs.Invalid("no rooms requested")
	}
	return assigned, nil
}

// CheckHall fails with the first live booking whose window overlaps.
func CheckHall(existing []*booking.Booking, window daterange.DateRange) error {
	for _, b := range existing {
		if blocks(b, booking.KindAuditorium, window) {
			conflict := b.Window
			return &errs.CapacityError{Conflict: &conflict}
		}
	}
	return nil
}

func blocks(b *booking.Booking, kind booking.Kind, window daterange.DateRange) bool {
	return b != nil && b.Kind == kind && b.Status != booking.StatusCancelled && b.Window.Overlaps(window)
}

// ClaimKeys lists the (resource, slot) keys a booking holds: one per room per
// night for hotel stays, one per started hour for the auditorium.
func ClaimKeys(b *booking.Booking) []string {
	var keys []string
	switch b.Kind {
	case booking.KindHotel:
		if b.Hotel == nil {
			return nil
		}
		rooms := slices.Clone(b.Hotel.Rooms)
		slices.Sort(rooms)
		for _, n := range rooms {
			for _, d := range b.Window.Days() {
				keys = append(keys, fmt.Sprintf("room:%s:%s", n, daterange.FormatDay(d)))
			}
		}
	case booking.KindAuditorium:
		for h := b.Window.Start.UTC().Truncate(time.Hour); h.Before(b.Window.End); h = h.Add(time.Hour) {
			keys = append(keys, fmt.Sprintf("hall:%s:%02d", daterange.FormatDay(h), h.Hour()))
		}
	}
	return keys
}

// ClaimStore holds slot keys on behalf of bookings. Claim inserts every key or
// none and fails with ErrSlotTaken when any key is already held.
type ClaimStore interface {
	Claim(ctx context.Context, bookingID booking.BookingID, keys []string) error
	Release(ctx context.Context, bookingID booking.BookingID) error
}
