package booking

import (
	"fmt"
	"strings"

	"venuedesk/internal/app/policies"
	domainbooking "venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/shared/daterange"
)

func createdNotices(admin string, b *domainbooking.Booking) []policies.Notification {
	customer := fmt.Sprintf("Hi %s, we received your booking %s (%s). Status: %s. Total: %s.",
		b.Contact.Name, b.ID, describe(b), b.Status, b.Price.Total)
	staff := fmt.Sprintf("New %s booking %s from %s (%s, %s): %s. Total: %s.",
		b.Kind, b.ID, b.Contact.Name, b.Contact.Phone, b.Contact.Messenger, describe(b), b.Price.Total)
	return []policies.Notification{
		{Destination: admin, Message: staff, BookingID: string(b.ID)},
		{Destination: customerDestination(b.Contact), Message: customer, BookingID: string(b.ID)},
	}
}

func statusNotice(b *domainbooking.Booking) policies.Notification {
	return policies.Notification{
		Destination: customerDestination(b.Contact),
		Message:     fmt.Sprintf("Hi %s, your booking %s (%s) is now %s.", b.Contact.Name, b.ID, describe(b), b.Status),
		BookingID:   string(b.ID),
	}
}

func customerDestination(c domainbooking.Contact) string {
	if p := strings.TrimSpace(c.Phone); p != "" {
		return p
	}
	return strings.TrimSpace(c.Messenger)
}

func describe(b *domainbooking.Booking) string {
	switch {
	case b.Hotel != nil:
		return fmt.Sprintf("rooms %s, %s to %s", strings.Join(b.Hotel.Rooms, ", "),
			daterange.FormatDay(b.Window.Start), daterange.FormatDay(b.Window.End))
	case b.Hall != nil:
		return fmt.Sprintf("%s on %s, %s-%s", b.Hall.EventName, daterange.FormatDay(b.Window.Start),
			b.Window.Start.Format("15:04"), b.Window.EndClock())
	default:
		return daterange.FormatDay(b.Window.Start)
	}
}
