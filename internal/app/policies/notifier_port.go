package policies

import "context"

// Notification is a plain-text message for one recipient. Destination is a
// phone number or messenger handle.
type Notification struct {
	Destination string `json:"destination"`
	Message     string `json:"message"`
	BookingID   string `json:"booking_id,omitempty"`
}

// Notifier delivers notifications. Callers treat delivery as best effort.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
