package dto

import "time"

// AvailabilityRow is one line of the day sheet: a room of a hotel booking or
// an auditorium event.
type AvailabilityRow struct {
	BookingID string    `json:"booking_id"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Room      string    `json:"room,omitempty"`
	RoomType  string    `json:"room_type,omitempty"`
	EventName string    `json:"event_name,omitempty"`
	Guest     string    `json:"guest"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

type DayAvailability struct {
	Date      string            `json:"date"`
	Rows      []AvailabilityRow `json:"rows"`
	FreeRooms []string          `json:"free_rooms,omitempty"`
	HallFree  bool              `json:"hall_free"`
}

type RoomView struct {
	Number       string   `json:"number"`
	Type         string   `json:"type"`
	Floor        int      `json:"floor"`
	NightlyPrice MoneyDTO `json:"nightly_price"`
}
