package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrDuplicateRoom = errors.New("inventory: duplicate room number")
	ErrUnknownType   = errors.New("inventory: unknown room type")
	ErrEmpty         = errors.New("inventory: no rooms defined")
)

type RoomType string

const (
	Single    RoomType = "single"
	Double    RoomType = "double"
	Triple    RoomType = "triple"
	Quadruple RoomType = "quadruple"
	Homestay  RoomType = "homestay"
)

// RoomTypes is the fixed order used for allocation and price composition.
var RoomTypes = []RoomType{Single, Double, Triple, Quadruple, Homestay}

func (t RoomType) Valid() bool {
	for _, known := range RoomTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Room is one physical room. Its nightly rate comes from the price list by type.
type Room struct {
	Number string   `json:"number"`
	Type   RoomType `json:"type"`
	Floor  int      `json:"floor"`
}

// Inventory is the read-only universe of rooms hotel bookings allocate from.
type Inventory struct {
	rooms []Room
	index map[string]int
}

func New(rooms []Room) (*Inventory, error) {
	if len(rooms) == 0 {
		return nil, ErrEmpty
	}
	inv := &Inventory{rooms: make([]Room, 0, len(rooms)), index: make(map[string]int, len(rooms))}
	for _, r := range rooms {
		r.Number = strings.TrimSpace(r.Number)
		if !r.Type.Valid() {
			return nil, fmt.Errorf("%w: %q (room %s)", ErrUnknownType, r.Type, r.Number)
		}
		if _, dup := inv.index[r.Number]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoom, r.Number)
		}
		inv.index[r.Number] = len(inv.rooms)
		inv.rooms = append(inv.rooms, r)
	}
	return inv, nil
}

// Rooms returns a copy of the rooms in inventory order.
func (inv *Inventory) Rooms() []Room {
	return append([]Room(nil), inv.rooms...)
}

// ByType returns rooms of one type in inventory order.
func (inv *Inventory) ByType(t RoomType) []Room {
	var out []Room
	for _, r := range inv.rooms {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

func (inv *Inventory) Contains(number string) bool {
	_, ok := inv.index[number]
	return ok
}

func (inv *Inventory) Room(number string) (Room, bool) {
	i, ok := inv.index[number]
	if !ok {
		return Room{}, false
	}
	return inv.rooms[i], true
}

// Default is the hostel's room list.
func Default() *Inventory {
	inv, err := New([]Room{
		{Number: "101", Type: Double, Floor: 1},
		{Number: "102", Type: Double, Floor: 1},
		{Number: "103", Type: Single, Floor: 1},
		{Number: "104", Type: Single, Floor: 1},
		{Number: "105", Type: Triple, Floor: 1},
		{Number: "201", Type: Double, Floor: 2},
		{Number: "202", Type: Double, Floor: 2},
		{Number: "203", Type: Triple, Floor: 2},
		{Number: "204", Type: Quadruple, Floor: 2},
		{Number: "205", Type: Quadruple, Floor: 2},
		{Number: "301", Type: Homestay, Floor: 3},
	})
	if err != nil {
		panic(err)
	}
	return inv
}

// Load reads a JSON array of rooms.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	var rooms []Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	return New(rooms)
}
