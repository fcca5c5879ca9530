package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"venuedesk/internal/domain/inventory"
)

var (
	ErrNoPackages       = errors.New("pricing: at least one hall package is required")
	ErrPackagesUnsorted = errors.New("pricing: hall packages must be sorted by ascending max hours")
	ErrCurrencyUnset    = errors.New("pricing: currency must be defined")
	ErrRoomRateMissing  = errors.New("pricing: every room type needs a positive nightly rate")
)

// Service kinds priced for auditorium rentals.
const (
	ServiceAC        = "ac"
	ServiceChairs    = "chairs"
	ServiceProjector = "projector"
	ServiceTables    = "tables"
	ServicePlates    = "plates"
	ServiceGlasses   = "glasses"
)

// ServiceKinds fixes the order services appear on a quote.
var ServiceKinds = []string{ServiceAC, ServiceChairs, ServiceProjector, ServiceTables, ServicePlates, ServiceGlasses}

type HallPackage struct {
	Name     string `json:"name"`
	MaxHours int    `json:"max_hours"`
	Price    int64  `json:"price"`
}

type MealPackage struct {
	Label     string `json:"label"`
	UnitPrice int64  `json:"unit_price"`
	Daily     bool   `json:"daily"`
}

// Config holds every price table. Amounts are minor units of the matching currency.
type Config struct {
	Version string `json:"version"`

	HotelCurrency string `json:"hotel_currency"`
	MealCurrency  string `json:"meal_currency"`
	HallCurrency  string `json:"hall_currency"`

	RoomRates     map[inventory.RoomType]int64 `json:"room_rates"`
	ExtraBedRate  int64                        `json:"extra_bed_rate"`
	ExtraBedTypes []inventory.RoomType         `json:"extra_bed_types"`
	PickupFees    map[string]int64             `json:"pickup_fees"`
	Meals         map[string]MealPackage       `json:"meals"`

	HallPackages   []HallPackage               `json:"hall_packages"`
	ExtraHourRate  int64                       `json:"extra_hour_rate"`
	AfterHoursRate int64                       `json:"after_hours_rate"`
	Services       map[string]map[string]int64 `json:"services"`
}

func (c Config) Validate() error {
	if c.HotelCurrency == "" || c.MealCurrency == "" || c.HallCurrency == "" {
		return ErrCurrencyUnset
	}
	for _, t := range inventory.RoomTypes {
		if c.RoomRates[t] <= 0 {
			return fmt.Errorf("%w: %s", ErrRoomRateMissing, t)
		}
	}
	if len(c.HallPackages) == 0 {
		return ErrNoPackages
	}
	for i := 1; i < len(c.HallPackages); i++ {
		if c.HallPackages[i].MaxHours <= c.HallPackages[i-1].MaxHours {
			return ErrPackagesUnsorted
		}
	}
	return nil
}

func (c Config) extraBedAllowed(t inventory.RoomType) bool {
	for _, allowed := range c.ExtraBedTypes {
		if allowed == t {
			return true
		}
	}
	return false
}

// DefaultConfig is the price list currently in force.
func DefaultConfig() Config {
	return Config{
		Version:       "2026-01",
		HotelCurrency: "USD",
		MealCurrency:  "IDR",
		HallCurrency:  "IDR",
		RoomRates: map[inventory.RoomType]int64{
			inventory.Single:    2500,
			inventory.Double:    3500,
			inventory.Triple:    4500,
			inventory.Quadruple: 5500,
			inventory.Homestay:  8000,
		},
		ExtraBedRate:  1000,
		ExtraBedTypes: []inventory.RoomType{inventory.Double, inventory.Triple, inventory.Quadruple},
		PickupFees: map[string]int64{
			"none":   0,
			"medium": 1500,
			"van":    3000,
		},
		Meals: map[string]MealPackage{
			"breakfast": {Label: "Breakfast", UnitPrice: 35000, Daily: true},
			"lunch":     {Label: "Lunch", UnitPrice: 50000, Daily: true},
			"dinner":    {Label: "Dinner", UnitPrice: 60000, Daily: true},
			"bbq":       {Label: "BBQ night", UnitPrice: 150000, Daily: false},
		},
		HallPackages: []HallPackage{
			{Name: "Half day", MaxHours: 4, Price: 1500000},
			{Name: "Full day", MaxHours: 9, Price: 3000000},
			{Name: "Extended day", MaxHours: 12, Price: 4000000},
			{Name: "Marathon", MaxHours: 14, Price: 4500000},
		},
		ExtraHourRate:  400000,
		AfterHoursRate: 200000,
		Services: map[string]map[string]int64{
			ServiceAC:        {"none": 0, "standard": 500000, "full": 900000},
			ServiceChairs:    {"0": 0, "50": 250000, "100": 450000, "200": 800000},
			ServiceProjector: {"none": 0, "projector": 300000, "screen": 150000, "both": 400000},
			ServiceTables:    {"0": 0, "10": 150000, "20": 280000},
			ServicePlates:    {"0": 0, "100": 100000, "200": 180000},
			ServiceGlasses:   {"0": 0, "100": 80000, "200": 150000},
		},
	}
}

// LoadConfig reads a JSON price list; missing tables fall back to the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read pricing: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode pricing: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
