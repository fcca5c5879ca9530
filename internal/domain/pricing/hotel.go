package pricing

import (
	"fmt"

	"venuedesk/internal/domain/inventory"
)

type MealSelection struct {
	Package  string   `json:"package" bson:"package"`
	Quantity int      `json:"quantity" bson:"quantity"`
	Servings []string `json:"servings" bson:"servings"`
}

type HotelInput struct {
	Nights    int
	Rooms     map[inventory.RoomType]int
	ExtraBeds map[inventory.RoomType]int
	Pickup    string
	Meals     []MealSelection
}

// QuoteHotel prices a stay. Rooms, extra beds and pickup form the payable total;
// meals are tracked on the secondary currency line.
func QuoteHotel(cfg Config, in HotelInput) Quote {
	nights := int64(in.Nights)
	if nights < 1 {
		nights = 1
	}
	primary := newBuilder(cfg.HotelCurrency)
	for _, t := range inventory.RoomTypes {
		qty := in.Rooms[t]
		if qty <= 0 {
			continue
		}
		rate := cfg.RoomRates[t]
		primary.add(fmt.Sprintf("%s room x%d x %d night(s)", t, qty, nights), rate*int64(qty)*nights)
	}

	var beds int64
	for _, t := range inventory.RoomTypes {
		if n := in.ExtraBeds[t]; n > 0 && cfg.extraBedAllowed(t) {
			beds += int64(n)
		}
	}
	if beds > 0 {
		primary.add(fmt.Sprintf("Extra bed x%d x %d night(s)", beds, nights), beds*cfg.ExtraBedRate*nights)
	}

	if in.Pickup != "" && in.Pickup != "none" {
		primary.add(fmt.Sprintf("Pickup (%s)", in.Pickup), cfg.PickupFees[in.Pickup])
	}

	meals := newBuilder(cfg.MealCurrency)
	for _, sel := range in.Meals {
		if sel.Quantity <= 0 {
			continue
		}
		pkg, ok := cfg.Meals[sel.Package]
		if !ok {
			meals.add(sel.Package, 0)
			continue
		}
		servings := int64(distinct(sel.Servings))
		if servings < 1 {
			servings = 1
		}
		amount := int64(sel.Quantity) * pkg.UnitPrice * servings
		label := fmt.Sprintf("%s x%d x %d serving(s)", pkg.Label, sel.Quantity, servings)
		if pkg.Daily {
			amount *= nights
			label += fmt.Sprintf(" x %d night(s)", nights)
		}
		meals.add(label, amount)
	}

	return Quote{
		Lines:          primary.lines,
		Total:          primary.sum(),
		Secondary:      meals.lines,
		SecondaryTotal: meals.sum(),
		Version:        cfg.Version,
	}
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}
