package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/domain/inventory"
	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/errs"
)

func mustClock(t *testing.T, v string) ClockTime {
	t.Helper()
	c, err := ParseClock(v)
	require.NoError(t, err)
	return c
}

func TestHallTiming(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		duration   int
		afterHours int
		err        error
	}{
		{name: "morning block", start: "09:00", end: "13:00", duration: 4},
		{name: "early start", start: "06:00", end: "09:00", duration: 3, afterHours: 1},
		{name: "late evening", start: "18:00", end: "24:00", duration: 6, afterHours: 2},
		{name: "max length", start: "08:00", end: "22:00", duration: 14},
		{name: "too long", start: "07:00", end: "22:00", err: ErrDurationOutOfRange},
		{name: "wraps midnight", start: "22:00", end: "02:00", err: ErrInvalidWindow},
		{name: "zero length", start: "10:00", end: "10:00", err: ErrInvalidWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ah, err := HallTiming(mustClock(t, tt.start), mustClock(t, tt.end))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.duration, d)
			assert.Equal(t, tt.afterHours, ah)
		})
	}
}

func TestParseClockRejectsPartialHours(t *testing.T) {
	_, err := ParseClock("09:30")
	assert.ErrorIs(t, err, ErrInvalidClock)
	_, err = ParseClock("25:00")
	assert.ErrorIs(t, err, ErrInvalidClock)
	c, err := ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, "24:00", c.String())
}

func TestNightsRoundsUpWithMinimumOne(t *testing.T) {
	in, _ := daterange.ParseDay("2026-02-10")
	assert.Equal(t, 2, Nights(daterange.DateRange{Start: in, End: in.AddDate(0, 0, 2)}))
	assert.Equal(t, 1, Nights(daterange.DateRange{Start: in, End: in.Add(3 * time.Hour)}))
	assert.Equal(t, 2, Nights(daterange.DateRange{Start: in, End: in.Add(25 * time.Hour)}))
}

func TestQuoteHotelOneDoubleTwoNights(t *testing.T) {
	q := QuoteHotel(DefaultConfig(), HotelInput{
		Nights: 2,
		Rooms:  map[inventory.RoomType]int{inventory.Double: 1},
	})
	assert.Equal(t, int64(7000), q.Total.Amount)
	assert.Equal(t, "USD", q.Total.Currency)
	assert.Equal(t, "70.00 USD", q.Total.String())
	assert.Len(t, q.Lines, 1)
	assert.True(t, q.SecondaryTotal.IsZero())
}

func TestQuoteHotelExtrasPickupAndMeals(t *testing.T) {
	cfg := DefaultConfig()
	q := QuoteHotel(cfg, HotelInput{
		Nights: 3,
		Rooms: map[inventory.RoomType]int{
			inventory.Single: 1,
			inventory.Triple: 2,
		},
		ExtraBeds: map[inventory.RoomType]int{
			inventory.Triple: 1,
			inventory.Single: 2, // not eligible, ignored
		},
		Pickup: "van",
		Meals: []MealSelection{
			{Package: "breakfast", Quantity: 2, Servings: []string{"07:00", "08:00", "07:00"}},
			{Package: "bbq", Quantity: 4, Servings: []string{"19:00"}},
			{Package: "mystery", Quantity: 1},
		},
	})

	rooms := int64(2500*1*3 + 4500*2*3)
	beds := int64(1 * 1000 * 3)
	pickup := int64(3000)
	assert.Equal(t, rooms+beds+pickup, q.Total.Amount)

	breakfast := int64(2 * 35000 * 2 * 3)
	bbq := int64(4 * 150000 * 1)
	assert.Equal(t, breakfast+bbq, q.SecondaryTotal.Amount)
	assert.Equal(t, "IDR", q.SecondaryTotal.Currency)
	require.Len(t, q.Secondary, 3)
	assert.True(t, q.Secondary[2].Amount.IsZero())
}

func TestQuoteHotelUnknownPickupPricesAtZero(t *testing.T) {
	q := QuoteHotel(DefaultConfig(), HotelInput{
		Nights: 1,
		Rooms:  map[inventory.RoomType]int{inventory.Single: 1},
		Pickup: "helicopter",
	})
	assert.Equal(t, int64(2500), q.Total.Amount)
}

func TestQuoteHallPackageAndServices(t *testing.T) {
	cfg := DefaultConfig()
	q := QuoteHall(cfg, HallInput{
		Duration: 4,
		Services: ServiceSelection{ServiceAC: "standard", ServiceChairs: "100", ServiceGlasses: "unknown"},
	})
	assert.Equal(t, int64(1500000+500000+450000), q.Total.Amount)
	last := q.Lines[len(q.Lines)-1]
	assert.Equal(t, "Tax (0%)", last.Label)
	assert.True(t, last.Amount.IsZero())
}

func TestQuoteHallAfterHoursLayeredOnTop(t *testing.T) {
	cfg := DefaultConfig()
	q := QuoteHall(cfg, HallInput{Duration: 10, AfterHours: 2, ExtraHours: 1})
	assert.Equal(t, int64(4000000+2*200000+400000), q.Total.Amount)
}

func TestMatchPackageBeyondLargestTier(t *testing.T) {
	cfg := DefaultConfig()
	pkg, rest := MatchPackage(cfg, 16)
	assert.Equal(t, 14, pkg.MaxHours)
	assert.Equal(t, 2, rest)

	pkg, rest = MatchPackage(cfg, 5)
	assert.Equal(t, 9, pkg.MaxHours)
	assert.Zero(t, rest)
}

func TestQuoteIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	in := HallInput{Duration: 6, AfterHours: 1, Services: ServiceSelection{ServiceProjector: "both", ServiceTables: "10"}}
	assert.Equal(t, QuoteHall(cfg, in), QuoteHall(cfg, in))
}

func TestCheckAdvisory(t *testing.T) {
	q := QuoteHotel(DefaultConfig(), HotelInput{Nights: 2, Rooms: map[inventory.RoomType]int{inventory.Double: 1}})

	assert.NoError(t, CheckAdvisory(q, nil, 0))
	exact := int64(7000)
	assert.NoError(t, CheckAdvisory(q, &exact, 0))
	near := int64(7050)
	assert.NoError(t, CheckAdvisory(q, &near, 100))

	wrong := int64(5000)
	err := CheckAdvisory(q, &wrong, 100)
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "70.00 USD")
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.RoomRates = map[inventory.RoomType]int64{inventory.Single: 2500}
	assert.ErrorIs(t, cfg.Validate(), ErrRoomRateMissing)

	cfg = DefaultConfig()
	cfg.HallPackages = []HallPackage{{MaxHours: 9}, {MaxHours: 4}}
	assert.ErrorIs(t, cfg.Validate(), ErrPackagesUnsorted)

	cfg.HallPackages = nil
	assert.ErrorIs(t, cfg.Validate(), ErrNoPackages)
}
