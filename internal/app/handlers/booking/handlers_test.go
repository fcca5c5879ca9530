package booking_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/dto"
	bookinghandlers "venuedesk/internal/app/handlers/booking"
	financehandlers "venuedesk/internal/app/handlers/finance"
	"venuedesk/internal/app/middleware"
	"venuedesk/internal/app/policies"
	"venuedesk/internal/app/queries"
	"venuedesk/internal/app/uow"
	"venuedesk/internal/domain/allocation"
	domainbooking "venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/inventory"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/errs"
	"venuedesk/internal/domain/shared/ident"
	"venuedesk/internal/infra/storage/memory"
)

var clock = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []policies.Notification
	fail error
}

func (n *recordingNotifier) Notify(_ context.Context, note policies.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
	return n.fail
}

func (n *recordingNotifier) Sent() []policies.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]policies.Notification(nil), n.sent...)
}

type harness struct {
	commands commands.Bus
	queries  queries.Bus
	factory  *memory.Factory
	outbox   *memory.Outbox
	notifier *recordingNotifier
	staff    context.Context
}

// racingFactory rejects the first inserts with a duplicate id, as a store does
// when another writer took the id between lookup and insert.
type racingFactory struct {
	*memory.Factory
	mu      sync.Mutex
	rejects int
}

func (f *racingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.Factory.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return racingUnit{UnitOfWork: unit, f: f}, nil
}

type racingUnit struct {
	uow.UnitOfWork
	f *racingFactory
}

func (u racingUnit) Bookings() domainbooking.Repository {
	return racingBookings{Repository: u.UnitOfWork.Bookings(), f: u.f}
}

type racingBookings struct {
	domainbooking.Repository
	f *racingFactory
}

func (r racingBookings) Insert(ctx context.Context, b *domainbooking.Booking) error {
	r.f.mu.Lock()
	reject := r.f.rejects > 0
	if reject {
		r.f.rejects--
	}
	r.f.mu.Unlock()
	if reject {
		return domainbooking.ErrDuplicateID
	}
	return r.Repository.Insert(ctx, b)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, &recordingNotifier{}, nil)
}

func newHarnessWith(t *testing.T, notifier *recordingNotifier, wrap func(*memory.Factory) uow.UoWFactory) *harness {
	t.Helper()
	factory := memory.NewFactory()
	var units uow.UoWFactory = factory
	if wrap != nil {
		units = wrap(factory)
	}
	box := memory.NewOutbox(nil)
	seq := 0
	ids := func(prefix string, at time.Time) string {
		seq++
		return ident.Format(prefix, at, seq)
	}
	now := func() time.Time { return clock }

	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	bookinghandlers.Register(cmdBus, queryBus, bookinghandlers.Deps{
		Pricing:          pricing.DefaultConfig(),
		Inventory:        inventory.Default(),
		Outbox:           box,
		Notifier:         notifier,
		AdminDestination: "admin-desk",
		Tolerance:        100,
		IDs:              ids,
		Now:              now,
	}, units)
	entries := 0
	financehandlers.Register(cmdBus, queryBus, financehandlers.Deps{
		Outbox:   box,
		IDs:      ids,
		EntryIDs: func() string { entries++; return fmt.Sprintf("entry-%d", entries) },
		Now:      now,
	}, units)

	auth := middleware.StaffAuthorizer{Enabled: true}
	validator := middleware.NewStructValidator()
	return &harness{
		commands: middleware.ChainCommands(cmdBus,
			middleware.Idempotency(memory.NewIdempotencyStore(0), nil),
			middleware.Validation(validator),
			middleware.Authorization(auth),
			middleware.Transaction(units),
			middleware.OutboxFlush(box),
		),
		queries: middleware.ChainQueries(queryBus,
			middleware.QueryValidation(validator),
			middleware.QueryAuthorization(auth),
		),
		factory:  factory,
		outbox:   box,
		notifier: notifier,
		staff:    middleware.WithStaff(context.Background()),
	}
}

func contact() bookinghandlers.ContactInput {
	return bookinghandlers.ContactInput{Name: "Ayu", Phone: "+62811", Messenger: "@ayu"}
}

func hotelCmd(in, out string, rooms map[string]int) bookinghandlers.CreateHotelBookingCommand {
	return bookinghandlers.CreateHotelBookingCommand{
		StaySelection: bookinghandlers.StaySelection{CheckIn: in, CheckOut: out, Rooms: rooms},
		ContactInput:  contact(),
	}
}

func hallCmd(date, start, end string) bookinghandlers.CreateAuditoriumBookingCommand {
	return bookinghandlers.CreateAuditoriumBookingCommand{
		HallSelection: bookinghandlers.HallSelection{Date: date, StartTime: start, EndTime: end},
		ContactInput:  contact(),
		EventName:     "Wedding",
	}
}

func (h *harness) create(t *testing.T, cmd commands.Command) *dto.BookingView {
	t.Helper()
	res, err := h.commands.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	return res.(*dto.BookingView)
}

func (h *harness) staffDo(t *testing.T, cmd commands.Command) any {
	t.Helper()
	res, err := h.commands.Dispatch(h.staff, cmd)
	require.NoError(t, err)
	return res
}

func TestCreateHotelBookingAssignsOneDouble(t *testing.T) {
	h := newHarness(t)
	view := h.create(t, hotelCmd("2026-02-10", "2026-02-12", map[string]int{"double": 1}))

	assert.Equal(t, "HTL-20260201-0001", view.ID)
	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, []string{"101"}, view.Hotel.Rooms)
	assert.Equal(t, 2, view.Hotel.Nights)
	assert.Equal(t, int64(7000), view.Quote.Total.Amount)
	assert.Equal(t, "USD", view.Quote.Total.Currency)

	assert.Equal(t, []string{"booking.requested"}, h.outbox.Published())
	assert.Equal(t, 2, h.factory.Claims.Held())

	sent := h.notifier.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "admin-desk", sent[0].Destination)
	assert.Equal(t, "+62811", sent[1].Destination)
	assert.Contains(t, sent[1].Message, "HTL-20260201-0001")
}

func TestCreateHotelBookingRejectsWhenSinglesAreTaken(t *testing.T) {
	h := newHarness(t)
	h.create(t, hotelCmd("2026-02-09", "2026-02-12", map[string]int{"single": 1}))
	h.create(t, hotelCmd("2026-02-10", "2026-02-11", map[string]int{"single": 1}))
	before := h.factory.Claims.Held()

	_, err := h.commands.Dispatch(context.Background(), hotelCmd("2026-02-10", "2026-02-12", map[string]int{"single": 1}))
	var cerr *errs.CapacityError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "single")
	assert.Contains(t, err.Error(), "0 left")
	assert.Equal(t, before, h.factory.Claims.Held())
	assert.Len(t, h.notifier.Sent(), 4)
}

func TestCreateHotelBookingChecksAdvisoryTotal(t *testing.T) {
	h := newHarness(t)
	cmd := hotelCmd("2026-02-10", "2026-02-12", map[string]int{"double": 1})
	wrong := int64(1000)
	cmd.ClientTotal = &wrong

	_, err := h.commands.Dispatch(context.Background(), cmd)
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, h.factory.Claims.Held())

	near := int64(7050)
	cmd.ClientTotal = &near
	view := h.create(t, cmd)
	assert.Equal(t, int64(7000), view.Quote.Total.Amount)
}

func TestCreateHotelBookingValidatesInput(t *testing.T) {
	h := newHarness(t)
	cmd := hotelCmd("2026-02-10", "2026-02-12", map[string]int{"double": 1})
	cmd.Phone = ""
	cmd.Messenger = ""
	_, err := h.commands.Dispatch(context.Background(), cmd)
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"phone", "messenger"}, verr.Fields)

	_, err = h.commands.Dispatch(context.Background(), hotelCmd("2026-02-12", "2026-02-10", map[string]int{"double": 1}))
	require.ErrorAs(t, err, &verr)

	_, err = h.commands.Dispatch(context.Background(), hotelCmd("2026-02-10", "2026-02-12", map[string]int{"penthouse": 1}))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "penthouse")
}

func TestCreateHotelBookingIsIdempotent(t *testing.T) {
	h := newHarness(t)
	cmd := hotelCmd("2026-02-10", "2026-02-12", map[string]int{"double": 1})
	cmd.IdempotencyKeyV = "req-1"

	first := h.create(t, cmd)
	second := h.create(t, cmd)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, h.factory.Claims.Held())
}

func TestCreateAuditoriumBookingMorningBlock(t *testing.T) {
	h := newHarness(t)
	cmd := hallCmd("2026-02-10", "09:00", "13:00")
	cmd.Services = map[string]string{"ac": "standard"}
	view := h.create(t, cmd)

	assert.Equal(t, "AUD-20260201-0001", view.ID)
	require.NotNil(t, view.Hall)
	assert.Equal(t, 4, view.Hall.Duration)
	assert.Zero(t, view.Hall.AfterHours)
	assert.Equal(t, int64(1500000+500000), view.Quote.Total.Amount)
	assert.Equal(t, 4, h.factory.Claims.Held())
}

func TestCreateAuditoriumBookingRejectsMidnightWrap(t *testing.T) {
	h := newHarness(t)
	_, err := h.commands.Dispatch(context.Background(), hallCmd("2026-02-10", "22:00", "02:00"))
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, pricing.ErrInvalidWindow)
	assert.Zero(t, h.factory.Claims.Held())
}

func TestCreateAuditoriumBookingRejectsOverlap(t *testing.T) {
	h := newHarness(t)
	h.create(t, hallCmd("2026-02-10", "09:00", "13:00"))

	_, err := h.commands.Dispatch(context.Background(), hallCmd("2026-02-10", "12:00", "15:00"))
	var cerr *errs.CapacityError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "09:00")
	assert.Contains(t, err.Error(), "13:00")

	h.create(t, hallCmd("2026-02-10", "13:00", "17:00"))
}

func TestCreateAuditoriumExtraHoursNeedStaff(t *testing.T) {
	h := newHarness(t)
	cmd := hallCmd("2026-02-10", "09:00", "13:00")
	cmd.ExtraHours = 2

	_, err := h.commands.Dispatch(context.Background(), cmd)
	assert.ErrorIs(t, err, middleware.ErrStaffRequired)

	view := h.staffDo(t, cmd).(*dto.BookingView)
	assert.Equal(t, 2, view.Hall.ExtraHours)
}

func TestTransitionsFollowStatusMachine(t *testing.T) {
	h := newHarness(t)
	view := h.create(t, hotelCmd("2026-02-10", "2026-02-12", map[string]int{"double": 1}))

	_, err := h.commands.Dispatch(context.Background(), bookinghandlers.ConfirmBookingCommand{BookingID: view.ID})
	assert.ErrorIs(t, err, middleware.ErrStaffRequired)

	_, err = h.commands.Dispatch(h.staff, bookinghandlers.CheckInBookingCommand{BookingID: view.ID})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
	assert.EqualError(t, err, "cannot check-in a hotel booking that is pending")

	for _, cmd := range []commands.Command{
		bookinghandlers.ConfirmBookingCommand{BookingID: view.ID},
		bookinghandlers.CheckInBookingCommand{BookingID: view.ID},
		bookinghandlers.CheckOutBookingCommand{BookingID: view.ID},
		bookinghandlers.CompleteBookingCommand{BookingID: view.ID},
	} {
		h.staffDo(t, cmd)
	}

	res, err := h.queries.Ask(context.Background(), bookinghandlers.GetBookingQuery{BookingID: view.ID})
	require.NoError(t, err)
	assert.Equal(t, "completed", res.(dto.BookingView).Status)

	_, err = h.commands.Dispatch(h.staff, bookinghandlers.ConfirmBookingCommand{BookingID: "HTL-20990101-0001"})
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestCancelFreesSlotsForNewBookings(t *testing.T) {
	h := newHarness(t)
	first := h.create(t, hallCmd("2026-02-10", "09:00", "13:00"))

	res := h.staffDo(t, bookinghandlers.CancelBookingCommand{BookingID: first.ID, Reason: "moved"}).(*dto.BookingActionResult)
	assert.Equal(t, "cancelled", res.Status)
	assert.Zero(t, h.factory.Claims.Held())

	second := h.create(t, hallCmd("2026-02-10", "10:00", "12:00"))
	assert.NotEqual(t, first.ID, second.ID)

	_, err := h.commands.Dispatch(h.staff, bookinghandlers.CancelBookingCommand{BookingID: first.ID})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
}

func TestCancelPaidAuditoriumBookingDeletesLedgerEntry(t *testing.T) {
	h := newHarness(t)
	view := h.create(t, hallCmd("2026-02-10", "09:00", "13:00"))
	h.staffDo(t, bookinghandlers.ConfirmBookingCommand{BookingID: view.ID})
	inv := h.staffDo(t, financehandlers.IssueInvoiceCommand{BookingID: view.ID}).(*dto.InvoiceView)
	h.staffDo(t, financehandlers.PayInvoiceCommand{InvoiceID: inv.ID})

	day, _ := daterange.ParseDay("2026-02-01")
	window := daterange.DateRange{Start: day, End: day.AddDate(0, 0, 1)}
	entries, err := h.factory.Ledger.List(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	res := h.staffDo(t, bookinghandlers.CancelBookingCommand{BookingID: view.ID}).(*dto.BookingActionResult)
	assert.Equal(t, "cancelled", res.Status)
	assert.Equal(t, inv.ID, res.InvoiceID)

	entries, err = h.factory.Ledger.List(context.Background(), window)
	require.NoError(t, err)
	assert.Empty(t, entries)

	stored, err := h.factory.Bookings.ByID(context.Background(), domainbooking.BookingID(view.ID))
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, stored.Status)

	invoice, err := h.queries.Ask(h.staff, financehandlers.GetInvoiceQuery{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, "void", invoice.(dto.InvoiceView).Status)
	assert.Contains(t, h.outbox.Published(), "invoice.voided")
}

func TestConcurrentHallRequestsAdmitOne(t *testing.T) {
	h := newHarness(t)
	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.commands.Dispatch(context.Background(), hallCmd("2026-03-01", "10:00", "14:00"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		var cerr *errs.CapacityError
		if !errors.As(err, &cerr) && !errors.Is(err, allocation.ErrSlotTaken) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestQuotesDoNotTouchStorage(t *testing.T) {
	h := newHarness(t)
	res, err := h.queries.Ask(context.Background(), bookinghandlers.QuoteHotelQuery{
		StaySelection: bookinghandlers.StaySelection{CheckIn: "2026-02-10", CheckOut: "2026-02-12", Rooms: map[string]int{"double": 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7000), res.(dto.QuoteView).Total.Amount)

	res, err = h.queries.Ask(context.Background(), bookinghandlers.QuoteAuditoriumQuery{
		HallSelection: bookinghandlers.HallSelection{Date: "2026-02-10", StartTime: "09:00", EndTime: "13:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1500000), res.(dto.QuoteView).Total.Amount)
	assert.Zero(t, h.factory.Claims.Held())
}

func TestCreateHotelBookingSurvivesNotificationFailure(t *testing.T) {
	notifier := &recordingNotifier{fail: errors.New("webhook unreachable")}
	h := newHarnessWith(t, notifier, nil)

	view := h.create(t, hotelCmd("2026-02-10", "2026-02-12", map[string]int{"double": 1}))
	assert.Equal(t, "pending", view.Status)
	assert.Len(t, notifier.Sent(), 2)
	assert.Equal(t, 2, h.factory.Claims.Held())

	stored, err := h.factory.Bookings.ByID(context.Background(), domainbooking.BookingID(view.ID))
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, stored.Status)
}

func TestCreateBookingRetriesDuplicateIDOnInsert(t *testing.T) {
	racing := &racingFactory{rejects: 1}
	h := newHarnessWith(t, &recordingNotifier{}, func(f *memory.Factory) uow.UoWFactory {
		racing.Factory = f
		return racing
	})

	view := h.create(t, hallCmd("2026-02-10", "09:00", "13:00"))
	assert.Equal(t, "AUD-20260201-0002", view.ID)
	assert.Equal(t, 4, h.factory.Claims.Held())
	assert.Equal(t, []string{"booking.requested"}, h.outbox.Published())

	_, err := h.factory.Bookings.ByID(context.Background(), "AUD-20260201-0001")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestCreateBookingGivesUpWhenEveryIDIsRejected(t *testing.T) {
	racing := &racingFactory{rejects: 100}
	h := newHarnessWith(t, &recordingNotifier{}, func(f *memory.Factory) uow.UoWFactory {
		racing.Factory = f
		return racing
	})

	_, err := h.commands.Dispatch(context.Background(), hallCmd("2026-02-10", "09:00", "13:00"))
	assert.ErrorIs(t, err, bookinghandlers.ErrIDSpaceExhausted)
	assert.Zero(t, h.factory.Claims.Held())
}

func TestCreateHotelBookingBoundsExtras(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*bookinghandlers.CreateHotelBookingCommand)
		reason string
	}{
		{
			name:   "huge extra bed count",
			mutate: func(c *bookinghandlers.CreateHotelBookingCommand) { c.ExtraBeds = map[string]int{"double": 1e16} },
			reason: "extra bed",
		},
		{
			name: "extra beds for a type not booked",
			mutate: func(c *bookinghandlers.CreateHotelBookingCommand) {
				c.Rooms = map[string]int{"single": 1}
				c.ExtraBeds = map[string]int{"quadruple": 5}
			},
			reason: "quadruple",
		},
		{
			name: "huge meal quantity",
			mutate: func(c *bookinghandlers.CreateHotelBookingCommand) {
				c.Meals = []pricing.MealSelection{{Package: "breakfast", Quantity: 1 << 40, Servings: []string{"07:00"}}}
			},
			reason: "meal quantity",
		},
		{
			name:   "stay beyond a year",
			mutate: func(c *bookinghandlers.CreateHotelBookingCommand) { c.CheckOut = "2027-03-01" },
			reason: "nights",
		},
		{
			name:   "too many rooms of a type",
			mutate: func(c *bookinghandlers.CreateHotelBookingCommand) { c.Rooms = map[string]int{"double": 1 << 40} },
			reason: "double",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			cmd := hotelCmd("2026-02-10", "2026-02-11", map[string]int{"double": 1})
			tc.mutate(&cmd)

			_, err := h.commands.Dispatch(context.Background(), cmd)
			var verr *errs.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tc.reason)
			assert.Zero(t, h.factory.Claims.Held())
			assert.Empty(t, h.notifier.Sent())
		})
	}
}

func TestCreateHotelBookingChargesOneExtraBedPerRoom(t *testing.T) {
	h := newHarness(t)
	cmd := hotelCmd("2026-02-10", "2026-02-12", map[string]int{"double": 2})
	cmd.ExtraBeds = map[string]int{"double": 2}

	view := h.create(t, cmd)
	assert.Equal(t, int64(3500*2*2+1000*2*2), view.Quote.Total.Amount)
	assert.True(t, view.Quote.Total.Amount > 0)
}
