package memory

import (
	"context"
	"sync"

	"venuedesk/internal/app/uow"
	"venuedesk/internal/domain/allocation"
	domainbooking "venuedesk/internal/domain/booking"
	domainfinance "venuedesk/internal/domain/finance"
	"venuedesk/internal/domain/shared/daterange"
)

// Factory wires in-memory stores into a unit-of-work boundary. Write units are
// serialized and undo their changes on rollback. Read-only units take no lock.
type Factory struct {
	Bookings *BookingStore
	Claims   *ClaimStore
	Invoices *InvoiceStore
	Ledger   *LedgerStore

	writer *sync.Mutex
}

func NewFactory() *Factory {
	return &Factory{
		Bookings: NewBookingStore(),
		Claims:   NewClaimStore(),
		Invoices: NewInvoiceStore(),
		Ledger:   NewLedgerStore(),
		writer:   &sync.Mutex{},
	}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u := &Unit{factory: f, readOnly: opts.ReadOnly}
	if !opts.ReadOnly {
		f.writer.Lock()
	}
	return u, nil
}

// Unit is a uow.UnitOfWork over the factory's stores.
type Unit struct {
	factory  *Factory
	readOnly bool
	undo     []func()
	done     bool
}

func (u *Unit) Bookings() domainbooking.Repository        { return unitBookings{u} }
func (u *Unit) Claims() allocation.ClaimStore             { return unitClaims{u} }
func (u *Unit) Invoices() domainfinance.InvoiceRepository { return unitInvoices{u} }
func (u *Unit) Ledger() domainfinance.LedgerRepository    { return unitLedger{u} }

func (u *Unit) Commit(ctx context.Context) error {
	u.finish(false)
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.finish(true)
	return nil
}

func (u *Unit) finish(revert bool) {
	if u.done {
		return
	}
	u.done = true
	if revert {
		for i := len(u.undo) - 1; i >= 0; i-- {
			u.undo[i]()
		}
	}
	u.undo = nil
	if !u.readOnly {
		u.factory.writer.Unlock()
	}
}

func (u *Unit) onRollback(fn func()) {
	u.undo = append(u.undo, fn)
}

type unitBookings struct{ u *Unit }

func (r unitBookings) store() *BookingStore { return r.u.factory.Bookings }

func (r unitBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return r.store().ByID(ctx, id)
}

func (r unitBookings) Insert(ctx context.Context, b *domainbooking.Booking) error {
	if err := r.store().Insert(ctx, b); err != nil {
		return err
	}
	id := b.ID
	r.u.onRollback(func() { r.store().restore(id, nil) })
	return nil
}

func (r unitBookings) Save(ctx context.Context, b *domainbooking.Booking) error {
	prev, _ := r.store().snapshot(b.ID)
	if err := r.store().Save(ctx, b); err != nil {
		return err
	}
	id := b.ID
	r.u.onRollback(func() { r.store().restore(id, prev) })
	return nil
}

func (r unitBookings) ListActiveOverlapping(ctx context.Context, kind domainbooking.Kind, window daterange.DateRange) ([]*domainbooking.Booking, error) {
	return r.store().ListActiveOverlapping(ctx, kind, window)
}

func (r unitBookings) ListOverlapping(ctx context.Context, kind domainbooking.Kind, window daterange.DateRange, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	return r.store().ListOverlapping(ctx, kind, window, status)
}

type unitClaims struct{ u *Unit }

func (c unitClaims) Claim(ctx context.Context, bookingID domainbooking.BookingID, keys []string) error {
	store := c.u.factory.Claims
	if err := store.Claim(ctx, bookingID, keys); err != nil {
		return err
	}
	held := append([]string(nil), keys...)
	c.u.onRollback(func() { store.releaseKeys(held) })
	return nil
}

func (c unitClaims) Release(ctx context.Context, bookingID domainbooking.BookingID) error {
	store := c.u.factory.Claims
	freed := store.release(bookingID)
	c.u.onRollback(func() { store.restore(bookingID, freed) })
	return nil
}

type unitInvoices struct{ u *Unit }

func (r unitInvoices) store() *InvoiceStore { return r.u.factory.Invoices }

func (r unitInvoices) ByID(ctx context.Context, id domainfinance.InvoiceID) (*domainfinance.Invoice, error) {
	return r.store().ByID(ctx, id)
}

func (r unitInvoices) Insert(ctx context.Context, inv *domainfinance.Invoice) error {
	if err := r.store().Insert(ctx, inv); err != nil {
		return err
	}
	id := inv.ID
	r.u.onRollback(func() { r.store().restore(id, nil) })
	return nil
}

func (r unitInvoices) Save(ctx context.Context, inv *domainfinance.Invoice) error {
	prev, _ := r.store().snapshot(inv.ID)
	if err := r.store().Save(ctx, inv); err != nil {
		return err
	}
	id := inv.ID
	r.u.onRollback(func() { r.store().restore(id, prev) })
	return nil
}

type unitLedger struct{ u *Unit }

func (r unitLedger) store() *LedgerStore { return r.u.factory.Ledger }

func (r unitLedger) Insert(ctx context.Context, e *domainfinance.LedgerEntry) error {
	if err := r.store().Insert(ctx, e); err != nil {
		return err
	}
	id := e.ID
	r.u.onRollback(func() { r.store().remove(id) })
	return nil
}

func (r unitLedger) Delete(ctx context.Context, id string) error {
	prev, ok := r.store().get(id)
	if err := r.store().Delete(ctx, id); err != nil {
		return err
	}
	if ok {
		r.u.onRollback(func() { r.store().put(prev) })
	}
	return nil
}

func (r unitLedger) List(ctx context.Context, window daterange.DateRange) ([]*domainfinance.LedgerEntry, error) {
	return r.store().List(ctx, window)
}

var _ uow.UoWFactory = (*Factory)(nil)
