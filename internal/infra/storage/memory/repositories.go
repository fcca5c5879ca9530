package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "venuedesk/internal/domain/booking"
	domainfinance "venuedesk/internal/domain/finance"
	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/events"
)

// BookingStore keeps bookings in memory. Values are copied on the way in and
// out so callers never share state with the store.
type BookingStore struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingStore() *BookingStore {
	return &BookingStore{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (s *BookingStore) ByID(_ context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (s *BookingStore) Insert(_ context.Context, b *domainbooking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.items[b.ID]; dup {
		return domainbooking.ErrDuplicateID
	}
	b.Version = 1
	s.items[b.ID] = cloneBooking(b)
	return nil
}

func (s *BookingStore) Save(_ context.Context, b *domainbooking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[b.ID]
	if !ok {
		return domainbooking.ErrBookingNotFound
	}
	if cur.Version != b.Version {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version++
	s.items[b.ID] = cloneBooking(b)
	return nil
}

func (s *BookingStore) ListActiveOverlapping(ctx context.Context, kind domainbooking.Kind, window daterange.DateRange) ([]*domainbooking.Booking, error) {
	return s.list(kind, window, func(st domainbooking.Status) bool { return st != domainbooking.StatusCancelled }), nil
}

func (s *BookingStore) ListOverlapping(ctx context.Context, kind domainbooking.Kind, window daterange.DateRange, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	return s.list(kind, window, func(st domainbooking.Status) bool { return st == status }), nil
}

func (s *BookingStore) list(kind domainbooking.Kind, window daterange.DateRange, keep func(domainbooking.Status) bool) []*domainbooking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range s.items {
		if b.Kind == kind && keep(b.Status) && b.Window.Overlaps(window) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *BookingStore) snapshot(id domainbooking.BookingID) (*domainbooking.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	return b, ok
}

func (s *BookingStore) restore(id domainbooking.BookingID, b *domainbooking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b == nil {
		delete(s.items, id)
		return
	}
	s.items[id] = b
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	c := *b
	c.EventRecorder = events.EventRecorder{}
	c.Price = b.Price.Copy()
	if b.Hotel != nil {
		h := *b.Hotel
		h.Rooms = append([]string(nil), b.Hotel.Rooms...)
		h.Request.Quantities = cloneMap(b.Hotel.Request.Quantities)
		h.Request.ExtraBeds = cloneMap(b.Hotel.Request.ExtraBeds)
		h.Meals = append(h.Meals[:0:0], b.Hotel.Meals...)
		c.Hotel = &h
	}
	if b.Hall != nil {
		h := *b.Hall
		h.Services = cloneMap(b.Hall.Services)
		c.Hall = &h
	}
	return &c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// InvoiceStore keeps invoices in memory.
type InvoiceStore struct {
	mu    sync.RWMutex
	items map[domainfinance.InvoiceID]*domainfinance.Invoice
}

func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{items: make(map[domainfinance.InvoiceID]*domainfinance.Invoice)}
}

func (s *InvoiceStore) ByID(_ context.Context, id domainfinance.InvoiceID) (*domainfinance.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.items[id]
	if !ok {
		return nil, domainfinance.ErrInvoiceNotFound
	}
	return cloneInvoice(inv), nil
}

func (s *InvoiceStore) Insert(_ context.Context, inv *domainfinance.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.items[inv.ID]; dup {
		return domainfinance.ErrDuplicateID
	}
	inv.Version = 1
	s.items[inv.ID] = cloneInvoice(inv)
	return nil
}

func (s *InvoiceStore) Save(_ context.Context, inv *domainfinance.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[inv.ID]
	if !ok {
		return domainfinance.ErrInvoiceNotFound
	}
	if cur.Version != inv.Version {
		return domainfinance.ErrConcurrentUpdate
	}
	inv.Version++
	s.items[inv.ID] = cloneInvoice(inv)
	return nil
}

func (s *InvoiceStore) snapshot(id domainfinance.InvoiceID) (*domainfinance.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.items[id]
	return inv, ok
}

func (s *InvoiceStore) restore(id domainfinance.InvoiceID, inv *domainfinance.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv == nil {
		delete(s.items, id)
		return
	}
	s.items[id] = inv
}

func cloneInvoice(inv *domainfinance.Invoice) *domainfinance.Invoice {
	c := *inv
	c.EventRecorder = events.EventRecorder{}
	c.Lines = append(inv.Lines[:0:0], inv.Lines...)
	c.Secondary = append(inv.Secondary[:0:0], inv.Secondary...)
	return &c
}

// LedgerStore keeps ledger entries in memory.
type LedgerStore struct {
	mu    sync.RWMutex
	items map[string]domainfinance.LedgerEntry
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{items: make(map[string]domainfinance.LedgerEntry)}
}

func (s *LedgerStore) Insert(_ context.Context, e *domainfinance.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.items[e.ID]; dup {
		return domainfinance.ErrDuplicateID
	}
	s.items[e.ID] = *e
	return nil
}

func (s *LedgerStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domainfinance.ErrEntryNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *LedgerStore) List(_ context.Context, window daterange.DateRange) ([]*domainfinance.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domainfinance.LedgerEntry
	for _, e := range s.items {
		if window.ContainsInstant(e.OccurredAt) {
			entry := e
			out = append(out, &entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *LedgerStore) get(id string) (domainfinance.LedgerEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	return e, ok
}

func (s *LedgerStore) put(e domainfinance.LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[e.ID] = e
}

func (s *LedgerStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

var (
	_ domainbooking.Repository        = (*BookingStore)(nil)
	_ domainfinance.InvoiceRepository = (*InvoiceStore)(nil)
	_ domainfinance.LedgerRepository  = (*LedgerStore)(nil)
)
