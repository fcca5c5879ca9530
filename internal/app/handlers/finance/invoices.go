package finance

import (
	"context"
	"errors"
	"strings"
	"time"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/dto"
	"venuedesk/internal/app/handlers/support"
	"venuedesk/internal/app/outbox"
	"venuedesk/internal/app/queries"
	"venuedesk/internal/app/uow"
	domainbooking "venuedesk/internal/domain/booking"
	domainfinance "venuedesk/internal/domain/finance"
	"venuedesk/internal/domain/shared/errs"
	"venuedesk/internal/domain/shared/ident"
)

const maxIDAttempts = 8

var ErrIDSpaceExhausted = errors.New("finance: could not allocate a free invoice id")

// IssueInvoiceCommand snapshots a booking's price into a new invoice. A still
// unpaid earlier invoice for the booking is voided.
type IssueInvoiceCommand struct {
	BookingID string `json:"booking_id" validate:"required"`
}

func (IssueInvoiceCommand) Key() string         { return "invoice.issue" }
func (IssueInvoiceCommand) RequiresStaff() bool { return true }

type IssueInvoiceHandler struct {
	Deps
}

func (h *IssueInvoiceHandler) Handle(ctx context.Context, cmd IssueInvoiceCommand) (*dto.InvoiceView, error) {
	unit, err := support.RequireUnit(ctx)
	if err != nil {
		return nil, err
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(strings.TrimSpace(cmd.BookingID)))
	if err != nil {
		return nil, err
	}
	if b.Status == domainbooking.StatusCancelled {
		return nil, errs.Because(domainbooking.ErrInvalidTransition, "cannot invoice a cancelled booking")
	}
	now := h.now()

	var previous *domainfinance.Invoice
	if b.InvoiceID != "" {
		previous, err = unit.Invoices().ByID(ctx, domainfinance.InvoiceID(b.InvoiceID))
		if err != nil {
			return nil, err
		}
		if previous.Status == domainfinance.StatusPaid {
			return nil, errs.Because(domainfinance.ErrAlreadyPaid, "booking %s already has paid invoice %s", b.ID, previous.ID)
		}
		previous.Void(now)
		if err := unit.Invoices().Save(ctx, previous); err != nil {
			return nil, err
		}
	}

	id, err := h.freeID(ctx, unit.Invoices(), now)
	if err != nil {
		return nil, err
	}
	inv := domainfinance.Issue(id, b, now)
	if err := unit.Invoices().Insert(ctx, inv); err != nil {
		return nil, err
	}
	if err := b.LinkInvoice(string(inv.ID), now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	aggs := []outbox.Puller{inv}
	if previous != nil {
		aggs = append(aggs, previous)
	}
	if err := outbox.RecordAggregates(ctx, h.Outbox, h.Encoder, aggs...); err != nil {
		return nil, err
	}
	h.archiveAfterCommit(ctx, inv)
	h.logger().InfoContext(ctx, "invoice issued", "invoice_id", inv.ID, "booking_id", b.ID, "total", inv.Total.String())

	view := dto.MapInvoice(inv)
	return &view, nil
}

func (h *IssueInvoiceHandler) freeID(ctx context.Context, repo domainfinance.InvoiceRepository, now time.Time) (domainfinance.InvoiceID, error) {
	gen := h.IDs
	if gen == nil {
		gen = ident.Random
	}
	for i := 0; i < maxIDAttempts; i++ {
		id := domainfinance.InvoiceID(gen(ident.PrefixInvoice, now))
		_, err := repo.ByID(ctx, id)
		if errors.Is(err, domainfinance.ErrInvoiceNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrIDSpaceExhausted
}

// archiveAfterCommit copies the invoice to the archive once it is durable.
func (h *IssueInvoiceHandler) archiveAfterCommit(ctx context.Context, inv *domainfinance.Invoice) {
	if h.Archive == nil {
		return
	}
	snapshot := *inv
	log := h.logger()
	uow.AfterCommit(ctx, func(ctx context.Context) {
		location, err := h.Archive.Store(ctx, &snapshot)
		if err != nil {
			log.WarnContext(ctx, "invoice archive failed", "invoice_id", snapshot.ID, "error", err)
			return
		}
		log.InfoContext(ctx, "invoice archived", "invoice_id", snapshot.ID, "location", location)
	})
}

type PayInvoiceCommand struct {
	InvoiceID string `json:"invoice_id" validate:"required"`
}

func (PayInvoiceCommand) Key() string         { return "invoice.pay" }
func (PayInvoiceCommand) RequiresStaff() bool { return true }

// PayInvoiceHandler marks an invoice paid and books the matching income.
type PayInvoiceHandler struct {
	Deps
}

func (h *PayInvoiceHandler) Handle(ctx context.Context, cmd PayInvoiceCommand) (*dto.InvoiceView, error) {
	unit, err := support.RequireUnit(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := unit.Invoices().ByID(ctx, domainfinance.InvoiceID(strings.TrimSpace(cmd.InvoiceID)))
	if err != nil {
		return nil, err
	}
	now := h.now()
	entry := domainfinance.IncomeFor(h.entryID(), inv, now)
	if err := inv.Pay(entry.ID, now); err != nil {
		return nil, errs.Because(err, "invoice %s is %s and cannot be paid", inv.ID, inv.Status)
	}
	if err := unit.Ledger().Insert(ctx, entry); err != nil {
		return nil, err
	}
	if err := unit.Invoices().Save(ctx, inv); err != nil {
		return nil, err
	}
	if err := outbox.RecordAggregates(ctx, h.Outbox, h.Encoder, inv); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "invoice paid", "invoice_id", inv.ID, "ledger_entry", entry.ID)
	view := dto.MapInvoice(inv)
	return &view, nil
}

type GetInvoiceQuery struct {
	InvoiceID string `json:"invoice_id" validate:"required"`
}

func (GetInvoiceQuery) Key() string         { return "invoice.get" }
func (GetInvoiceQuery) RequiresStaff() bool { return true }

type GetInvoiceHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetInvoiceHandler) Handle(ctx context.Context, q GetInvoiceQuery) (dto.InvoiceView, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.InvoiceView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	inv, err := unit.Invoices().ByID(execCtx, domainfinance.InvoiceID(strings.TrimSpace(q.InvoiceID)))
	if err != nil {
		return dto.InvoiceView{}, err
	}
	return dto.MapInvoice(inv), nil
}

var (
	_ commands.Handler[IssueInvoiceCommand, *dto.InvoiceView] = (*IssueInvoiceHandler)(nil)
	_ commands.Handler[PayInvoiceCommand, *dto.InvoiceView]   = (*PayInvoiceHandler)(nil)
	_ queries.Handler[GetInvoiceQuery, dto.InvoiceView]       = (*GetInvoiceHandler)(nil)
)
