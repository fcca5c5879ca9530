package uow

import (
	"context"

	"venuedesk/internal/domain/allocation"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/finance"
)

// UnitOfWork groups the booking, claim and finance repositories behind one
// commit. A booking is never persisted without its claims, and an invoice
// never without the booking link.
type UnitOfWork interface {
	Bookings() booking.Repository
	Claims() allocation.ClaimStore
	Invoices() finance.InvoiceRepository
	Ledger() finance.LedgerRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units whose repositories read the
// transaction handle from ctx.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}

// RetryClassifier is implemented by units that can tell a transient conflict
// from a permanent failure.
type RetryClassifier interface {
	Retryable(err error) bool
}

// Open begins a unit and returns a context carrying it.
func Open(ctx context.Context, factory UoWFactory, opts TxOptions) (UnitOfWork, context.Context, error) {
	if factory == nil {
		return nil, ctx, ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, err
	}
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return unit, ContextWithUnitOfWork(ctx, unit), nil
}

// Retryable reports whether unit classifies err as transient.
func Retryable(unit UnitOfWork, err error) bool {
	c, ok := unit.(RetryClassifier)
	return ok && err != nil && c.Retryable(err)
}
