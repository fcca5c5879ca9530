package support

import (
	"context"

	"venuedesk/internal/app/uow"
)

// BeginReadOnlyUnit lets query handlers share the unit of a surrounding command
// or open their own read-only snapshot. The returned release func is nil when
// the unit was borrowed.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	unit, execCtx, err := uow.Open(ctx, factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	release := func() { _ = unit.Rollback(execCtx) }
	return unit, execCtx, release, nil
}

// RequireUnit returns the unit opened by the transaction middleware. Command
// handlers call it first so a missing middleware surfaces as 503 instead of a
// write outside any transaction.
func RequireUnit(ctx context.Context) (uow.UnitOfWork, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	return unit, nil
}
