package middleware

import (
	"context"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/uow"
)

const defaultTxAttempts = 3

type txConfig struct {
	attempts int
}

type TransactionOption func(*txConfig)

// WithTxAttempts bounds how many times a command is re-run after a transient
// conflict reported by the store.
func WithTxAttempts(n int) TransactionOption {
	return func(c *txConfig) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// Transaction runs each command inside its own unit of work. Hooks registered
// with uow.AfterCommit run only after a successful commit and are dropped on
// rollback. A transient conflict re-runs the command on a fresh unit.
func Transaction(factory uow.UoWFactory, opts ...TransactionOption) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	cfg := txConfig{attempts: defaultTxAttempts}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			var (
				res   any
				err   error
				retry bool
			)
			for attempt := 1; attempt <= cfg.attempts; attempt++ {
				res, retry, err = runInUnit(ctx, factory, cmd, nextFn)
				if err == nil || !retry {
					break
				}
			}
			return res, err
		})
	}
}

func runInUnit(ctx context.Context, factory uow.UoWFactory, cmd commands.Command, next func(context.Context, commands.Command) (any, error)) (any, bool, error) {
	unit, execCtx, err := uow.Open(ctx, factory, uow.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	execCtx, hooks := uow.WithHooks(execCtx)
	committed := false
	defer func() {
		if !committed {
			hooks.Discard()
			_ = unit.Rollback(execCtx)
		}
	}()

	res, err := next(execCtx, cmd)
	if err != nil {
		return nil, uow.Retryable(unit, err), err
	}
	if err := unit.Commit(execCtx); err != nil {
		return nil, uow.Retryable(unit, err), err
	}
	committed = true
	hooks.Run(context.WithoutCancel(ctx))
	return res, false, nil
}
