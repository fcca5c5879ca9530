package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionKey struct{}

type stubUnit struct {
	UnitOfWork
	opts TxOptions
}

func (stubUnit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionKey{}, "session-1")
}

func (stubUnit) Retryable(err error) bool { return err.Error() == "conflict" }

type stubFactory struct{ err error }

func (f stubFactory) Begin(_ context.Context, opts TxOptions) (UnitOfWork, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stubUnit{opts: opts}, nil
}

func TestOpenInjectsSessionAndUnit(t *testing.T) {
	unit, ctx, err := Open(context.Background(), stubFactory{}, TxOptions{ReadOnly: true})
	require.NoError(t, err)
	assert.True(t, unit.(*stubUnit).opts.ReadOnly)
	assert.Equal(t, "session-1", ctx.Value(sessionKey{}))

	fromCtx, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, unit, fromCtx)
}

func TestOpenErrors(t *testing.T) {
	_, _, err := Open(context.Background(), nil, TxOptions{})
	assert.ErrorIs(t, err, ErrUnitOfWorkMissing)

	boom := errors.New("no session")
	_, _, err = Open(context.Background(), stubFactory{err: boom}, TxOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestRetryable(t *testing.T) {
	unit := &stubUnit{}
	assert.True(t, Retryable(unit, errors.New("conflict")))
	assert.False(t, Retryable(unit, errors.New("other")))
	assert.False(t, Retryable(unit, nil))
}
