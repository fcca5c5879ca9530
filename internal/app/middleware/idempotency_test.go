package middleware_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/middleware"
	"venuedesk/internal/infra/storage/memory"
)

func TestIdempotencySerializesConcurrentRetries(t *testing.T) {
	var calls atomic.Int32
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[countCmd, *result](bus, commands.HandlerFunc[countCmd, *result](func(context.Context, countCmd) (*result, error) {
		n := calls.Add(1)
		time.Sleep(5 * time.Millisecond)
		return &result{N: int(n)}, nil
	}))
	chained := middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore(0), nil))

	const clients = 8
	results := make([]int, clients)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := chained.Dispatch(context.Background(), countCmd{Key_: "same"})
			if err == nil {
				results[i] = res.(*result).N
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, n := range results {
		assert.Equal(t, 1, n)
	}
}

func TestIdempotencyReplaysEmptyPayload(t *testing.T) {
	store := memory.NewIdempotencyStore(0)
	require.NoError(t, store.Save(context.Background(), middleware.IdempotencyRecord{Key: "k", Command: "test.count"}))
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[countCmd, *result](bus, commands.HandlerFunc[countCmd, *result](func(context.Context, countCmd) (*result, error) {
		t.Fatal("handler must not run on replay")
		return nil, nil
	}))
	chained := middleware.ChainCommands(bus, middleware.Idempotency(store, nil))

	res, err := chained.Dispatch(context.Background(), countCmd{Key_: "k"})
	require.NoError(t, err)
	assert.Equal(t, &result{}, res)
}
