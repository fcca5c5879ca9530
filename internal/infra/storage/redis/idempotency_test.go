package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/app/middleware"
)

func TestIdempotencyStoreSaveAndGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, time.Hour)
	ctx := context.Background()
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	raw, err := json.Marshal(record{Command: "booking.hotel.create", Payload: []byte(`{"id":"HTL-1"}`), OccurredAt: at})
	require.NoError(t, err)
	mock.ExpectSet(keyPrefix+"req-1", raw, time.Hour).SetVal("OK")
	mock.ExpectGet(keyPrefix + "req-1").SetVal(string(raw))

	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{
		Key:        "req-1",
		Command:    "booking.hotel.create",
		Payload:    []byte(`{"id":"HTL-1"}`),
		OccurredAt: at,
	}))
	rec, found, err := store.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "booking.hotel.create", rec.Command)
	assert.JSONEq(t, `{"id":"HTL-1"}`, string(rec.Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStoreMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, 0)

	mock.ExpectGet(keyPrefix + "unknown").RedisNil()
	_, found, err := store.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, found)

	mock.ExpectGet(keyPrefix + "broken").SetErr(errors.New("connection refused"))
	_, _, err = store.Get(context.Background(), "broken")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
