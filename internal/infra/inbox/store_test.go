package inbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestStoreSeen(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("first delivery is new", func(mt *mtest.T) {
		store := NewStore(mt.DB, "notifier", 0)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		seen, err := store.Seen(context.Background(), "ntf-1")
		require.NoError(t, err)
		assert.False(t, seen)
	})

	mt.Run("redelivery is reported as seen", func(mt *mtest.T) {
		store := NewStore(mt.DB, "notifier", 0)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		seen, err := store.Seen(context.Background(), "ntf-1")
		require.NoError(t, err)
		assert.True(t, seen)
	})

	mt.Run("other write errors surface", func(mt *mtest.T) {
		store := NewStore(mt.DB, "notifier", 0)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))

		_, err := store.Seen(context.Background(), "ntf-1")
		assert.Error(t, err)
	})

	mt.Run("forget deletes by consumer scoped id", func(mt *mtest.T) {
		store := NewStore(mt.DB, "notifier", 0)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(t, store.Forget(context.Background(), "ntf-1"))
		started := mt.GetStartedEvent()
		for started != nil && started.CommandName != "delete" {
			started = mt.GetStartedEvent()
		}
		require.NotNil(t, started)
		assert.Contains(t, started.Command.String(), "notifier:ntf-1")
	})
}
