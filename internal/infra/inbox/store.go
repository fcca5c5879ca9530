package inbox

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultRetention = 14 * 24 * time.Hour

// Store remembers which notifications a consumer group has already handled.
// Entries expire after the retention window, which must exceed the topic's
// own retention for deduplication to hold.
type Store struct {
	col      *mongo.Collection
	consumer string
	now      func() time.Time
}

type entry struct {
	ID         string    `bson:"_id"`
	EventID    string    `bson:"event_id"`
	Consumer   string    `bson:"consumer"`
	ReceivedAt time.Time `bson:"received_at"`
}

func NewStore(db *mongo.Database, consumer string, retention time.Duration) *Store {
	if retention <= 0 {
		retention = defaultRetention
	}
	col := db.Collection("app_inbox")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "received_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
	})
	return &Store{col: col, consumer: consumer, now: func() time.Time { return time.Now().UTC() }}
}

// Seen records the event and reports whether it had been recorded before.
func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	_, err := s.col.InsertOne(ctx, entry{
		ID:         s.entryID(eventID),
		EventID:    eventID,
		Consumer:   s.consumer,
		ReceivedAt: s.now(),
	})
	switch {
	case err == nil:
		return false, nil
	case mongo.IsDuplicateKeyError(err):
		return true, nil
	default:
		return false, err
	}
}

// Forget drops the record so a redelivered event is handled again.
func (s *Store) Forget(ctx context.Context, eventID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": s.entryID(eventID)})
	return err
}

func (s *Store) entryID(eventID string) string {
	return s.consumer + ":" + eventID
}
