package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"venuedesk/internal/domain/allocation"
	domainbooking "venuedesk/internal/domain/booking"
)

// ClaimStore keys each claimed slot by its _id, so a second claim on the same
// room-night or hall-hour fails on the primary key.
type ClaimStore struct {
	col *mongo.Collection
}

func NewClaimStore(db *mongo.Database) *ClaimStore {
	col := db.Collection("booking_claims")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "booking_id", Value: 1}}})
	return &ClaimStore{col: col}
}

type claimDocument struct {
	Key       string    `bson:"_id"`
	BookingID string    `bson:"booking_id"`
	ClaimedAt time.Time `bson:"claimed_at"`
}

func (s *ClaimStore) Claim(ctx context.Context, bookingID domainbooking.BookingID, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, 0, len(keys))
	for _, k := range keys {
		docs = append(docs, claimDocument{Key: k, BookingID: string(bookingID), ClaimedAt: now})
	}
	if _, err := s.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return allocation.ErrSlotTaken
		}
		return err
	}
	return nil
}

func (s *ClaimStore) Release(ctx context.Context, bookingID domainbooking.BookingID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"booking_id": string(bookingID)})
	return err
}

var _ allocation.ClaimStore = (*ClaimStore)(nil)
