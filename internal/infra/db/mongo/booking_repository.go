package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/daterange"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := mongo.IndexModel{Keys: bson.D{
		{Key: "kind", Value: 1},
		{Key: "window.start", Value: 1},
		{Key: "window.end", Value: 1},
		{Key: "status", Value: 1},
	}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrDuplicateID
		}
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListActiveOverlapping(ctx context.Context, kind domainbooking.Kind, window daterange.DateRange) ([]*domainbooking.Booking, error) {
	filter := overlapFilter(kind, window)
	filter["status"] = bson.M{"$ne": string(domainbooking.StatusCancelled)}
	return r.find(ctx, filter)
}

func (r *BookingRepository) ListOverlapping(ctx context.Context, kind domainbooking.Kind, window daterange.DateRange, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	filter := overlapFilter(kind, window)
	filter["status"] = string(status)
	return r.find(ctx, filter)
}

// overlapFilter matches half-open windows: touching ends do not overlap.
func overlapFilter(kind domainbooking.Kind, window daterange.DateRange) bson.M {
	return bson.M{
		"kind":         string(kind),
		"window.start": bson.M{"$lt": window.End.UnixMilli()},
		"window.end":   bson.M{"$gt": window.Start.UnixMilli()},
	}
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID        string                      `bson:"_id"`
	Kind      string                      `bson:"kind"`
	Window    windowDocument              `bson:"window"`
	Status    string                      `bson:"status"`
	Contact   domainbooking.Contact       `bson:"contact"`
	Price     pricing.Quote               `bson:"price"`
	Hotel     *domainbooking.HotelDetails `bson:"hotel,omitempty"`
	Hall      *domainbooking.HallDetails  `bson:"hall,omitempty"`
	InvoiceID string                      `bson:"invoice_id,omitempty"`
	Notes     string                      `bson:"notes,omitempty"`
	CreatedAt int64                       `bson:"created_at"`
	UpdatedAt int64                       `bson:"updated_at"`
	Version   int64                       `bson:"version"`
}

type windowDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        string(b.ID),
		Kind:      string(b.Kind),
		Window:    windowDocument{Start: b.Window.Start.UnixMilli(), End: b.Window.End.UnixMilli()},
		Status:    string(b.Status),
		Contact:   b.Contact,
		Price:     b.Price,
		Hotel:     b.Hotel,
		Hall:      b.Hall,
		InvoiceID: b.InvoiceID,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		Kind:      domainbooking.Kind(d.Kind),
		Window:    daterange.DateRange{Start: timestampToTime(d.Window.Start), End: timestampToTime(d.Window.End)},
		Status:    domainbooking.Status(d.Status),
		Contact:   d.Contact,
		Price:     d.Price,
		Hotel:     d.Hotel,
		Hall:      d.Hall,
		InvoiceID: d.InvoiceID,
		Notes:     d.Notes,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
