package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "venuedesk/internal/domain/booking"
	domainfinance "venuedesk/internal/domain/finance"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/money"
)

type InvoiceRepository struct {
	col *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	col := db.Collection("agg_invoice")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "booking_id", Value: 1}}})
	return &InvoiceRepository{col: col}
}

func (r *InvoiceRepository) ByID(ctx context.Context, id domainfinance.InvoiceID) (*domainfinance.Invoice, error) {
	var doc invoiceDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainfinance.ErrInvoiceNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *InvoiceRepository) Insert(ctx context.Context, inv *domainfinance.Invoice) error {
	doc := newInvoiceDocument(inv)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainfinance.ErrDuplicateID
		}
		return err
	}
	inv.Version = doc.Version
	return nil
}

func (r *InvoiceRepository) Save(ctx context.Context, inv *domainfinance.Invoice) error {
	doc := newInvoiceDocument(inv)
	filter := bson.M{"_id": doc.ID, "version": inv.Version}
	doc.Version = inv.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainfinance.ErrConcurrentUpdate
	}
	inv.Version = doc.Version
	return nil
}

type invoiceDocument struct {
	ID             string         `bson:"_id"`
	BookingID      string         `bson:"booking_id"`
	Customer       string         `bson:"customer"`
	Lines          []pricing.Line `bson:"lines"`
	Total          money.Money    `bson:"total"`
	Secondary      []pricing.Line `bson:"secondary,omitempty"`
	SecondaryTotal money.Money    `bson:"secondary_total"`
	Status         string         `bson:"status"`
	LedgerEntryID  string         `bson:"ledger_entry_id,omitempty"`
	IssuedAt       time.Time      `bson:"issued_at"`
	PaidAt         *time.Time     `bson:"paid_at,omitempty"`
	VoidedAt       *time.Time     `bson:"voided_at,omitempty"`
	Version        int64          `bson:"version"`
}

func newInvoiceDocument(inv *domainfinance.Invoice) invoiceDocument {
	return invoiceDocument{
		ID:             string(inv.ID),
		BookingID:      string(inv.BookingID),
		Customer:       inv.Customer,
		Lines:          inv.Lines,
		Total:          inv.Total,
		Secondary:      inv.Secondary,
		SecondaryTotal: inv.SecondaryTotal,
		Status:         string(inv.Status),
		LedgerEntryID:  inv.LedgerEntryID,
		IssuedAt:       inv.IssuedAt,
		PaidAt:         inv.PaidAt,
		VoidedAt:       inv.VoidedAt,
		Version:        inv.Version,
	}
}

func (d invoiceDocument) toAggregate() *domainfinance.Invoice {
	return &domainfinance.Invoice{
		ID:             domainfinance.InvoiceID(d.ID),
		BookingID:      domainbooking.BookingID(d.BookingID),
		Customer:       d.Customer,
		Lines:          d.Lines,
		Total:          d.Total,
		Secondary:      d.Secondary,
		SecondaryTotal: d.SecondaryTotal,
		Status:         domainfinance.InvoiceStatus(d.Status),
		LedgerEntryID:  d.LedgerEntryID,
		IssuedAt:       d.IssuedAt.UTC(),
		PaidAt:         utcPtr(d.PaidAt),
		VoidedAt:       utcPtr(d.VoidedAt),
		Version:        d.Version,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

type LedgerRepository struct {
	col *mongo.Collection
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	col := db.Collection("ledger_entries")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "occurred_at", Value: 1}}})
	return &LedgerRepository{col: col}
}

type ledgerDocument struct {
	ID         string      `bson:"_id"`
	Direction  string      `bson:"direction"`
	Category   string      `bson:"category"`
	Amount     money.Money `bson:"amount"`
	InvoiceID  string      `bson:"invoice_id,omitempty"`
	BookingID  string      `bson:"booking_id,omitempty"`
	Note       string      `bson:"note,omitempty"`
	OccurredAt time.Time   `bson:"occurred_at"`
}

func (r *LedgerRepository) Insert(ctx context.Context, e *domainfinance.LedgerEntry) error {
	doc := ledgerDocument{
		ID:         e.ID,
		Direction:  string(e.Direction),
		Category:   e.Category,
		Amount:     e.Amount,
		InvoiceID:  string(e.InvoiceID),
		BookingID:  e.BookingID,
		Note:       e.Note,
		OccurredAt: e.OccurredAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainfinance.ErrDuplicateID
		}
		return err
	}
	return nil
}

func (r *LedgerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainfinance.ErrEntryNotFound
	}
	return nil
}

func (r *LedgerRepository) List(ctx context.Context, window daterange.DateRange) ([]*domainfinance.LedgerEntry, error) {
	filter := bson.M{"occurred_at": bson.M{"$gte": window.Start, "$lt": window.End}}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainfinance.LedgerEntry
	for cur.Next(ctx) {
		var doc ledgerDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, &domainfinance.LedgerEntry{
			ID:         doc.ID,
			Direction:  domainfinance.Direction(doc.Direction),
			Category:   doc.Category,
			Amount:     doc.Amount,
			InvoiceID:  domainfinance.InvoiceID(doc.InvoiceID),
			BookingID:  doc.BookingID,
			Note:       doc.Note,
			OccurredAt: doc.OccurredAt.UTC(),
		})
	}
	return out, cur.Err()
}

var (
	_ domainfinance.InvoiceRepository = (*InvoiceRepository)(nil)
	_ domainfinance.LedgerRepository  = (*LedgerRepository)(nil)
)
