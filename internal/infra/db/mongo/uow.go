package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"venuedesk/internal/app/uow"
	"venuedesk/internal/domain/allocation"
	domainbooking "venuedesk/internal/domain/booking"
	domainfinance "venuedesk/internal/domain/finance"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	BookingRepo domainbooking.Repository
	ClaimRepo   allocation.ClaimStore
	InvoiceRepo domainfinance.InvoiceRepository
	LedgerRepo  domainfinance.LedgerRepository
}

// NewFactory builds a factory with every repository backed by db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:          db,
		BookingRepo: NewBookingRepository(db),
		ClaimRepo:   NewClaimStore(db),
		InvoiceRepo: NewInvoiceRepository(db),
		LedgerRepo:  NewLedgerRepository(db),
	}
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction. Read-only units read a snapshot.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:  session,
		bookings: f.BookingRepo,
		claims:   f.ClaimRepo,
		invoices: f.InvoiceRepo,
		ledger:   f.LedgerRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	bookings domainbooking.Repository
	claims   allocation.ClaimStore
	invoices domainfinance.InvoiceRepository
	ledger   domainfinance.LedgerRepository
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Claims() allocation.ClaimStore {
	return u.claims
}

func (u *Unit) Invoices() domainfinance.InvoiceRepository {
	return u.invoices
}

func (u *Unit) Ledger() domainfinance.LedgerRepository {
	return u.ledger
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// Retryable reports driver errors labelled as transient by the server, such
// as write conflicts between two transactions claiming the same room night.
func (u *Unit) Retryable(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorLabel("TransientTransactionError") || se.HasErrorLabel("UnknownTransactionCommitResult")
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UnitOfWork      = (*Unit)(nil)
	_ uow.ContextInjector = (*Unit)(nil)
	_ uow.RetryClassifier = (*Unit)(nil)
)
