package finance

import (
	"context"
	"strings"
	"time"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/dto"
	"venuedesk/internal/app/handlers/support"
	"venuedesk/internal/app/queries"
	"venuedesk/internal/app/uow"
	domainfinance "venuedesk/internal/domain/finance"
	"venuedesk/internal/domain/shared/daterange"
	"venuedesk/internal/domain/shared/errs"
	"venuedesk/internal/domain/shared/money"
)

// RecordExpenseCommand books money going out. Amount is in minor units.
type RecordExpenseCommand struct {
	Category string `json:"category" validate:"required"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3"`
	Note     string `json:"note,omitempty"`
	// Date defaults to today when empty.
	Date string `json:"date,omitempty"`
}

func (RecordExpenseCommand) Key() string         { return "cashflow.expense" }
func (RecordExpenseCommand) RequiresStaff() bool { return true }

type RecordExpenseHandler struct {
	Deps
}

func (h *RecordExpenseHandler) Handle(ctx context.Context, cmd RecordExpenseCommand) (*dto.LedgerEntryView, error) {
	unit, err := support.RequireUnit(ctx)
	if err != nil {
		return nil, err
	}
	at := h.now()
	if strings.TrimSpace(cmd.Date) != "" {
		day, err := daterange.ParseDay(cmd.Date)
		if err != nil {
			return nil, errs.Invalid("date must be formatted YYYY-MM-DD")
		}
		at = day
	}
	amount, err := money.New(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, errs.Rejected(err)
	}
	entry, err := domainfinance.NewExpense(h.entryID(), cmd.Category, amount, strings.TrimSpace(cmd.Note), at)
	if err != nil {
		return nil, err
	}
	if err := unit.Ledger().Insert(ctx, entry); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "expense recorded", "entry_id", entry.ID, "category", entry.Category, "amount", entry.Amount.String())
	view := dto.MapLedgerEntry(entry)
	return &view, nil
}

// CashflowQuery sums the ledger over [from, to). Dates are YYYY-MM-DD; to
// defaults to the day after from.
type CashflowQuery struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to,omitempty"`
}

func (CashflowQuery) Key() string         { return "cashflow.summary" }
func (CashflowQuery) RequiresStaff() bool { return true }

type CashflowHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CashflowHandler) Handle(ctx context.Context, q CashflowQuery) (domainfinance.Cashflow, error) {
	window, err := cashflowWindow(q.From, q.To)
	if err != nil {
		return domainfinance.Cashflow{}, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return domainfinance.Cashflow{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	entries, err := unit.Ledger().List(execCtx, window)
	if err != nil {
		return domainfinance.Cashflow{}, err
	}
	return domainfinance.Summarize(entries, window), nil
}

func cashflowWindow(from, to string) (daterange.DateRange, error) {
	start, err := daterange.ParseDay(from)
	if err != nil {
		return daterange.DateRange{}, errs.Invalid("from must be formatted YYYY-MM-DD")
	}
	end := start.Add(24 * time.Hour)
	if strings.TrimSpace(to) != "" {
		end, err = daterange.ParseDay(to)
		if err != nil {
			return daterange.DateRange{}, errs.Invalid("to must be formatted YYYY-MM-DD")
		}
	}
	window, err := daterange.New(start, end)
	if err != nil {
		return daterange.DateRange{}, errs.Invalid("to must be after from")
	}
	return window, nil
}

// Register wires the finance commands and queries.
func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, deps Deps, factory uow.UoWFactory) {
	commands.RegisterHandler[IssueInvoiceCommand, *dto.InvoiceView](cmdBus, &IssueInvoiceHandler{Deps: deps})
	commands.RegisterHandler[PayInvoiceCommand, *dto.InvoiceView](cmdBus, &PayInvoiceHandler{Deps: deps})
	commands.RegisterHandler[RecordExpenseCommand, *dto.LedgerEntryView](cmdBus, &RecordExpenseHandler{Deps: deps})
	queries.RegisterHandler[GetInvoiceQuery, dto.InvoiceView](queryBus, &GetInvoiceHandler{UoWFactory: factory})
	queries.RegisterHandler[CashflowQuery, domainfinance.Cashflow](queryBus, &CashflowHandler{UoWFactory: factory})
}
