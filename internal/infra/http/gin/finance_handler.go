package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/dto"
	financeapp "venuedesk/internal/app/handlers/finance"
	"venuedesk/internal/app/queries"
	domainfinance "venuedesk/internal/domain/finance"
)

type FinanceHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h FinanceHandler) IssueInvoice(c *gin.Context) {
	cmd := financeapp.IssueInvoiceCommand{BookingID: c.Param("id")}
	dispatch[financeapp.IssueInvoiceCommand, *dto.InvoiceView](c, h.Commands, h.Logger, cmd, http.StatusCreated)
}

func (h FinanceHandler) GetInvoice(c *gin.Context) {
	ask[financeapp.GetInvoiceQuery, dto.InvoiceView](c, h.Queries, h.Logger, financeapp.GetInvoiceQuery{InvoiceID: c.Param("id")})
}

func (h FinanceHandler) PayInvoice(c *gin.Context) {
	cmd := financeapp.PayInvoiceCommand{InvoiceID: c.Param("id")}
	dispatch[financeapp.PayInvoiceCommand, *dto.InvoiceView](c, h.Commands, h.Logger, cmd, http.StatusOK)
}

func (h FinanceHandler) RecordExpense(c *gin.Context) {
	var cmd financeapp.RecordExpenseCommand
	if !bindJSON(c, &cmd) {
		return
	}
	dispatch[financeapp.RecordExpenseCommand, *dto.LedgerEntryView](c, h.Commands, h.Logger, cmd, http.StatusCreated)
}

func (h FinanceHandler) Cashflow(c *gin.Context) {
	q := financeapp.CashflowQuery{From: c.Query("from"), To: c.Query("to")}
	ask[financeapp.CashflowQuery, domainfinance.Cashflow](c, h.Queries, h.Logger, q)
}

var _ FinanceHTTP = FinanceHandler{}
