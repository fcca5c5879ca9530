package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "venuedesk/internal/app/handlers/booking"
	financeapp "venuedesk/internal/app/handlers/finance"
	"venuedesk/internal/app/middleware"
	"venuedesk/internal/app/uow"
	"venuedesk/internal/domain/allocation"
	domainbooking "venuedesk/internal/domain/booking"
	domainfinance "venuedesk/internal/domain/finance"
	"venuedesk/internal/domain/shared/errs"
)

// statusFor maps an application error to an HTTP status and the message shown
// to the caller. Anything unrecognised is an internal error whose detail only
// reaches the log.
func statusFor(err error) (int, string) {
	if msg, ok := errs.UserMessage(err); ok {
		return http.StatusBadRequest, msg
	}
	switch {
	case errors.Is(err, middleware.ErrStaffRequired), errors.Is(err, errInvalidPIN):
		return http.StatusForbidden, "staff PIN required"
	case errors.Is(err, domainbooking.ErrBookingNotFound):
		return http.StatusNotFound, "booking not found"
	case errors.Is(err, domainfinance.ErrInvoiceNotFound):
		return http.StatusNotFound, "invoice not found"
	case errors.Is(err, allocation.ErrSlotTaken):
		return http.StatusConflict, "the selected slot was just taken, please choose another"
	case errors.Is(err, domainbooking.ErrConcurrentUpdate), errors.Is(err, domainfinance.ErrConcurrentUpdate):
		return http.StatusConflict, "the record was changed concurrently, please retry"
	case errors.Is(err, domainbooking.ErrDuplicateID), errors.Is(err, domainfinance.ErrDuplicateID),
		errors.Is(err, bookingapp.ErrIDSpaceExhausted), errors.Is(err, financeapp.ErrIDSpaceExhausted):
		return http.StatusConflict, "could not allocate a document number, please retry"
	case errors.Is(err, middleware.ErrIdempotencyKeyReused):
		return http.StatusConflict, "idempotency key already used for another request"
	case errors.Is(err, uow.ErrUnitOfWorkMissing):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, msg := statusFor(err)
	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed", "status", status, "path", c.FullPath(), "request_id", c.GetString("request_id"), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
