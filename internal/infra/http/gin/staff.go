package ginserver

import (
	"errors"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"venuedesk/internal/app/middleware"
)

const staffPINHeader = "X-Staff-PIN"

var errInvalidPIN = errors.New("ginserver: invalid staff PIN")

type PINVerifier interface {
	Enabled() bool
	Verify(pin string) error
}

// StaffPIN marks requests carrying a valid staff PIN as staff. Requests
// without the header pass through untouched; the command bus decides whether
// they needed it.
type StaffPIN struct {
	Verifier PINVerifier
	Logger   *slog.Logger
}

func (m StaffPIN) Handle(c *gin.Context) {
	pin := strings.TrimSpace(c.GetHeader(staffPINHeader))
	if pin == "" || m.Verifier == nil || !m.Verifier.Enabled() {
		c.Next()
		return
	}
	if err := m.Verifier.Verify(pin); err != nil {
		respondError(c, m.Logger, errInvalidPIN)
		return
	}
	c.Request = c.Request.WithContext(middleware.WithStaff(c.Request.Context()))
	c.Next()
}
