package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"venuedesk/internal/infra/config"
	"venuedesk/internal/infra/obs"
)

type BookingHTTP interface {
	CreateHotel(c *gin.Context)
	CreateAuditorium(c *gin.Context)
	Get(c *gin.Context)
	Confirm(c *gin.Context)
	CheckIn(c *gin.Context)
	CheckOut(c *gin.Context)
	Complete(c *gin.Context)
	Cancel(c *gin.Context)
	QuoteHotel(c *gin.Context)
	QuoteAuditorium(c *gin.Context)
}

type AvailabilityHTTP interface {
	Day(c *gin.Context)
	Rooms(c *gin.Context)
}

type FinanceHTTP interface {
	IssueInvoice(c *gin.Context)
	GetInvoice(c *gin.Context)
	PayInvoice(c *gin.Context)
	RecordExpense(c *gin.Context)
	Cashflow(c *gin.Context)
}

type Handlers struct {
	Booking      BookingHTTP
	Availability AvailabilityHTTP
	Finance      FinanceHTTP
	Staff        gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the route table without touching the global gin mode.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", staffPINHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.Staff != nil {
		router.Use(h.Staff)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings/hotel", h.Booking.CreateHotel)
		api.POST("/bookings/auditorium", h.Booking.CreateAuditorium)
		api.GET("/bookings/:id", h.Booking.Get)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/check-in", h.Booking.CheckIn)
		api.POST("/bookings/:id/check-out", h.Booking.CheckOut)
		api.POST("/bookings/:id/complete", h.Booking.Complete)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/quotes/hotel", h.Booking.QuoteHotel)
		api.POST("/quotes/auditorium", h.Booking.QuoteAuditorium)
	}
	if h.Availability != nil {
		api.GET("/availability", h.Availability.Day)
		api.GET("/rooms", h.Availability.Rooms)
	}
	if h.Finance != nil {
		api.POST("/bookings/:id/invoices", h.Finance.IssueInvoice)
		api.GET("/invoices/:id", h.Finance.GetInvoice)
		api.POST("/invoices/:id/pay", h.Finance.PayInvoice)
		api.POST("/cashflow/expenses", h.Finance.RecordExpense)
		api.GET("/cashflow", h.Finance.Cashflow)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
