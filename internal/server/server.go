package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
	"github.com/gowander/waypost/internal/config"
	invoicedomain "github.com/gowander/waypost/internal/invoice/domain"
	notificationdomain "github.com/gowander/waypost/internal/notification/domain"
	"github.com/gowander/waypost/internal/observability"
	obsmiddleware "github.com/gowander/waypost/internal/observability/logger"
	obsmetrics "github.com/gowander/waypost/internal/observability/metrics"
	obstracing "github.com/gowander/waypost/internal/observability/tracing"
	"github.com/gowander/waypost/internal/ratelimit"
	settlementdomain "github.com/gowander/waypost/internal/settlement/domain"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	tourSvc       tourdomain.Service
	bookingSvc    bookingdomain.Service
	settlementSvc settlementdomain.Verifier
	invoiceSvc    invoicedomain.Service
	dispatcher    notificationdomain.Dispatcher
	limiter       *ratelimit.TokenBucket
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	TourSvc       tourdomain.Service
	BookingSvc    bookingdomain.Service
	SettlementSvc settlementdomain.Verifier
	InvoiceSvc    invoicedomain.Service
	Dispatcher    notificationdomain.Dispatcher
	Limiter       *ratelimit.TokenBucket        `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics           `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		tourSvc:       p.TourSvc,
		bookingSvc:    p.BookingSvc,
		settlementSvc: p.SettlementSvc,
		invoiceSvc:    p.InvoiceSvc,
		dispatcher:    p.Dispatcher,
		limiter:       p.Limiter,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Tours --------
	api.GET("/tours", s.ListTours)
	api.GET("/tours/:id", s.GetTourByID)

	// -------- Bookings --------
	api.POST("/bookings", s.RateLimit("booking", s.cfg.BookingRatePerSecond, s.cfg.BookingRateBurst), s.CreateBooking)
	api.GET("/bookings/:id", s.GetBookingByID)

	// -------- Invoices --------
	api.GET("/bookings/:id/invoice", s.GetInvoiceSnapshot)
	api.GET("/bookings/:id/invoice.html", s.RenderInvoiceHTML)
	api.GET("/bookings/:id/invoice.pdf", s.RenderInvoicePDF)

	// -------- Payment Callbacks --------
	api.POST("/payments/callback", s.RateLimit("callback", s.cfg.CallbackRatePerSecond, s.cfg.CallbackRateBurst), s.HandlePaymentCallback)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.AdminAuthRequired())

	admin.POST("/suppliers", s.CreateSupplier)
	admin.POST("/tours", s.CreateTour)
	admin.POST("/tours/:id/options", s.CreateTourOption)

	admin.POST("/bookings/:id/cancel", s.CancelBooking)
	admin.POST("/bookings/:id/refund", s.RefundBooking)
	admin.GET("/bookings/:id/notifications", s.ListBookingNotifications)
	admin.POST("/bookings/:id/notifications/retry", s.RetryBookingNotifications)
}
