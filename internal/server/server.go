package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitekhata/sitekhata/internal/attendance"
	attendancedomain "github.com/sitekhata/sitekhata/internal/attendance/domain"
	"github.com/sitekhata/sitekhata/internal/authorization"
	"github.com/sitekhata/sitekhata/internal/config"
	"github.com/sitekhata/sitekhata/internal/invoice"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
	"github.com/sitekhata/sitekhata/internal/khatabook"
	khatabookdomain "github.com/sitekhata/sitekhata/internal/khatabook/domain"
	obsmiddleware "github.com/sitekhata/sitekhata/internal/observability/logger"
	obsmetrics "github.com/sitekhata/sitekhata/internal/observability/metrics"
	obstracing "github.com/sitekhata/sitekhata/internal/observability/tracing"
	"github.com/sitekhata/sitekhata/internal/person"
	persondomain "github.com/sitekhata/sitekhata/internal/person/domain"
	"github.com/sitekhata/sitekhata/internal/project"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	"github.com/sitekhata/sitekhata/internal/ratelimit"
	"github.com/sitekhata/sitekhata/internal/wagerate"
	wageratedomain "github.com/sitekhata/sitekhata/internal/wagerate/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	project.Module,
	wagerate.Module,
	attendance.Module,
	invoice.Module,
	person.Module,
	khatabook.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware())
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", httpMetrics.Handler())

	return r
}

func registerGin(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
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
	engine *gin.Engine
	cfg    config.Config

	projectSvc    projectdomain.Service
	wageRateSvc   wageratedomain.Service
	attendanceSvc attendancedomain.Service
	invoiceSvc    invoicedomain.Service
	personSvc     persondomain.Service
	khatabookSvc  khatabookdomain.Service

	markLimiter *ratelimit.AttendanceMarkLimiter
	metrics     *obsmetrics.HTTPMetrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	ProjectSvc    projectdomain.Service
	WageRateSvc   wageratedomain.Service
	AttendanceSvc attendancedomain.Service
	InvoiceSvc    invoicedomain.Service
	PersonSvc     persondomain.Service
	KhatabookSvc  khatabookdomain.Service
	MarkLimiter   *ratelimit.AttendanceMarkLimiter `optional:"true"`
	Metrics       *obsmetrics.HTTPMetrics
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		projectSvc:    p.ProjectSvc,
		wageRateSvc:   p.WageRateSvc,
		attendanceSvc: p.AttendanceSvc,
		invoiceSvc:    p.InvoiceSvc,
		personSvc:     p.PersonSvc,
		khatabookSvc:  p.KhatabookSvc,
		markLimiter:   p.MarkLimiter,
		metrics:       p.Metrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(ActorContext())

	projects := api.Group("/projects")
	projects.POST("", s.CreateProject)
	projects.GET("", s.ListProjects)
	projects.GET("/:id", s.GetProject)
	projects.PATCH("/:id", s.UpdateProject)
	projects.DELETE("/:id", s.DeleteProject)

	projects.POST("/:id/wage-rates", s.ConfigureWageRate)
	projects.GET("/:id/wage-rates", s.WageRateHistory)
	projects.GET("/:id/wage-rates/current", s.CurrentWageRate)
	projects.DELETE("/:id/wage-rates/:rateId", s.RemoveWageRate)

	projects.POST("/:id/attendance", s.AttendanceMarkRateLimit(), s.MarkAttendance)
	projects.GET("/:id/attendance", s.ListAttendance)
	projects.GET("/:id/attendance/summary", s.AttendanceSummary)
	api.POST("/attendance/:id/calculation", s.PinCalculation)

	invoices := api.Group("/invoices")
	invoices.POST("", s.CreateInvoice)
	invoices.GET("", s.ListInvoices)
	invoices.GET("/aging", s.InvoiceAging)
	invoices.GET("/:id", s.GetInvoice)
	invoices.GET("/:id/pdf", s.InvoicePDF)
	invoices.POST("/:id/payments", s.AddInvoicePayment)
	invoices.PATCH("/:id/payments/:paymentId", s.UpdateInvoicePayment)
	invoices.DELETE("/:id/payments/:paymentId", s.RemoveInvoicePayment)

	persons := api.Group("/persons")
	persons.POST("", s.CreatePerson)
	persons.GET("", s.ListPersons)
	persons.GET("/:id", s.GetPerson)
	persons.PATCH("/:id", s.UpdatePerson)
	persons.DELETE("/:id", s.DeletePerson)
	persons.GET("/:id/balance", s.PersonBalance)

	entries := api.Group("/khatabook")
	entries.POST("", s.CreateKhatabookEntry)
	entries.GET("", s.ListKhatabookEntries)
	entries.PATCH("/:id", s.UpdateKhatabookEntry)
	entries.DELETE("/:id", s.DeleteKhatabookEntry)
}
