package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aquabill/aquabill/internal/audit"
	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	"github.com/aquabill/aquabill/internal/billing"
	billingdomain "github.com/aquabill/aquabill/internal/billing/domain"
	"github.com/aquabill/aquabill/internal/client"
	clientdomain "github.com/aquabill/aquabill/internal/client/domain"
	"github.com/aquabill/aquabill/internal/company"
	companydomain "github.com/aquabill/aquabill/internal/company/domain"
	"github.com/aquabill/aquabill/internal/config"
	"github.com/aquabill/aquabill/internal/delinquency"
	delinquencydomain "github.com/aquabill/aquabill/internal/delinquency/domain"
	"github.com/aquabill/aquabill/internal/invoice"
	invoicedomain "github.com/aquabill/aquabill/internal/invoice/domain"
	"github.com/aquabill/aquabill/internal/meter"
	meterdomain "github.com/aquabill/aquabill/internal/meter/domain"
	"github.com/aquabill/aquabill/internal/observability"
	obsmiddleware "github.com/aquabill/aquabill/internal/observability/logger"
	obsmetrics "github.com/aquabill/aquabill/internal/observability/metrics"
	obstracing "github.com/aquabill/aquabill/internal/observability/tracing"
	"github.com/aquabill/aquabill/internal/payment"
	paymentdomain "github.com/aquabill/aquabill/internal/payment/domain"
	"github.com/aquabill/aquabill/internal/ratelimit"
	"github.com/aquabill/aquabill/internal/reading"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	company.Module,
	client.Module,
	meter.Module,
	reading.Module,
	invoice.Module,
	payment.Module,
	billing.Module,
	delinquency.Module,
	ratelimit.Module,
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

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
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
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	db             *gorm.DB
	genID          *snowflake.Node
	limiter        *ratelimit.IngestLimiter
	companySvc     companydomain.Service
	clientSvc      clientdomain.Service
	meterSvc       meterdomain.Service
	readingSvc     readingdomain.Service
	invoiceSvc     invoicedomain.Service
	paymentSvc     paymentdomain.Service
	billingSvc     billingdomain.Service
	delinquencySvc delinquencydomain.Service
	auditSvc       auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	DB             *gorm.DB
	GenID          *snowflake.Node
	Limiter        *ratelimit.IngestLimiter
	CompanySvc     companydomain.Service
	ClientSvc      clientdomain.Service
	MeterSvc       meterdomain.Service
	ReadingSvc     readingdomain.Service
	InvoiceSvc     invoicedomain.Service
	PaymentSvc     paymentdomain.Service
	BillingSvc     billingdomain.Service
	DelinquencySvc delinquencydomain.Service
	AuditSvc       auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		db:             p.DB,
		genID:          p.GenID,
		limiter:        p.Limiter,
		companySvc:     p.CompanySvc,
		clientSvc:      p.ClientSvc,
		meterSvc:       p.MeterSvc,
		readingSvc:     p.ReadingSvc,
		invoiceSvc:     p.InvoiceSvc,
		paymentSvc:     p.PaymentSvc,
		billingSvc:     p.BillingSvc,
		delinquencySvc: p.DelinquencySvc,
		auditSvc:       p.AuditSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/companies", s.CreateCompany)
	v1.GET("/companies", s.ListCompanies)
	v1.GET("/companies/:id", s.GetCompany)
	v1.PATCH("/companies/:id", s.UpdateCompany)
	v1.PUT("/companies/:id/tariff", s.UpdateTariff)

	v1.POST("/clients", s.CreateClient)
	v1.GET("/clients", s.ListClients)
	v1.GET("/clients/:id", s.GetClient)
	v1.PATCH("/clients/:id", s.UpdateClient)
	v1.GET("/clients/:id/invoices", s.ListClientInvoices)
	v1.GET("/clients/:id/payments", s.ListClientPayments)

	v1.POST("/meters", s.CreateMeter)
	v1.GET("/meters", s.ListMeters)
	v1.GET("/meters/:id", s.GetMeter)
	v1.PATCH("/meters/:id", s.UpdateMeter)
	v1.POST("/meters/:id/replace", s.ReplaceMeter)
	v1.GET("/meters/:id/readings", s.ListMeterReadings)

	v1.POST("/readings", s.rateLimit(s.limiter.AllowReading), s.SubmitReading)
	v1.GET("/readings", s.ListReadings)
	v1.GET("/readings/:id", s.GetReading)

	v1.POST("/invoices/generate", s.GenerateInvoice)
	v1.GET("/invoices", s.ListInvoices)
	v1.GET("/invoices/pending", s.ListPendingInvoices)
	v1.GET("/invoices/:id", s.GetInvoice)
	v1.GET("/invoices/:id/payments", s.ListInvoicePayments)

	v1.POST("/payments", s.rateLimit(s.limiter.AllowPayment), s.RecordPayment)
	v1.GET("/payments/:id", s.GetPayment)

	v1.GET("/reports/delinquency", s.DelinquencyReport)

	v1.GET("/audit-logs", s.ListAuditLogs)
}
