package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/invoicely/internal/config"
	invoicedomain "github.com/smallbiznis/invoicely/internal/invoice/domain"
	"github.com/smallbiznis/invoicely/internal/observability"
	obslogger "github.com/smallbiznis/invoicely/internal/observability/logger"
	obstracing "github.com/smallbiznis/invoicely/internal/observability/tracing"
	organizationdomain "github.com/smallbiznis/invoicely/internal/organization/domain"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
	summarydomain "github.com/smallbiznis/invoicely/internal/summary/domain"
	"github.com/smallbiznis/invoicely/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterAPIRoutes() }),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *telemetry.Metrics, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Log:             log,
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(MetricsMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RunHTTP serves the engine for the lifetime of the fx app.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", addr))
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
	engine          *gin.Engine
	profileSvc      profiledomain.Service
	organizationSvc organizationdomain.Service
	invoiceSvc      invoicedomain.Service
	summarySvc      summarydomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	ProfileSvc      profiledomain.Service
	OrganizationSvc organizationdomain.Service
	InvoiceSvc      invoicedomain.Service
	SummarySvc      summarydomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		profileSvc:      p.ProfileSvc,
		organizationSvc: p.OrganizationSvc,
		invoiceSvc:      p.InvoiceSvc,
		summarySvc:      p.SummarySvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Profiles --------
	api.GET("/profiles", s.ListProfiles)
	api.POST("/profiles", s.CreateProfile)
	api.DELETE("/profiles", s.DeleteAllProfiles)
	api.GET("/profiles/:profileId", s.GetProfileByID)
	api.PUT("/profiles/:profileId", s.UpdateProfile)
	api.DELETE("/profiles/:profileId", s.DeleteProfile)

	profile := api.Group("/profiles/:profileId")

	// -------- Organizations --------
	profile.GET("/organizations", s.ListOrganizations)
	profile.POST("/organizations", s.CreateOrganization)
	profile.DELETE("/organizations", s.DeleteAllOrganizations)
	profile.GET("/organizations/:orgId", s.GetOrganizationByID)
	profile.PUT("/organizations/:orgId", s.UpdateOrganization)
	profile.DELETE("/organizations/:orgId", s.DeleteOrganization)

	// -------- Invoices --------
	profile.GET("/invoices", s.ListInvoices)
	profile.POST("/invoices", s.CreateInvoice)
	profile.DELETE("/invoices", s.DeleteAllInvoices)
	profile.GET("/invoices/organization/:orgId", s.ListInvoicesByOrganization)
	profile.DELETE("/invoices/organization/:orgId", s.DeleteInvoicesByOrganization)
	profile.GET("/invoices/:invoiceId", s.GetInvoiceByID)
	profile.PUT("/invoices/:invoiceId", s.UpdateInvoice)
	profile.DELETE("/invoices/:invoiceId", s.DeleteInvoice)
	profile.GET("/invoices/:invoiceId/document", s.GetInvoiceDocument)

	// -------- Summary --------
	profile.GET("/summary", s.GetFinancialSummary)
}
