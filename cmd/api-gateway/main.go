package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/bhrf-oversight-api/api/swagger"
	"github.com/noah-isme/bhrf-oversight-api/internal/handler"
	"github.com/noah-isme/bhrf-oversight-api/internal/middleware"
	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	"github.com/noah-isme/bhrf-oversight-api/internal/repository"
	"github.com/noah-isme/bhrf-oversight-api/internal/service"
	"github.com/noah-isme/bhrf-oversight-api/pkg/config"
	"github.com/noah-isme/bhrf-oversight-api/pkg/database"
	"github.com/noah-isme/bhrf-oversight-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/bhrf-oversight-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/bhrf-oversight-api/pkg/middleware/requestid"
)

// @title BHRF Oversight API
// @version 1.0.0
// @description Compliance evaluation and clinical record lifecycle for behavioral health residential facilities
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type handlers struct {
	compliance  *handler.ComplianceHandler
	obligations *handler.ObligationHandler
	records     *handler.ClinicalRecordHandler
	metrics     *handler.MetricsHandler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	h := buildHandlers(cfg, db, metricsSvc, logr)
	verifier := service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(verifier))
	registerRoutes(api, h, cfg.Exports.Enabled)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "timezone", cfg.Compliance.Location().String())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func buildHandlers(cfg *config.Config, db *sqlx.DB, metricsSvc *service.MetricsService, logr *zap.Logger) handlers {
	facilityRepo := repository.NewFacilityRepository(db, metricsSvc)
	obligationRepo := repository.NewObligationRepository(db, metricsSvc)
	documentRepo := repository.NewDocumentRepository(db, metricsSvc)
	auditRepo := repository.NewAuditLogRepository(db, metricsSvc)
	recordRepo := repository.NewClinicalRecordRepository(db, auditRepo, metricsSvc)

	resolver := service.NewPeriodResolver(cfg.Compliance.Location())
	classifier := service.NewExpirationClassifier(cfg.Compliance.ExpiringSoonWindow)

	complianceSvc := service.NewComplianceService(service.ComplianceServiceParams{
		Facilities:  facilityRepo,
		Obligations: obligationRepo,
		Documents:   documentRepo,
		Aggregator:  service.NewComplianceAggregator(resolver, classifier),
		Metrics:     metricsSvc,
		Logger:      logr.Named("compliance"),
	})
	obligationSvc := service.NewObligationService(obligationRepo, facilityRepo, resolver, service.NewValidator(), logr.Named("obligations"))
	recordSvc := service.NewClinicalRecordService(recordRepo, auditRepo, facilityRepo, logr.Named("records"),
		service.WithDecisionReasonMinLength(cfg.Compliance.MinDecisionReasonLength),
		service.WithTransitionMetrics(metricsSvc),
	)

	complianceHandler := handler.NewComplianceHandler(complianceSvc, nil)
	if cfg.Exports.Enabled {
		exporter := service.NewExportService(complianceSvc, service.ExportConfig{Title: cfg.Exports.Title}, logr.Named("exports"))
		complianceHandler = handler.NewComplianceHandler(complianceSvc, exporter)
	}

	return handlers{
		compliance:  complianceHandler,
		obligations: handler.NewObligationHandler(obligationSvc),
		records:     handler.NewClinicalRecordHandler(recordSvc),
		metrics:     handler.NewMetricsHandler(metricsSvc, db),
	}
}

func registerRoutes(api *gin.RouterGroup, h handlers, exportsEnabled bool) {
	managers := middleware.RequireRoles(models.RoleBHP, models.RoleAdmin)
	recorders := middleware.RequireRoles(models.RoleFacilityStaff, models.RoleAdmin)

	facilities := api.Group("/facilities/:id")
	facilities.GET("/compliance", h.compliance.Status)
	if exportsEnabled {
		facilities.GET("/compliance/export", h.compliance.Export)
	}
	facilities.GET("/obligations/schedule", h.compliance.Schedule)
	facilities.GET("/documents/status", h.compliance.DocumentStatuses)
	facilities.POST("/obligations", recorders, h.obligations.Create)
	facilities.GET("/obligations", h.obligations.List)
	facilities.POST("/records", recorders, h.records.Create)
	facilities.GET("/records", h.records.List)

	api.POST("/documents/classify", h.compliance.Classify)
	api.GET("/portfolio/compliance", managers, h.compliance.Portfolio)
	api.PUT("/obligations/:id", managers, h.obligations.Correct)

	records := api.Group("/records/:id")
	records.GET("", h.records.Get)
	records.POST("/transitions", h.records.Transition)
	records.GET("/audit", h.records.AuditTrail)
}
