package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	ordersapp "github.com/orderhub/backend/internal/application/orders"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/shared"
	"github.com/orderhub/backend/internal/infrastructure/cache"
	"github.com/orderhub/backend/internal/infrastructure/config"
	"github.com/orderhub/backend/internal/infrastructure/erp"
	"github.com/orderhub/backend/internal/infrastructure/logger"
	"github.com/orderhub/backend/internal/infrastructure/marketplace"
	"github.com/orderhub/backend/internal/infrastructure/notification"
	"github.com/orderhub/backend/internal/infrastructure/persistence"
	"github.com/orderhub/backend/internal/infrastructure/scheduler"
	"github.com/orderhub/backend/internal/infrastructure/workflow"
	"github.com/orderhub/backend/internal/interfaces/http/handler"
	"github.com/orderhub/backend/internal/interfaces/http/middleware"
	"github.com/orderhub/backend/internal/interfaces/http/router"
)

// defaultTenantID is the tenant used for the periodic reconciliation scope
// until multi-tenant onboarding feeds real tenants into the scheduler.
var defaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting OrderHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	historyRepo := persistence.NewGormStatusHistoryRepository(db.DB)

	// Idempotency fence: Redis when reachable, in-memory otherwise. The
	// in-memory fence only protects a single instance.
	var fence shared.IdempotencyStore
	if redisFence, err := cache.NewRedisIdempotencyStore(&cfg.Redis); err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency fence", zap.Error(err))
		fence = cache.NewInMemoryIdempotencyStore()
	} else {
		fence = redisFence
		log.Info("Redis idempotency fence connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Marketplace adapters
	registry := marketplace.NewRegistry()
	if cfg.Marketplace.ZidEnabled {
		zidCfg := marketplace.NewZidConfig(cfg.Marketplace.ZidToken, cfg.Marketplace.ZidStoreID)
		if cfg.Marketplace.ZidBaseURL != "" {
			zidCfg.APIBaseURL = cfg.Marketplace.ZidBaseURL
		}
		zidCfg.TimeoutSeconds = int(cfg.Marketplace.RequestTimeout.Seconds())
		zidAdapter, err := marketplace.NewZidAdapter(zidCfg)
		if err != nil {
			log.Fatal("Failed to initialize Zid adapter", zap.Error(err))
		}
		if err := registry.Register(zidAdapter); err != nil {
			log.Fatal("Failed to register Zid adapter", zap.Error(err))
		}
		log.Info("Zid marketplace adapter registered")
	}
	if cfg.Marketplace.SallaEnabled {
		sallaCfg := marketplace.NewSallaConfig(cfg.Marketplace.SallaToken)
		if cfg.Marketplace.SallaBaseURL != "" {
			sallaCfg.APIBaseURL = cfg.Marketplace.SallaBaseURL
		}
		sallaCfg.TimeoutSeconds = int(cfg.Marketplace.RequestTimeout.Seconds())
		sallaAdapter, err := marketplace.NewSallaAdapter(sallaCfg)
		if err != nil {
			log.Fatal("Failed to initialize Salla adapter", zap.Error(err))
		}
		if err := registry.Register(sallaAdapter); err != nil {
			log.Fatal("Failed to register Salla adapter", zap.Error(err))
		}
		log.Info("Salla marketplace adapter registered")
	}

	// ERP adapter
	var erpAdapter integration.ERPAdapter
	if cfg.ERP.Enabled {
		odooAdapter, err := erp.NewOdooAdapter(erp.NewOdooConfig(
			cfg.ERP.BaseURL, cfg.ERP.Database, cfg.ERP.Username, cfg.ERP.APIKey,
		))
		if err != nil {
			log.Fatal("Failed to initialize Odoo adapter", zap.Error(err))
		}
		erpAdapter = odooAdapter
		log.Info("Odoo ERP adapter initialized", zap.String("base_url", cfg.ERP.BaseURL))
	}

	// Workflow adapter
	var workflowAdapter integration.WorkflowAdapter
	if cfg.Workflow.Enabled {
		n8nAdapter, err := workflow.NewN8NAdapter(&workflow.N8NConfig{
			BaseURL: cfg.Workflow.BaseURL,
			APIKey:  cfg.Workflow.APIKey,
		})
		if err != nil {
			log.Fatal("Failed to initialize n8n adapter", zap.Error(err))
		}
		workflowAdapter = n8nAdapter
		log.Info("n8n workflow adapter initialized", zap.String("base_url", cfg.Workflow.BaseURL))
	}

	// Notification adapter
	var notifier integration.NotificationAdapter
	if cfg.Mail.Enabled {
		mailAdapter, err := notification.NewMailAdapter(&notification.MailConfig{
			BaseURL:  cfg.Mail.BaseURL,
			APIKey:   cfg.Mail.APIKey,
			FromName: cfg.Mail.FromName,
			FromAddr: cfg.Mail.FromAddr,
		})
		if err != nil {
			log.Fatal("Failed to initialize mail adapter", zap.Error(err))
		}
		notifier = mailAdapter
		log.Info("Mail notification adapter initialized")
	}

	// Application services. The fan-out only provisions through the flow when
	// the ERP is enabled; the HTTP endpoint keeps a flow either way so a
	// disabled ERP answers with a clear error instead of a missing route.
	provisioner := ordersapp.NewProvisioningFlow(erpAdapter, orderRepo, historyRepo, fence, log)
	var dispatchProvisioner *ordersapp.ProvisioningFlow
	if cfg.ERP.Enabled {
		dispatchProvisioner = provisioner
	}

	dispatcher := ordersapp.NewDispatcher(
		ordersapp.DispatcherConfig{CallTimeout: cfg.Sync.CallTimeout},
		registry, workflowAdapter, notifier, dispatchProvisioner, historyRepo, log,
	)
	statusService := ordersapp.NewStatusService(orderRepo, historyRepo, dispatcher, log)
	reconciler := ordersapp.NewReconciler(
		ordersapp.ReconcilerConfig{
			WorkerCount: cfg.Sync.ReconcileWorkers,
			CallTimeout: cfg.Sync.CallTimeout,
		},
		orderRepo, historyRepo, registry, dispatcher, log,
	)

	// Reconciliation scheduler
	schedCfg := scheduler.DefaultReconcileSchedulerConfig()
	schedCfg.Enabled = cfg.Sync.ReconcileEnabled
	schedCfg.Interval = cfg.Sync.ReconcileInterval
	schedCfg.Policy = integration.ResolutionPolicy(cfg.Sync.ResolutionPolicy)
	reconcileScheduler, err := scheduler.NewReconcileScheduler(schedCfg, reconciler, log)
	if err != nil {
		log.Fatal("Failed to initialize reconcile scheduler", zap.Error(err))
	}
	reconcileScheduler.RegisterScope(ordersapp.ReconcileScope{TenantID: defaultTenantID})
	if err := reconcileScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start reconcile scheduler", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := reconcileScheduler.Stop(ctx); err != nil {
			log.Error("Error stopping reconcile scheduler", zap.Error(err))
		}
	}()

	// HTTP handlers
	orderHandler := handler.NewOrderHandler(statusService, provisioner)
	reconcileHandler := handler.NewReconcileHandler(reconcileScheduler)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.RequestLogger(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(orderHandler)
	r.Register(reconcileHandler)
	r.Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness and database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
