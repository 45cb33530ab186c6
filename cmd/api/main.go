package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "caisse/api/swagger" // swagger docs
	"caisse/internal/config"
	"caisse/internal/database"
	"caisse/internal/handler"
	"caisse/internal/logger"
	"caisse/internal/middleware"
	"caisse/internal/mirror"
	"caisse/internal/notify"
	"caisse/internal/outbox"
	"caisse/internal/repository"
	"caisse/internal/service"
	"caisse/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Caisse API
// @version         1.0
// @description     Cash disbursement workflows (funding, payment requests, orders) over a multi-currency ledger.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs/.env")
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	wf, err := config.LoadWorkflow(cfg.WorkflowConfig)
	if err != nil {
		log.Fatalf("Workflow config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		log.Fatalf("Logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg.DBDriver, cfg.DSN(), zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	zlog.Info("connected to database", zap.String("driver", cfg.DBDriver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	fundingRepo := repository.NewFundingRepository(db)
	paymentRequestRepo := repository.NewPaymentRequestRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// Outbox: the dispatcher exists before the services so commits can kick it.
	registry := outbox.NewHandlerRegistry()
	dispatcher := outbox.NewDispatcher(outboxRepo, registry, zlog.Named("outbox"), outbox.Config{
		Interval:    wf.Outbox.Interval,
		BatchSize:   wf.Outbox.BatchSize,
		MaxAttempts: wf.Outbox.MaxAttempts,
		RetryBase:   wf.Outbox.RetryBase,
	})
	events := service.NewOutboxPublisher(outboxRepo, dispatcher.Kick)

	// Services
	ledgerService := service.NewLedgerService(txManager, ledgerRepo, events, zlog)
	if err := ledgerService.Init(ctx); err != nil {
		zlog.Fatal("ledger init failed", zap.Error(err))
	}
	userService := service.NewUserService(userRepo, []byte(cfg.JWTSecret), wf.TokenTTL, zlog)
	if err := userService.EnsureAdmin(ctx, cfg.AdminUser, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		zlog.Fatal("bootstrap admin failed", zap.Error(err))
	}
	historyService := service.NewHistoryService(historyRepo)
	fundingService := service.NewFundingService(txManager, fundingRepo, sequenceRepo, historyRepo, ledgerService, events, zlog)
	paymentRequestService := service.NewPaymentRequestService(txManager, paymentRequestRepo, sequenceRepo, historyRepo, events, zlog)
	orderService := service.NewOrderService(txManager, orderRepo, sequenceRepo, historyRepo, events, zlog)
	paymentService := service.NewPaymentService(txManager, paymentRepo, paymentRequestRepo, orderRepo, historyRepo, ledgerService, events, zlog)

	// Notifications: websocket push behind a breaker, plus the log.
	wsHub := websocket.NewHub(zlog.Named("ws"))
	go wsHub.Run(ctx)
	notifier := notify.FanOut{
		notify.Guarded(wsHub, notify.BreakerConfig{Name: "websocket", Timeout: wf.ExternalTimeout}, zlog),
		notify.LogNotifier{Logger: zlog.Named("notify")},
	}
	router := notify.NewRouter(wf.Routes, notifier, zlog.Named("notify"))

	// Mirror
	mirrorStore, err := mirror.OpenSQLiteStore(cfg.MirrorPath)
	if err != nil {
		zlog.Fatal("mirror store failed", zap.Error(err))
	}
	defer mirrorStore.Close()
	syncer := mirror.NewSyncer(
		mirror.NewBreakerStore(mirrorStore, 30*time.Second, zlog),
		service.NewMirrorSource(fundingRepo, paymentRequestRepo, orderRepo, ledgerRepo),
		notify.OperatorAlerts{Router: router, Channel: wf.Channels.Operator},
		mirror.Config{
			Debounce:    wf.Sync.Debounce,
			Attempts:    wf.Sync.Attempts,
			BackoffBase: wf.Sync.BackoffBase,
			Timeout:     wf.ExternalTimeout,
		},
		zlog.Named("mirror"),
	)

	if err := service.RegisterSubscribers(registry, router, syncer); err != nil {
		zlog.Fatal("outbox subscribers failed", zap.Error(err))
	}
	go func() {
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error("outbox dispatcher stopped", zap.Error(err))
		}
	}()

	// Handlers
	auth := middleware.NewAuth([]byte(cfg.JWTSecret), cfg.Release(), int(wf.TokenTTL.Seconds()))
	userHandler := handler.NewUserHandler(userService, auth)
	fundingHandler := handler.NewFundingHandler(fundingService, historyService, auth)
	payableHandler := handler.NewPayableHandler(paymentRequestService, orderService, paymentService, historyService, auth)
	ledgerHandler := handler.NewLedgerHandler(ledgerService, auth)
	historyHandler := handler.NewHistoryHandler(historyService, auth)

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestLogger(zlog))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	engine.Use(cors.New(corsConfig))

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	engine.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, auth.Secret())
	})

	api := engine.Group("")
	userHandler.RegisterRoutes(api)
	fundingHandler.RegisterRoutes(api)
	payableHandler.RegisterRoutes(api)
	ledgerHandler.RegisterRoutes(api)
	historyHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
	dispatcher.Stop()
}
