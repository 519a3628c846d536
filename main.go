package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"fitbuds/config"
	"fitbuds/cron"
	"fitbuds/handlers"
	"fitbuds/middleware"
	"fitbuds/routes"
	"fitbuds/services/identity"
	"fitbuds/services/payment"
	"fitbuds/services/remote"
	"fitbuds/services/wizard"
	"fitbuds/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := utils.NewLogger(cfg.Env)
	defer logger.Sync()

	sessionCache, err := utils.NewSessionCache(cfg)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect session cache: %v", err)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	utils.StartHealthMonitor(rootCtx, sessionCache)

	// Outbound collaborators.
	remoteClient := remote.NewHTTPClient(cfg.APIBaseURL, cfg.APIKey, logger)

	ajaxBridge := identity.NewAjaxBridge(cfg.AjaxURL)
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})
	defer queueClient.Close()
	bridgeWorker := cron.StartBridgeWorker(cfg, ajaxBridge, logger)

	resolver := identity.NewResolver(remoteClient, identity.NewQueueBridge(queueClient), logger)

	gateways := payment.NewRegistry(logger,
		payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger),
		payment.NewPayPalGateway(rootCtx, cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalLive, logger),
	)

	// The wizard engine itself.
	store := wizard.NewRedisSessionStore(sessionCache, cfg.SessionTTL())
	wizardService := wizard.NewService(store, remoteClient, resolver, gateways, cfg, logger)
	wizardHandler := handlers.NewWizardHandler(wizardService, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	routes.RegisterWizardRoutes(router, wizardHandler, cfg.EmbedTokenSecret)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	stop()
	bridgeWorker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}
}
